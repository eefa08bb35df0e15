package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wassersoft/mailtriage/internal/logging"
)

// AttachmentRepo persists attachment metadata, extracted text and the
// per-attachment analysis.
type AttachmentRepo struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewAttachmentRepo(db *pgxpool.Pool, logger *slog.Logger) *AttachmentRepo {
	return &AttachmentRepo{db: db, logger: logger}
}

// Upsert inserts attachment metadata or refreshes it for an existing
// (email_id, filename) pair. Extracted text survives a metadata refresh.
func (r *AttachmentRepo) Upsert(ctx context.Context, a *Attachment) (uuid.UUID, error) {
	query := `
        INSERT INTO attachments (id, email_id, filename, content_type, size)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (email_id, filename) DO UPDATE SET
            content_type = EXCLUDED.content_type,
            size = EXCLUDED.size
        RETURNING id
    `
	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		uuid.New(), a.EmailID, a.Filename, a.ContentType, a.Size,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upserting attachment: %w", err)
	}

	r.logger.Debug("attachment upserted",
		logging.EmailID(a.EmailID.String()),
		logging.Attachment(a.Filename))
	return id, nil
}

// SetExtractedText stores the extraction result. An empty string is a valid
// result and distinct from NULL (not yet extracted).
func (r *AttachmentRepo) SetExtractedText(ctx context.Context, id uuid.UUID, text string) error {
	if _, err := r.db.Exec(ctx,
		`UPDATE attachments SET extracted_text = $2 WHERE id = $1`, id, text); err != nil {
		return fmt.Errorf("storing extracted text: %w", err)
	}
	return nil
}

// ExtractedTexts returns the non-empty extracted text of an email's
// attachments, in filename order.
func (r *AttachmentRepo) ExtractedTexts(ctx context.Context, emailID uuid.UUID) ([]string, error) {
	query := `
        SELECT extracted_text
        FROM attachments
        WHERE email_id = $1 AND extracted_text IS NOT NULL AND extracted_text <> ''
        ORDER BY filename ASC
    `
	rows, err := r.db.Query(ctx, query, emailID)
	if err != nil {
		return nil, fmt.Errorf("listing extracted texts: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scanning extracted text: %w", err)
		}
		texts = append(texts, text)
	}
	return texts, rows.Err()
}

// PendingExtraction lists attachments whose text has not been extracted,
// joined with the provider message id needed to re-download the content.
type PendingExtraction struct {
	Attachment Attachment
	MessageID  string
}

// ListPendingExtraction returns attachments with NULL extracted_text.
func (r *AttachmentRepo) ListPendingExtraction(ctx context.Context, limit int) ([]PendingExtraction, error) {
	query := `
        SELECT a.id, a.email_id, a.filename, a.content_type, a.size, a.created_at, e.message_id
        FROM attachments a
        JOIN emails e ON e.id = a.email_id
        WHERE a.extracted_text IS NULL
        ORDER BY a.created_at ASC
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing pending attachments: %w", err)
	}
	defer rows.Close()

	var pending []PendingExtraction
	for rows.Next() {
		var p PendingExtraction
		if err := rows.Scan(
			&p.Attachment.ID, &p.Attachment.EmailID, &p.Attachment.Filename,
			&p.Attachment.ContentType, &p.Attachment.Size, &p.Attachment.CreatedAt,
			&p.MessageID,
		); err != nil {
			return nil, fmt.Errorf("scanning attachment: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// UpsertAnalysis stores the per-attachment summary, keyed by attachment so a
// re-run with identical text converges on the same row.
func (r *AttachmentRepo) UpsertAnalysis(ctx context.Context, a *AttachmentAnalysis) error {
	query := `
        INSERT INTO attachment_analysis (id, attachment_id, summary, key_phrases, sentiment, analyzed_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        ON CONFLICT (attachment_id) DO UPDATE SET
            summary = EXCLUDED.summary,
            key_phrases = EXCLUDED.key_phrases,
            sentiment = EXCLUDED.sentiment,
            analyzed_at = NOW()
    `
	_, err := r.db.Exec(ctx, query,
		uuid.New(), a.AttachmentID, a.Summary, a.KeyPhrases, a.Sentiment)
	if err != nil {
		return fmt.Errorf("upserting attachment analysis: %w", err)
	}
	return nil
}
