package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wassersoft/mailtriage/internal/logging"
)

// EmailRepo persists emails and their recipient lists.
type EmailRepo struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewEmailRepo(db *pgxpool.Pool, logger *slog.Logger) *EmailRepo {
	return &EmailRepo{db: db, logger: logger}
}

// Upsert inserts the email or refreshes it when the message_id already
// exists. Returns the row id either way.
func (r *EmailRepo) Upsert(ctx context.Context, e *Email) (uuid.UUID, error) {
	query := `
        INSERT INTO emails (id, message_id, thread_id, sender, subject, body, received_at, processed)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (message_id) DO UPDATE SET
            thread_id = EXCLUDED.thread_id,
            sender = EXCLUDED.sender,
            subject = EXCLUDED.subject,
            body = EXCLUDED.body,
            received_at = EXCLUDED.received_at
        RETURNING id
    `
	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		uuid.New(), e.MessageID, e.ThreadID, e.Sender, e.Subject, e.Body,
		e.ReceivedAt, e.Processed,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upserting email: %w", err)
	}

	r.logger.Debug("email upserted",
		logging.EmailID(id.String()),
		logging.MessageID(e.MessageID))
	return id, nil
}

// ReplaceRecipients swaps the stored recipient set of an email.
func (r *EmailRepo) ReplaceRecipients(ctx context.Context, emailID uuid.UUID, recipients []Recipient) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM email_recipients WHERE email_id = $1`, emailID); err != nil {
		return fmt.Errorf("clearing recipients: %w", err)
	}

	query := `
        INSERT INTO email_recipients (id, email_id, address, kind)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (email_id, address, kind) DO NOTHING
    `
	for _, recipient := range recipients {
		if _, err := r.db.Exec(ctx, query,
			uuid.New(), emailID, recipient.Address, recipient.Kind); err != nil {
			return fmt.Errorf("inserting recipient: %w", err)
		}
	}
	return nil
}

// GetByID loads an email by its row id.
func (r *EmailRepo) GetByID(ctx context.Context, id uuid.UUID) (*Email, error) {
	query := `
        SELECT id, message_id, thread_id, sender, subject, body, received_at, processed, created_at
        FROM emails
        WHERE id = $1
    `
	var e Email
	err := r.db.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.MessageID, &e.ThreadID, &e.Sender, &e.Subject, &e.Body,
		&e.ReceivedAt, &e.Processed, &e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("loading email %s: %w", id, err)
	}
	return &e, nil
}

// GetByMessageID loads an email by its provider message id.
func (r *EmailRepo) GetByMessageID(ctx context.Context, messageID string) (*Email, error) {
	query := `
        SELECT id, message_id, thread_id, sender, subject, body, received_at, processed, created_at
        FROM emails
        WHERE message_id = $1
    `
	var e Email
	err := r.db.QueryRow(ctx, query, messageID).Scan(
		&e.ID, &e.MessageID, &e.ThreadID, &e.Sender, &e.Subject, &e.Body,
		&e.ReceivedAt, &e.Processed, &e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("loading email %s: %w", messageID, err)
	}
	return &e, nil
}

// ListUnprocessed returns emails not yet summarized, oldest first.
func (r *EmailRepo) ListUnprocessed(ctx context.Context, limit int) ([]Email, error) {
	query := `
        SELECT id, message_id, thread_id, sender, subject, body, received_at, processed, created_at
        FROM emails
        WHERE processed = FALSE
        ORDER BY received_at ASC
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing unprocessed emails: %w", err)
	}
	defer rows.Close()

	var emails []Email
	for rows.Next() {
		var e Email
		if err := rows.Scan(
			&e.ID, &e.MessageID, &e.ThreadID, &e.Sender, &e.Subject, &e.Body,
			&e.ReceivedAt, &e.Processed, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning email: %w", err)
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}

// ThreadBodies returns the bodies of every stored message in a thread,
// oldest first, so a summarization pass can see the whole conversation.
func (r *EmailRepo) ThreadBodies(ctx context.Context, threadID string) ([]string, error) {
	query := `
        SELECT body
        FROM emails
        WHERE thread_id = $1
        ORDER BY received_at ASC
    `
	rows, err := r.db.Query(ctx, query, threadID)
	if err != nil {
		return nil, fmt.Errorf("listing thread bodies: %w", err)
	}
	defer rows.Close()

	var bodies []string
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning thread body: %w", err)
		}
		bodies = append(bodies, body)
	}
	return bodies, rows.Err()
}

// MarkProcessed flags an email as summarized.
func (r *EmailRepo) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx,
		`UPDATE emails SET processed = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("marking email processed: %w", err)
	}
	return nil
}
