package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wassersoft/mailtriage/internal/logging"
	"github.com/wassersoft/mailtriage/internal/reply"
)

// ReplyRepo persists drafted replies and their delivery state.
type ReplyRepo struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewReplyRepo(db *pgxpool.Pool, logger *slog.Logger) *ReplyRepo {
	return &ReplyRepo{db: db, logger: logger}
}

// Insert records a drafted reply as PENDING.
func (r *ReplyRepo) Insert(ctx context.Context, rep *Reply) (uuid.UUID, error) {
	query := `
        INSERT INTO email_replies (id, email_id, recipient, subject, body, status)
        VALUES ($1, $2, $3, $4, $5, 'PENDING')
        RETURNING id
    `
	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		uuid.New(), rep.EmailID, rep.Recipient, rep.Subject, rep.Body,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting reply: %w", err)
	}

	r.logger.Debug("reply drafted",
		logging.EmailID(rep.EmailID.String()),
		logging.SenderHash(rep.Recipient))
	return id, nil
}

// ListPending returns replies still eligible for delivery, joined with the
// provider ids needed to thread the response.
type PendingReply struct {
	Reply     Reply
	MessageID string
	ThreadID  string
}

// ListPending returns PENDING replies that have delivery attempts left.
func (r *ReplyRepo) ListPending(ctx context.Context, limit int) ([]PendingReply, error) {
	query := `
        SELECT rp.id, rp.email_id, rp.recipient, rp.subject, rp.body, rp.status,
               rp.attempts, rp.last_error, rp.sent_at, rp.created_at,
               e.message_id, e.thread_id
        FROM email_replies rp
        JOIN emails e ON e.id = rp.email_id
        WHERE rp.status = 'PENDING' AND rp.attempts < $2
        ORDER BY rp.created_at ASC
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, limit, reply.MaxSendAttempts)
	if err != nil {
		return nil, fmt.Errorf("listing pending replies: %w", err)
	}
	defer rows.Close()

	var pending []PendingReply
	for rows.Next() {
		var p PendingReply
		if err := rows.Scan(
			&p.Reply.ID, &p.Reply.EmailID, &p.Reply.Recipient, &p.Reply.Subject,
			&p.Reply.Body, &p.Reply.Status, &p.Reply.Attempts, &p.Reply.LastError,
			&p.Reply.SentAt, &p.Reply.CreatedAt, &p.MessageID, &p.ThreadID,
		); err != nil {
			return nil, fmt.Errorf("scanning reply: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkSent transitions a reply to SENT.
func (r *ReplyRepo) MarkSent(ctx context.Context, id uuid.UUID) error {
	query := `
        UPDATE email_replies
        SET status = $2, sent_at = NOW(), attempts = attempts + 1
        WHERE id = $1
    `
	if _, err := r.db.Exec(ctx, query, id, string(reply.StatusSent)); err != nil {
		return fmt.Errorf("marking reply sent: %w", err)
	}
	return nil
}

// RecordFailure increments the attempt counter and stores the error. Once
// the attempt budget is used up the reply goes to FAILED.
func (r *ReplyRepo) RecordFailure(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
        UPDATE email_replies
        SET attempts = attempts + 1,
            last_error = $2,
            status = CASE WHEN attempts + 1 >= $3 THEN $4 ELSE status END
        WHERE id = $1
    `
	if _, err := r.db.Exec(ctx, query, id, reason,
		reply.MaxSendAttempts, string(reply.StatusFailed)); err != nil {
		return fmt.Errorf("recording reply failure: %w", err)
	}
	return nil
}
