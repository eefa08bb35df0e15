package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wassersoft/mailtriage/internal/logging"
)

// ActionRepo persists classified actions and their execution state.
type ActionRepo struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewActionRepo(db *pgxpool.Pool, logger *slog.Logger) *ActionRepo {
	return &ActionRepo{db: db, logger: logger}
}

// Insert records a new action as PENDING.
func (r *ActionRepo) Insert(ctx context.Context, a *Action) (uuid.UUID, error) {
	query := `
        INSERT INTO actions (id, email_id, action_type, payload, status)
        VALUES ($1, $2, $3, $4, 'PENDING')
        RETURNING id
    `
	payload := a.Payload
	if payload == nil {
		payload = map[string]string{}
	}
	var id uuid.UUID
	err := r.db.QueryRow(ctx, query, uuid.New(), a.EmailID, a.Type, payload).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting action: %w", err)
	}

	r.logger.Debug("action recorded",
		logging.EmailID(a.EmailID.String()),
		logging.ActionType(a.Type))
	return id, nil
}

// ListPending returns actions awaiting execution, oldest first.
func (r *ActionRepo) ListPending(ctx context.Context, limit int) ([]Action, error) {
	query := `
        SELECT id, email_id, action_type, payload, status, last_error, created_at, updated_at
        FROM actions
        WHERE status = 'PENDING'
        ORDER BY created_at ASC
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing pending actions: %w", err)
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var a Action
		if err := rows.Scan(
			&a.ID, &a.EmailID, &a.Type, &a.Payload, &a.Status,
			&a.LastError, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning action: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// MarkCompleted transitions an action to COMPLETED.
func (r *ActionRepo) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, ActionStatusCompleted, "")
}

// RecordError notes why the last execution failed while keeping the action
// PENDING, so a later actions pass can pick it up again.
func (r *ActionRepo) RecordError(ctx context.Context, id uuid.UUID, reason string) error {
	return r.setStatus(ctx, id, ActionStatusPending, reason)
}

// MarkFailed transitions an action to FAILED with the failure reason.
func (r *ActionRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.setStatus(ctx, id, ActionStatusFailed, reason)
}

func (r *ActionRepo) setStatus(ctx context.Context, id uuid.UUID, status, lastError string) error {
	query := `
        UPDATE actions
        SET status = $2, last_error = $3, updated_at = NOW()
        WHERE id = $1
    `
	if _, err := r.db.Exec(ctx, query, id, status, lastError); err != nil {
		return fmt.Errorf("updating action status: %w", err)
	}
	return nil
}
