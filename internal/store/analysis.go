package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wassersoft/mailtriage/internal/logging"
)

// AnalysisRepo persists the per-email analysis.
type AnalysisRepo struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewAnalysisRepo(db *pgxpool.Pool, logger *slog.Logger) *AnalysisRepo {
	return &AnalysisRepo{db: db, logger: logger}
}

// Upsert stores the analysis, keyed by email so re-analysis replaces the
// previous result.
func (r *AnalysisRepo) Upsert(ctx context.Context, a *Analysis) error {
	query := `
        INSERT INTO analysis (id, email_id, summary, insights, key_phrases, sentiment, action_type, thread_context, analyzed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
        ON CONFLICT (email_id) DO UPDATE SET
            summary = EXCLUDED.summary,
            insights = EXCLUDED.insights,
            key_phrases = EXCLUDED.key_phrases,
            sentiment = EXCLUDED.sentiment,
            action_type = EXCLUDED.action_type,
            thread_context = EXCLUDED.thread_context,
            analyzed_at = NOW()
    `
	_, err := r.db.Exec(ctx, query,
		uuid.New(), a.EmailID, a.Summary, a.Insights, a.KeyPhrases,
		a.Sentiment, a.ActionType, a.ThreadContext)
	if err != nil {
		return fmt.Errorf("upserting analysis: %w", err)
	}

	r.logger.Debug("analysis upserted",
		logging.EmailID(a.EmailID.String()),
		logging.ActionType(a.ActionType))
	return nil
}
