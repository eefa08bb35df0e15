package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wassersoft/mailtriage/internal/logging"
)

// SummarizeStored analyzes emails that were fetched but never summarized.
// The analysis input is the whole stored thread plus any attachment text
// extracted earlier.
func (p *Pipeline) SummarizeStored(ctx context.Context, useLLM bool, limit int) (*Summary, error) {
	summary := &Summary{}
	logger := logging.WithOperation(p.logger, "summarize")

	emails, err := p.emails.ListUnprocessed(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing unprocessed emails: %w", err)
	}
	if len(emails) == 0 {
		logger.Info("no unprocessed emails")
		return summary, nil
	}

	for _, email := range emails {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		emailLogger := logger.With(logging.MessageID(email.MessageID))

		texts, err := p.attachments.ExtractedTexts(ctx, email.ID)
		if err != nil {
			emailLogger.Warn("failed to load extracted attachment text", logging.Err(err))
		}

		p.analyzeEmail(ctx, emailLogger, analyzeInput{
			EmailID:        email.ID,
			Sender:         email.Sender,
			Subject:        email.Subject,
			Body:           p.threadBody(ctx, emailLogger, email.ThreadID, email.Body),
			AttachmentText: strings.Join(texts, "\n"),
			UseLLM:         useLLM,
		}, summary)
	}

	logger.Info("summarize pass complete",
		slog.Int("summarized", summary.Summarized),
		slog.Int("failures", summary.Failures))
	return summary, nil
}
