package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wassersoft/mailtriage/internal/gmail"
	"github.com/wassersoft/mailtriage/internal/instrumentation"
	"github.com/wassersoft/mailtriage/internal/logging"
)

// ProcessPendingAttachments extracts text for stored attachments that have
// none yet. Content is not stored in the database, so the source message is
// re-downloaded and the attachment matched by filename.
func (p *Pipeline) ProcessPendingAttachments(ctx context.Context, limit int) (*Summary, error) {
	summary := &Summary{}
	logger := logging.WithOperation(p.logger, "analyze-attachments")

	pending, err := p.attachments.ListPendingExtraction(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing pending attachments: %w", err)
	}
	if len(pending) == 0 {
		logger.Info("no pending attachments")
		return summary, nil
	}

	// Several attachments often share a message, fetch each message once.
	messages := map[string]*gmail.Email{}

	for _, pe := range pending {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		itemLogger := logger.With(
			logging.MessageID(pe.MessageID),
			logging.Attachment(pe.Attachment.Filename))

		email, ok := messages[pe.MessageID]
		if !ok {
			err = p.googleCall(ctx, instrumentation.ServiceGmail, instrumentation.OperationGet, func(ctx context.Context) error {
				var getErr error
				email, getErr = p.mail.GetEmail(ctx, pe.MessageID)
				return getErr
			})
			if err != nil {
				itemLogger.Error("failed to fetch source message", logging.Err(err))
				summary.Failures++
				continue
			}
			messages[pe.MessageID] = email
		}

		att, found := attachmentByFilename(email, pe.Attachment.Filename)
		if !found {
			itemLogger.Warn("attachment no longer present on message")
			summary.Failures++
			continue
		}

		if _, err := p.extractAndAnalyze(ctx, itemLogger, pe.Attachment.ID, att); err != nil {
			summary.Failures++
			continue
		}
		summary.AttachmentsExtracted++
	}

	logger.Info("attachment pass complete",
		slog.Int("extracted", summary.AttachmentsExtracted),
		slog.Int("failures", summary.Failures))
	return summary, nil
}

func attachmentByFilename(email *gmail.Email, filename string) (gmail.Attachment, bool) {
	for _, att := range email.Attachments {
		if att.Filename == filename {
			return att, true
		}
	}
	return gmail.Attachment{}, false
}
