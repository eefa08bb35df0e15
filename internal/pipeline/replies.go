package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wassersoft/mailtriage/internal/classify"
	"github.com/wassersoft/mailtriage/internal/gmail"
	"github.com/wassersoft/mailtriage/internal/instrumentation"
	"github.com/wassersoft/mailtriage/internal/logging"
	"github.com/wassersoft/mailtriage/internal/reply"
	"github.com/wassersoft/mailtriage/internal/store"
)

// handleReply drafts a reply, stores it, and sends it when the
// classification calls for an automatic response. Sending is a single
// attempt per run; failed replies stay pending and go out on a later
// SendPendingReplies pass until the attempt budget runs out.
func (p *Pipeline) handleReply(ctx context.Context, logger *slog.Logger, emailID uuid.UUID, email emailFacts, cls classify.Classification, summary *Summary) {
	body := p.drafter.Draft(ctx, reply.DraftInput{
		Sender:         email.Sender,
		Subject:        email.Subject,
		Classification: cls,
	})

	replyID, err := p.replies.Insert(ctx, &store.Reply{
		EmailID:   emailID,
		Recipient: email.Sender,
		Subject:   email.Subject,
		Body:      body,
	})
	if err != nil {
		logger.Error("failed to store reply draft", logging.Err(err))
		summary.Failures++
		return
	}

	if !reply.ShouldAutoSend(cls) {
		logger.Debug("reply drafted, not auto-sending",
			logging.ActionType(string(cls.Action.Type)))
		return
	}

	p.sendStoredReply(ctx, logger, replyID, storedReply{
		Recipient: email.Sender,
		Subject:   email.Subject,
		Body:      body,
		ThreadID:  email.ThreadID,
		MessageID: email.MessageID,
	}, summary)
}

type storedReply struct {
	Recipient string
	Subject   string
	Body      string
	ThreadID  string
	MessageID string
}

func (p *Pipeline) sendStoredReply(ctx context.Context, logger *slog.Logger, replyID uuid.UUID, r storedReply, summary *Summary) {
	start := p.now()
	err := p.googleCall(ctx, instrumentation.ServiceGmail, instrumentation.OperationSend, func(ctx context.Context) error {
		_, sendErr := p.mail.SendReply(ctx, gmail.ReplyInput{
			To:        r.Recipient,
			Subject:   r.Subject,
			Body:      r.Body,
			ThreadID:  r.ThreadID,
			InReplyTo: r.MessageID,
		})
		return sendErr
	})
	p.metrics.RecordReply(ctx, statusFor(err))
	p.metrics.RecordPhase(ctx, instrumentation.PhaseReply, statusFor(err), p.now().Sub(start))

	if err != nil {
		logger.Error("failed to send reply", logging.Err(err))
		summary.Failures++
		if recordErr := p.replies.RecordFailure(ctx, replyID, err.Error()); recordErr != nil {
			logger.Warn("failed to record reply failure", logging.Err(recordErr))
		}
		return
	}

	summary.RepliesSent++
	if err := p.replies.MarkSent(ctx, replyID); err != nil {
		logger.Warn("failed to record reply as sent", logging.Err(err))
	}
}

// SendPendingReplies retries stored replies that have not gone out yet.
func (p *Pipeline) SendPendingReplies(ctx context.Context, limit int) (*Summary, error) {
	summary := &Summary{}
	logger := logging.WithOperation(p.logger, "send-replies")

	pending, err := p.replies.ListPending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing pending replies: %w", err)
	}
	if len(pending) == 0 {
		logger.Info("no pending replies")
		return summary, nil
	}

	for _, pr := range pending {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		p.sendStoredReply(ctx, logger.With(logging.MessageID(pr.MessageID)), pr.Reply.ID, storedReply{
			Recipient: pr.Reply.Recipient,
			Subject:   pr.Reply.Subject,
			Body:      pr.Reply.Body,
			ThreadID:  pr.ThreadID,
			MessageID: pr.MessageID,
		}, summary)
	}

	logger.Info("reply pass complete",
		slog.Int("sent", summary.RepliesSent),
		slog.Int("failures", summary.Failures))
	return summary, nil
}
