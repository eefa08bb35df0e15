package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/wassersoft/mailtriage/internal/calendar"
	"github.com/wassersoft/mailtriage/internal/classify"
	"github.com/wassersoft/mailtriage/internal/instrumentation"
	"github.com/wassersoft/mailtriage/internal/logging"
	"github.com/wassersoft/mailtriage/internal/slack"
	"github.com/wassersoft/mailtriage/internal/store"
)

const reminderDurationMinutes = 30

// handleAction records the classified action and executes it with retries.
// When the retries are exhausted the row stays PENDING with the error
// noted, so a later actions pass can replay it.
func (p *Pipeline) handleAction(ctx context.Context, logger *slog.Logger, emailID uuid.UUID, email emailFacts, cls classify.Classification, summary *Summary) {
	actionID, err := p.actions.Insert(ctx, &store.Action{
		EmailID: emailID,
		Type:    string(cls.Action.Type),
		Payload: cls.Action.Payload,
	})
	if err != nil {
		logger.Error("failed to record action", logging.Err(err),
			logging.ActionType(string(cls.Action.Type)))
		summary.Failures++
		return
	}

	start := p.now()
	err = p.withRetry(ctx, func() error {
		return p.executeAction(ctx, email, cls)
	})
	p.metrics.RecordPhase(ctx, instrumentation.PhaseActions, statusFor(err), p.now().Sub(start))
	p.metrics.RecordAction(ctx, string(cls.Action.Type), statusFor(err))

	if err != nil {
		logger.Error("action failed after retries, leaving pending", logging.Err(err),
			logging.ActionType(string(cls.Action.Type)))
		summary.Failures++
		if recordErr := p.actions.RecordError(ctx, actionID, err.Error()); recordErr != nil {
			logger.Warn("failed to record action failure", logging.Err(recordErr))
		}
		return
	}

	summary.ActionsExecuted++
	if err := p.actions.MarkCompleted(ctx, actionID); err != nil {
		logger.Warn("failed to record action completion", logging.Err(err))
	}
}

// emailFacts carries the email fields action execution needs, regardless of
// whether the email came from the provider or from the store.
type emailFacts struct {
	MessageID string
	ThreadID  string
	Sender    string
	Subject   string
	Body      string
}

func (p *Pipeline) executeAction(ctx context.Context, email emailFacts, cls classify.Classification) error {
	payload := cls.Action.Payload

	switch cls.Action.Type {
	case classify.ActionScheduleMeeting:
		if p.scheduler == nil {
			return fmt.Errorf("no calendar configured for %s", cls.Action.Type)
		}
		return p.scheduleEvent(ctx, calendar.EventPayload{
			Date:            payload["date"],
			Time:            payload["time"],
			DurationMinutes: payloadMinutes(payload["duration"]),
			Participants:    splitParticipants(payload["participants"]),
			Title:           payloadOr(payload["title"], email.Subject),
			Description:     cls.Summary,
			Location:        payload["location"],
		})

	case classify.ActionSetReminder:
		if p.scheduler == nil {
			return fmt.Errorf("no calendar configured for %s", cls.Action.Type)
		}
		return p.scheduleEvent(ctx, calendar.EventPayload{
			Date:            payload["date"],
			Time:            payload["time"],
			DurationMinutes: reminderDurationMinutes,
			Title:           "Reminder: " + payloadOr(payload["title"], email.Subject),
			Description:     cls.Summary,
		})

	case classify.ActionForwardToSlack:
		if p.notifier == nil {
			return fmt.Errorf("no slack webhook configured for %s", cls.Action.Type)
		}
		return p.notifier.Notify(ctx, slack.Notification{
			Sender:   email.Sender,
			Subject:  email.Subject,
			Content:  email.Body,
			Summary:  cls.Summary,
			Priority: slack.Priority(strings.ToLower(payload["priority"])),
		})

	case classify.ActionSendReply:
		// Replies go through the reply path, nothing to execute here.
		return nil
	}

	return fmt.Errorf("unknown action type %q", cls.Action.Type)
}

func (p *Pipeline) scheduleEvent(ctx context.Context, payload calendar.EventPayload) error {
	return p.googleCall(ctx, instrumentation.ServiceCalendar, instrumentation.OperationCreate, func(ctx context.Context) error {
		_, err := p.scheduler.ScheduleEvent(ctx, payload, p.now())
		return err
	})
}

// DispatchPendingActions retries actions that are still pending, typically
// after a run where the downstream service was unavailable.
func (p *Pipeline) DispatchPendingActions(ctx context.Context, limit int) (*Summary, error) {
	summary := &Summary{}
	logger := logging.WithOperation(p.logger, "dispatch-actions")

	pending, err := p.actions.ListPending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing pending actions: %w", err)
	}
	if len(pending) == 0 {
		logger.Info("no pending actions")
		return summary, nil
	}

	for _, action := range pending {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		email, err := p.emails.GetByID(ctx, action.EmailID)
		if err != nil {
			logger.Error("failed to load email for action", logging.Err(err),
				logging.EmailID(action.EmailID.String()))
			summary.Failures++
			continue
		}

		cls := classify.Classification{
			Action: classify.Action{
				Type:    classify.ActionType(action.Type),
				Payload: action.Payload,
			},
		}
		execErr := p.withRetry(ctx, func() error {
			return p.executeAction(ctx, emailFacts{
				MessageID: email.MessageID,
				ThreadID:  email.ThreadID,
				Sender:    email.Sender,
				Subject:   email.Subject,
				Body:      email.Body,
			}, cls)
		})
		p.metrics.RecordAction(ctx, action.Type, statusFor(execErr))

		if execErr != nil {
			logger.Error("pending action failed", logging.Err(execErr),
				logging.ActionType(action.Type))
			summary.Failures++
			if err := p.actions.MarkFailed(ctx, action.ID, execErr.Error()); err != nil {
				logger.Warn("failed to record action failure", logging.Err(err))
			}
			continue
		}

		summary.ActionsExecuted++
		if err := p.actions.MarkCompleted(ctx, action.ID); err != nil {
			logger.Warn("failed to record action completion", logging.Err(err))
		}
	}

	logger.Info("dispatch complete",
		slog.Int("executed", summary.ActionsExecuted),
		slog.Int("failures", summary.Failures))
	return summary, nil
}

func statusFor(err error) string {
	if err != nil {
		return instrumentation.StatusError
	}
	return instrumentation.StatusSuccess
}

func payloadOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func payloadMinutes(value string) int {
	var minutes int
	if _, err := fmt.Sscanf(strings.TrimSpace(value), "%d", &minutes); err != nil || minutes <= 0 {
		return 0
	}
	return minutes
}

func splitParticipants(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var participants []string
	for _, part := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ';' }) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			participants = append(participants, trimmed)
		}
	}
	return participants
}
