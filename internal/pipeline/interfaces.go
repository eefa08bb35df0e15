package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wassersoft/mailtriage/internal/calendar"
	"github.com/wassersoft/mailtriage/internal/gmail"
	"github.com/wassersoft/mailtriage/internal/reply"
	"github.com/wassersoft/mailtriage/internal/slack"
	"github.com/wassersoft/mailtriage/internal/store"
	"github.com/wassersoft/mailtriage/internal/summarize"
	"github.com/wassersoft/mailtriage/internal/websearch"
)

// Mailer is the mail provider surface the pipeline needs.
type Mailer interface {
	FetchEmails(ctx context.Context, mode gmail.FetchMode, batchSize int) ([]*gmail.Email, error)
	GetEmail(ctx context.Context, messageID string) (*gmail.Email, error)
	MarkAsRead(ctx context.Context, messageID string) error
	SendReply(ctx context.Context, in gmail.ReplyInput) (string, error)
}

// TextExtractor converts attachment content to text.
type TextExtractor interface {
	Extract(ctx context.Context, filename, contentType string, content []byte) (string, error)
}

// Analyzer produces structured email analyses and free-form completions.
type Analyzer interface {
	Analyze(ctx context.Context, content summarize.EmailContent) (string, error)
	Complete(ctx context.Context, prompt string) (string, error)
}

// Scheduler creates calendar events from classified payloads.
type Scheduler interface {
	ScheduleEvent(ctx context.Context, p calendar.EventPayload, now time.Time) (string, error)
}

// Notifier forwards emails to the team channel.
type Notifier interface {
	Notify(ctx context.Context, note slack.Notification) error
}

// Searcher answers web search queries.
type Searcher interface {
	Search(ctx context.Context, query string) ([]websearch.Result, error)
}

// ReplyDrafter produces reply bodies.
type ReplyDrafter interface {
	Draft(ctx context.Context, in reply.DraftInput) string
}

// EmailStore persists emails.
type EmailStore interface {
	Upsert(ctx context.Context, e *store.Email) (uuid.UUID, error)
	ReplaceRecipients(ctx context.Context, emailID uuid.UUID, recipients []store.Recipient) error
	GetByID(ctx context.Context, id uuid.UUID) (*store.Email, error)
	ThreadBodies(ctx context.Context, threadID string) ([]string, error)
	ListUnprocessed(ctx context.Context, limit int) ([]store.Email, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
}

// AttachmentStore persists attachments and their analyses.
type AttachmentStore interface {
	Upsert(ctx context.Context, a *store.Attachment) (uuid.UUID, error)
	SetExtractedText(ctx context.Context, id uuid.UUID, text string) error
	ExtractedTexts(ctx context.Context, emailID uuid.UUID) ([]string, error)
	ListPendingExtraction(ctx context.Context, limit int) ([]store.PendingExtraction, error)
	UpsertAnalysis(ctx context.Context, a *store.AttachmentAnalysis) error
}

// AnalysisStore persists per-email analyses.
type AnalysisStore interface {
	Upsert(ctx context.Context, a *store.Analysis) error
}

// ActionStore persists classified actions.
type ActionStore interface {
	Insert(ctx context.Context, a *store.Action) (uuid.UUID, error)
	ListPending(ctx context.Context, limit int) ([]store.Action, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	RecordError(ctx context.Context, id uuid.UUID, reason string) error
}

// ReplyStore persists drafted replies.
type ReplyStore interface {
	Insert(ctx context.Context, r *store.Reply) (uuid.UUID, error)
	ListPending(ctx context.Context, limit int) ([]store.PendingReply, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	RecordFailure(ctx context.Context, id uuid.UUID, reason string) error
}
