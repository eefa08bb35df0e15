package reply

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wassersoft/mailtriage/internal/classify"
	"github.com/wassersoft/mailtriage/internal/logging"
)

// Status tracks a reply through delivery.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

// MaxSendAttempts bounds delivery retries before a reply is marked FAILED.
const MaxSendAttempts = 3

// Refiner rewrites a draft through an LLM. Optional.
type Refiner interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// DraftInput carries what the generator needs to draft a reply.
type DraftInput struct {
	Sender         string
	Subject        string
	Classification classify.Classification
}

// Generator produces reply drafts from templates, optionally refined by an
// LLM.
type Generator struct {
	refiner Refiner
	logger  *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithRefiner enables LLM refinement of template drafts.
func WithRefiner(r Refiner) GeneratorOption {
	return func(g *Generator) { g.refiner = r }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = logger }
}

// NewGenerator creates a Generator.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Draft produces the reply body for an email. The template always succeeds;
// refinement failure falls back to the unrefined template.
func (g *Generator) Draft(ctx context.Context, in DraftInput) string {
	draft := templateFor(in)
	if g.refiner == nil {
		return draft
	}

	refined, err := g.refiner.Complete(ctx, refinementPrompt(in, draft))
	if err != nil {
		g.logger.Warn("reply refinement failed, using template draft",
			logging.SenderHash(in.Sender),
			logging.Err(err))
		return draft
	}
	refined = strings.TrimSpace(refined)
	if refined == "" {
		return draft
	}
	return refined
}

// ShouldAutoSend reports whether the reply goes out without operator
// confirmation. Only emails that triggered an external action qualify.
func ShouldAutoSend(c classify.Classification) bool {
	return c.Actionable()
}

func templateFor(in DraftInput) string {
	name := senderName(in.Sender)
	payload := in.Classification.Action.Payload

	switch in.Classification.Action.Type {
	case classify.ActionScheduleMeeting:
		when := payload["date"]
		if t := payload["time"]; t != "" {
			when = strings.TrimSpace(when + " at " + t)
		}
		if when == "" {
			when = "the proposed time"
		}
		return fmt.Sprintf(
			"Hi %s,\n\nThank you for your email. I have scheduled the meeting for %s and sent out a calendar invitation.\n\nBest regards",
			name, when)
	case classify.ActionSetReminder:
		subject := payload["title"]
		if subject == "" {
			subject = "your request"
		}
		return fmt.Sprintf(
			"Hi %s,\n\nThank you for your email. I have set a reminder for %s and will follow up accordingly.\n\nBest regards",
			name, subject)
	default:
		return fmt.Sprintf(
			"Hi %s,\n\nThank you for your email regarding \"%s\". I have received it and will get back to you shortly.\n\nBest regards",
			name, in.Subject)
	}
}

func refinementPrompt(in DraftInput, draft string) string {
	var sb strings.Builder
	sb.WriteString("Rewrite the following email reply so it reads naturally and professionally. Keep it short. Return only the reply text.\n\n")
	if in.Classification.Summary != "" {
		fmt.Fprintf(&sb, "Context: %s\n\n", in.Classification.Summary)
	}
	sb.WriteString(draft)
	return sb.String()
}

// senderName extracts a salutation-friendly name from a From header value
// like `Alice Smith <alice@example.com>`.
func senderName(sender string) string {
	name := sender
	if i := strings.Index(name, "<"); i >= 0 {
		name = name[:i]
	}
	name = strings.Trim(strings.TrimSpace(name), `"`)
	if name == "" || strings.Contains(name, "@") {
		if at := strings.Index(sender, "@"); at > 0 {
			local := sender[:at]
			if lt := strings.LastIndex(local, "<"); lt >= 0 {
				local = local[lt+1:]
			}
			return local
		}
		return "there"
	}
	// First name is enough for a salutation.
	if first, _, ok := strings.Cut(name, " "); ok {
		return first
	}
	return name
}
