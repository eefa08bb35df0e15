package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/wassersoft/mailtriage/internal/logging"
)

// maxContentLength caps the email content carried into a notification.
const maxContentLength = 500

// Priority grades how urgently a notification should be seen.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ChannelFor maps a priority to its target channel. Unknown priorities land
// in the medium channel.
func ChannelFor(p Priority) string {
	switch p {
	case PriorityHigh:
		return "#project"
	case PriorityLow:
		return "#random"
	default:
		return "#general"
	}
}

// Notification is one email surfaced to Slack.
type Notification struct {
	Sender   string
	Subject  string
	Content  string
	Summary  string
	Priority Priority
}

// Notifier posts Block Kit messages to an incoming webhook.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) NotifierOption {
	return func(n *Notifier) { n.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) NotifierOption {
	return func(n *Notifier) { n.logger = logger }
}

// NewNotifier creates a Notifier for the given webhook URL.
func NewNotifier(webhookURL string, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n.withServiceLogger()
}

func (n *Notifier) withServiceLogger() *Notifier {
	n.logger = n.logger.With(logging.Service("slack"))
	return n
}

// Notify posts the notification. Delivery is best effort; callers log the
// returned error and move on.
func (n *Notifier) Notify(ctx context.Context, note Notification) error {
	payload, err := json.Marshal(buildMessage(note))
	if err != nil {
		return fmt.Errorf("marshaling notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	n.logger.Debug("notification delivered",
		slog.String("channel", ChannelFor(note.Priority)),
		logging.SenderHash(note.Sender))
	return nil
}

// buildMessage assembles the Block Kit body.
func buildMessage(note Notification) map[string]any {
	blocks := []map[string]any{
		{
			"type": "header",
			"text": map[string]any{
				"type": "plain_text",
				"text": fmt.Sprintf("📧 New email (%s priority)", priorityOrDefault(note.Priority)),
			},
		},
		{
			"type": "section",
			"fields": []map[string]any{
				{"type": "mrkdwn", "text": "*From:*\n" + note.Sender},
				{"type": "mrkdwn", "text": "*Subject:*\n" + note.Subject},
			},
		},
		{
			"type": "section",
			"text": map[string]any{
				"type": "mrkdwn",
				"text": truncate(note.Content, maxContentLength),
			},
		},
	}
	if note.Summary != "" {
		blocks = append(blocks, map[string]any{
			"type": "section",
			"text": map[string]any{
				"type": "mrkdwn",
				"text": "*Summary:*\n" + note.Summary,
			},
		})
	}
	return map[string]any{
		"channel": ChannelFor(note.Priority),
		"blocks":  blocks,
	}
}

func priorityOrDefault(p Priority) Priority {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p
	}
	return PriorityMedium
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
