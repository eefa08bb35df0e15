package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// ReplyInput describes an outgoing reply to an existing message.
type ReplyInput struct {
	To        string
	Cc        []string
	Subject   string
	Body      string
	ThreadID  string
	InReplyTo string // Message-ID header of the message being answered
}

// SendReply sends a reply through the Gmail API. The message carries
// In-Reply-To and References headers so mail clients thread it correctly.
func (c *Client) SendReply(ctx context.Context, in ReplyInput) (string, error) {
	if in.To == "" {
		return "", fmt.Errorf("recipient is required")
	}
	if in.Body == "" {
		return "", fmt.Errorf("body is required")
	}

	subject := in.Subject
	if subject != "" && !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}

	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", in.To)
	if len(in.Cc) > 0 {
		fmt.Fprintf(&b, "Cc: %s\r\n", strings.Join(in.Cc, ", "))
	}
	if in.InReplyTo != "" {
		fmt.Fprintf(&b, "In-Reply-To: %s\r\n", in.InReplyTo)
		fmt.Fprintf(&b, "References: %s\r\n", in.InReplyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(in.Body)

	msg := &gmail.Message{
		Raw:      base64.URLEncoding.EncodeToString([]byte(b.String())),
		ThreadId: in.ThreadID,
	}

	sent, err := c.svc.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send reply: %w", err)
	}
	return sent.Id, nil
}
