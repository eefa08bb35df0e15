package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	gmail "google.golang.org/api/gmail/v1"

	"github.com/wassersoft/mailtriage/internal/logging"
)

// imagePlaceholder stands in for bodies that contain only image content.
const imagePlaceholder = "[image-based content]"

// timestampFormats are the Date header layouts seen in the wild, tried in order.
var timestampFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC822Z,
	time.RFC3339,
}

// parseMessage converts a raw Gmail message into an Email, downloading any
// attachments. An error is returned only when required fields are missing;
// individual attachment failures are tolerated.
func (c *Client) parseMessage(ctx context.Context, msg *gmail.Message) (*Email, error) {
	if msg == nil || msg.Payload == nil {
		return nil, fmt.Errorf("message has no payload")
	}

	headers := headerMap(msg.Payload)

	sender := headers["From"]
	if sender == "" {
		sender = "Unknown Sender"
	}
	subject := headers["Subject"]
	if subject == "" {
		subject = "No Subject"
	}

	timestamp, err := ParseTimestamp(headers["Date"])
	if err != nil {
		return nil, fmt.Errorf("invalid or missing timestamp: %w", err)
	}

	body := ExtractBody(msg.Payload)
	if body == "" {
		body = "No body content found."
	}

	attachments, err := c.fetchAttachments(ctx, msg)
	if err != nil {
		// Attachment failures don't invalidate the message itself
		c.logger.Warn("failed to download attachments",
			logging.MessageID(msg.Id), logging.Err(err))
		attachments = nil
	}

	return &Email{
		MessageID: msg.Id,
		ThreadID:  msg.ThreadId,
		Sender:    sender,
		Recipients: Recipients{
			To:  splitAddressList(headers["To"]),
			Cc:  splitAddressList(headers["Cc"]),
			Bcc: splitAddressList(headers["Bcc"]),
		},
		Subject:     subject,
		Body:        body,
		Timestamp:   timestamp,
		Unread:      hasLabel(msg, "UNREAD"),
		Attachments: attachments,
	}, nil
}

// ParseTimestamp parses a Date header value, trying several common layouts.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format %q", raw)
}

// ExtractBody extracts the message body from a payload, checking all parts
// recursively. Plain text is preferred; HTML is converted to markdown-ish
// text; image-only content yields a placeholder.
func ExtractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	// Direct body on the payload itself
	if payload.Body != nil && payload.Body.Data != "" && payload.Filename == "" {
		decoded, err := decodeBody(payload.Body.Data)
		if err == nil {
			if payload.MimeType == "text/html" {
				return htmlToText(decoded)
			}
			return decoded
		}
	}

	var htmlBody, imageSeen string
	for _, part := range payload.Parts {
		switch {
		case part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "":
			if decoded, err := decodeBody(part.Body.Data); err == nil {
				return decoded
			}
		case part.MimeType == "text/html" && part.Body != nil && part.Body.Data != "":
			if htmlBody == "" {
				if decoded, err := decodeBody(part.Body.Data); err == nil {
					htmlBody = decoded
				}
			}
		case strings.HasPrefix(part.MimeType, "image/"):
			imageSeen = imagePlaceholder
		}

		// Recurse into nested multipart structures
		if len(part.Parts) > 0 {
			if body := ExtractBody(part); body != "" {
				return body
			}
		}
	}

	if htmlBody != "" {
		return htmlToText(htmlBody)
	}
	return imageSeen
}

// htmlToText converts an HTML body to readable text, preserving links.
func htmlToText(html string) string {
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		// Fall back to the raw HTML if conversion fails
		return html
	}
	return strings.TrimSpace(markdown)
}

// decodeBody decodes base64url-encoded message content. Gmail uses RFC 4648
// base64url encoding; standard base64 is tried as a fallback.
func decodeBody(data string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return "", fmt.Errorf("failed to decode body data: %w", err)
		}
	}
	return string(decoded), nil
}

// headerMap flattens payload headers into a name→value map.
func headerMap(payload *gmail.MessagePart) map[string]string {
	headers := make(map[string]string, len(payload.Headers))
	for _, h := range payload.Headers {
		headers[h.Name] = h.Value
	}
	return headers
}

// splitAddressList splits a comma-separated address header into trimmed
// non-empty entries.
func splitAddressList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, addr := range strings.Split(raw, ",") {
		if a := strings.TrimSpace(addr); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func hasLabel(msg *gmail.Message, label string) bool {
	for _, l := range msg.LabelIds {
		if l == label {
			return true
		}
	}
	return false
}
