package gmail

import (
	"context"
	"encoding/base64"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/wassersoft/mailtriage/internal/logging"
)

// MaxAttachmentSize is the maximum attachment size in bytes (25MB).
const MaxAttachmentSize = 25 * 1024 * 1024

// fetchAttachments downloads every attachment of a message. Attachments over
// the size limit or with broken encoding are logged and skipped; the rest of
// the message is unaffected.
func (c *Client) fetchAttachments(ctx context.Context, msg *gmail.Message) ([]Attachment, error) {
	if msg.Payload == nil {
		return nil, nil
	}

	var attachments []Attachment
	var parts []*gmail.MessagePart
	walkParts(msg.Payload, func(p *gmail.MessagePart) {
		if p.Filename != "" && p.Body != nil && p.Body.AttachmentId != "" {
			parts = append(parts, p)
		}
	})

	for _, part := range parts {
		content, err := c.getAttachment(ctx, msg.Id, part.Body.AttachmentId)
		if err != nil {
			c.logger.Warn("skipping attachment",
				logging.MessageID(msg.Id),
				logging.Attachment(part.Filename),
				logging.Err(err))
			continue
		}

		contentType := part.MimeType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		attachments = append(attachments, Attachment{
			Filename:    part.Filename,
			ContentType: contentType,
			Size:        int64(len(content)),
			Content:     content,
		})
	}

	return attachments, nil
}

// getAttachment retrieves and decodes the content of a single attachment.
func (c *Client) getAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	if messageID == "" {
		return nil, fmt.Errorf("messageID is required")
	}
	if attachmentID == "" {
		return nil, fmt.Errorf("attachmentID is required")
	}

	attachment, err := c.svc.Messages.Attachments.Get("me", messageID, attachmentID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment %s: %w", attachmentID, err)
	}

	if attachment.Size > MaxAttachmentSize {
		return nil, fmt.Errorf("attachment size %d exceeds maximum size %d", attachment.Size, MaxAttachmentSize)
	}

	return DecodeAttachmentData(attachment.Data)
}

// DecodeAttachmentData decodes base64url-encoded attachment data
// (Gmail API uses RFC 4648 base64url encoding).
func DecodeAttachmentData(data string) ([]byte, error) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Try with standard base64 if URLEncoding fails
		decoded, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode attachment data: %w", err)
		}
	}
	return decoded, nil
}

// walkParts visits every part of a message payload tree.
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}
	fn(part)
	for _, p := range part.Parts {
		walkParts(p, fn)
	}
}
