package gmail

import (
	"context"
	"fmt"
	"log/slog"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/wassersoft/mailtriage/internal/google"
	"github.com/wassersoft/mailtriage/internal/logging"
)

// Client wraps the Gmail Users service.
type Client struct {
	svc    *gmail.UsersService
	logger *slog.Logger
}

// HasToken checks if a valid OAuth token exists.
func HasToken() bool {
	return google.HasToken()
}

// NewClient creates a new Gmail client with OAuth2 authentication.
func NewClient(ctx context.Context) (*Client, error) {
	httpClient, err := google.GetHTTPClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found: %w", err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{
		svc:    svc.Users,
		logger: logging.WithService(slog.Default(), "gmail"),
	}, nil
}

// FetchEmails lists inbox messages matching the mode, fetches each full
// message and parses it. Pagination continues until batchSize messages have
// been collected or the inbox is exhausted. A batchSize of zero (or less)
// fetches nothing. Messages that fail to parse are logged and skipped.
func (c *Client) FetchEmails(ctx context.Context, mode FetchMode, batchSize int) ([]*Email, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("invalid fetch mode %q", mode)
	}
	if batchSize <= 0 {
		return nil, nil
	}

	var emails []*Email
	pageToken := ""

	for {
		call := c.svc.Messages.List("me").
			LabelIds("INBOX").
			Q(mode.Query()).
			MaxResults(int64(batchSize)).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		for _, m := range res.Messages {
			if len(emails) >= batchSize {
				return emails, nil
			}

			msg, err := c.GetMessage(ctx, m.Id)
			if err != nil {
				c.logger.Warn("failed to fetch message, skipping",
					logging.MessageID(m.Id), logging.Err(err))
				continue
			}

			email, err := c.parseMessage(ctx, msg)
			if err != nil {
				c.logger.Warn("failed to parse message, skipping",
					logging.MessageID(m.Id), logging.Err(err))
				continue
			}
			emails = append(emails, email)
		}

		pageToken = res.NextPageToken
		if pageToken == "" || len(emails) >= batchSize {
			break
		}
	}

	return emails, nil
}

// GetEmail retrieves and parses a single message, including attachment
// content. Used when re-processing stored emails.
func (c *Client) GetEmail(ctx context.Context, messageID string) (*Email, error) {
	msg, err := c.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	return c.parseMessage(ctx, msg)
}

// GetMessage retrieves a full Gmail message.
func (c *Client) GetMessage(ctx context.Context, messageID string) (*gmail.Message, error) {
	msg, err := c.svc.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	return msg, nil
}

// MarkAsRead removes the UNREAD label from a message.
func (c *Client) MarkAsRead(ctx context.Context, messageID string) error {
	_, err := c.svc.Messages.Modify("me", messageID, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to mark message %s as read: %w", messageID, err)
	}
	return nil
}
