package calendar

import (
	"context"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/wassersoft/mailtriage/internal/google"
)

// Client wraps the Google Calendar service.
type Client struct {
	svc        *calendar.Service
	calendarID string
}

// HasToken checks if a valid OAuth token exists.
func HasToken() bool {
	return google.HasToken()
}

// NewClient creates a new Calendar client with OAuth2 authentication,
// operating on the user's primary calendar.
func NewClient(ctx context.Context) (*Client, error) {
	httpClient, err := google.GetHTTPClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found: %w", err)
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{svc: svc, calendarID: "primary"}, nil
}

// ListEvents lists events within a time window, expanded to single events
// and ordered by start time.
func (c *Client) ListEvents(ctx context.Context, window TimeRange) ([]EventSummary, error) {
	call := c.svc.Events.List(c.calendarID).
		TimeMin(window.Start.Format(time.RFC3339)).
		TimeMax(window.End.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)

	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var summaries []EventSummary
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}
	return summaries, nil
}

// CheckAvailability reports whether the window is free of existing events.
func (c *Client) CheckAvailability(ctx context.Context, start time.Time, duration time.Duration) (bool, error) {
	window := TimeRange{Start: start, End: start.Add(duration)}
	events, err := c.ListEvents(ctx, window)
	if err != nil {
		return false, err
	}
	return len(FindConflicts(window, events)) == 0, nil
}

// InsertEvent creates a calendar event with email and popup reminders.
// Last write wins; there is no guard against concurrent callers.
func (c *Client) InsertEvent(ctx context.Context, in EventInput) (string, error) {
	event := &calendar.Event{
		Summary:     in.Summary,
		Description: in.Description,
		Location:    in.Location,
		Start: &calendar.EventDateTime{
			DateTime: in.Start.Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: in.End.Format(time.RFC3339),
		},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 30},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	for _, email := range in.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}

	created, err := c.svc.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}
	return created.Id, nil
}
