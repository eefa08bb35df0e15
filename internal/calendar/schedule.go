package calendar

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// EventPayload is the calendar action payload produced by the classifier.
// Date and Time are free-form strings extracted from email text and are
// normalized before scheduling.
type EventPayload struct {
	Date            string
	Time            string
	DurationMinutes int
	Participants    []string
	Title           string
	Description     string
	Location        string
}

const defaultDurationMinutes = 60

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether the address has a plausible mailbox form.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ordinalDatePattern matches forms like "10th April 2025".
var ordinalDatePattern = regexp.MustCompile(`^(\d{1,2})(st|nd|rd|th)\s+([A-Za-z]+)\s+(\d{4})$`)

// NormalizeDate turns an extracted date phrase into YYYY-MM-DD.
// "today", "tomorrow" and ordinal forms like "10th April 2025" are handled;
// anything unparseable falls back to today's date.
func NormalizeDate(raw string, now time.Time) string {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "today", "none", "not specified":
		return now.Format("2006-01-02")
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format("2006-01-02")
	}

	if m := ordinalDatePattern.FindStringSubmatch(s); m != nil {
		if t, err := time.Parse("2 January 2006", m[1]+" "+m[3]+" "+m[4]); err == nil {
			return t.Format("2006-01-02")
		}
		return now.Format("2006-01-02")
	}

	if _, err := time.Parse("2006-01-02", s); err == nil {
		return s
	}
	return now.Format("2006-01-02")
}

// NormalizeTime turns an extracted time phrase into HH:MM (24h).
// Handles "2:00 PM", "9 o'clock at night" and placeholder values; anything
// unparseable falls back to the current time.
func NormalizeTime(raw string, now time.Time) string {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)

	switch lower {
	case "", "none", "now", "not specified":
		return now.Format("15:04")
	}

	if strings.Contains(lower, "o'clock") {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, lower)
		hour, err := strconv.Atoi(digits)
		if err != nil || hour < 0 || hour > 23 {
			return now.Format("15:04")
		}
		if hour != 12 && (strings.Contains(lower, "night") ||
			strings.Contains(lower, "evening") || strings.Contains(lower, "pm")) {
			hour += 12
		}
		return fmt.Sprintf("%02d:00", hour)
	}

	for _, layout := range []string{"3:04 PM", "3:04PM", "3 PM", "3PM"} {
		if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return t.Format("15:04")
		}
	}

	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format("15:04")
	}
	return now.Format("15:04")
}

// EventWindow resolves the payload's date/time phrases into a concrete window
// in the given location.
func (p EventPayload) EventWindow(now time.Time, loc *time.Location) (TimeRange, error) {
	if loc == nil {
		loc = time.Local
	}

	date := NormalizeDate(p.Date, now)
	clock := NormalizeTime(p.Time, now)

	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
	if err != nil {
		return TimeRange{}, fmt.Errorf("failed to resolve event time: %w", err)
	}

	duration := p.DurationMinutes
	if duration <= 0 {
		duration = defaultDurationMinutes
	}
	return TimeRange{Start: start, End: start.Add(time.Duration(duration) * time.Minute)}, nil
}

// ValidParticipants filters the payload's participants down to plausible
// mailbox addresses.
func (p EventPayload) ValidParticipants() []string {
	var out []string
	for _, email := range p.Participants {
		if IsValidEmail(strings.TrimSpace(email)) {
			out = append(out, strings.TrimSpace(email))
		}
	}
	return out
}

// ScheduleEvent resolves the payload into a concrete window, shifts it to the
// next free slot when it conflicts with existing events, and creates the
// event. When no free slot is found within the search budget the conflict is
// returned for operator decision (wrapped ErrConflict).
func (c *Client) ScheduleEvent(ctx context.Context, p EventPayload, now time.Time) (string, error) {
	window, err := p.EventWindow(now, time.Local)
	if err != nil {
		return "", err
	}
	duration := window.End.Sub(window.Start)

	start, err := c.FindNextAvailableSlot(ctx, window.Start, duration)
	if err != nil {
		return "", fmt.Errorf("scheduling %q: %w", p.Title, err)
	}

	description := p.Description
	if description == "" {
		description = "No description provided"
	}
	location := p.Location
	if location == "" {
		location = "virtual"
	}

	return c.InsertEvent(ctx, EventInput{
		Summary:     p.Title,
		Description: description,
		Location:    location,
		Start:       start,
		End:         start.Add(duration),
		Attendees:   p.ValidParticipants(),
	})
}
