package calendar

import (
	"testing"
	"time"
)

var scheduleNow = time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"today", "2025-04-01"},
		{"Today", "2025-04-01"},
		{"tomorrow", "2025-04-02"},
		{"2025-04-10", "2025-04-10"},
		{"10th April 2025", "2025-04-10"},
		{"1st May 2025", "2025-05-01"},
		{"2nd May 2025", "2025-05-02"},
		{"3rd May 2025", "2025-05-03"},
		{"", "2025-04-01"},
		{"not specified", "2025-04-01"},
		{"complete nonsense", "2025-04-01"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := NormalizeDate(tt.raw, scheduleNow); got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"14:00", "14:00"},
		{"2:00 PM", "14:00"},
		{"2:00PM", "14:00"},
		{"9:15 AM", "09:15"},
		{"9 o'clock at night", "21:00"},
		{"9 o'clock", "09:00"},
		{"12 o'clock at night", "12:00"},
		{"none", "09:30"},
		{"now", "09:30"},
		{"", "09:30"},
		{"not specified", "09:30"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := NormalizeTime(tt.raw, scheduleNow); got != tt.want {
				t.Errorf("NormalizeTime(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEventPayload_EventWindow(t *testing.T) {
	p := EventPayload{
		Date:            "2025-04-10",
		Time:            "2:00 PM",
		DurationMinutes: 30,
		Title:           "Design review",
	}

	window, err := p.EventWindow(scheduleNow, time.UTC)
	if err != nil {
		t.Fatalf("EventWindow error: %v", err)
	}

	wantStart := time.Date(2025, 4, 10, 14, 0, 0, 0, time.UTC)
	if !window.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", window.Start, wantStart)
	}
	if got := window.End.Sub(window.Start); got != 30*time.Minute {
		t.Errorf("duration = %v, want 30m", got)
	}
}

func TestEventPayload_EventWindow_DefaultDuration(t *testing.T) {
	p := EventPayload{Date: "today", Time: "10:00"}

	window, err := p.EventWindow(scheduleNow, time.UTC)
	if err != nil {
		t.Fatalf("EventWindow error: %v", err)
	}
	if got := window.End.Sub(window.Start); got != time.Hour {
		t.Errorf("default duration = %v, want 1h", got)
	}
}

func TestEventPayload_ValidParticipants(t *testing.T) {
	p := EventPayload{
		Participants: []string{
			"alice@example.com",
			"not-an-address",
			" bob@example.com ",
			"",
		},
	}

	got := p.ValidParticipants()
	want := []string{"alice@example.com", "bob@example.com"}
	if len(got) != len(want) {
		t.Fatalf("ValidParticipants = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("participant %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "first.last+tag@example.org"}
	invalid := []string{"", "plain", "@missing.local", "user@", "user@nodot"}

	for _, e := range valid {
		if !IsValidEmail(e) {
			t.Errorf("IsValidEmail(%q) = false, want true", e)
		}
	}
	for _, e := range invalid {
		if IsValidEmail(e) {
			t.Errorf("IsValidEmail(%q) = true, want false", e)
		}
	}
}

func TestToEventSummary_Nil(t *testing.T) {
	summary := toEventSummary(nil)
	if summary.ID != "" {
		t.Errorf("expected empty ID for nil event, got %s", summary.ID)
	}
}
