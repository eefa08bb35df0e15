package logging

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestWithOperation(t *testing.T) {
	logger := slog.Default()
	result := WithOperation(logger, "gmail.fetch")
	if result == nil {
		t.Error("WithOperation returned nil")
	}
}

func TestWithPhase(t *testing.T) {
	logger := slog.Default()
	result := WithPhase(logger, "extract")
	if result == nil {
		t.Error("WithPhase returned nil")
	}
}

func TestWithService(t *testing.T) {
	logger := slog.Default()
	result := WithService(logger, "calendar")
	if result == nil {
		t.Error("WithService returned nil")
	}
}

func TestOperationAttr(t *testing.T) {
	attr := Operation("store.upsert")
	if attr.Key != KeyOperation {
		t.Errorf("Operation key = %q, want %q", attr.Key, KeyOperation)
	}
	if attr.Value.String() != "store.upsert" {
		t.Errorf("Operation value = %q, want %q", attr.Value.String(), "store.upsert")
	}
}

func TestPhaseAttr(t *testing.T) {
	attr := Phase("summarize")
	if attr.Key != KeyPhase {
		t.Errorf("Phase key = %q, want %q", attr.Key, KeyPhase)
	}
	if attr.Value.String() != "summarize" {
		t.Errorf("Phase value = %q, want %q", attr.Value.String(), "summarize")
	}
}

func TestActionTypeAttr(t *testing.T) {
	attr := ActionType("SCHEDULE_MEETING")
	if attr.Key != KeyActionType {
		t.Errorf("ActionType key = %q, want %q", attr.Key, KeyActionType)
	}
	if attr.Value.String() != "SCHEDULE_MEETING" {
		t.Errorf("ActionType value = %q, want %q", attr.Value.String(), "SCHEDULE_MEETING")
	}
}

func TestStatusAttr(t *testing.T) {
	attr := Status(StatusSuccess)
	if attr.Key != KeyStatus {
		t.Errorf("Status key = %q, want %q", attr.Key, KeyStatus)
	}
	if attr.Value.String() != StatusSuccess {
		t.Errorf("Status value = %q, want %q", attr.Value.String(), StatusSuccess)
	}
}

func TestErr(t *testing.T) {
	err := errors.New("test error")
	attr := Err(err)
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "test error" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "test error")
	}

	// Nil errors produce an empty group that slog omits from output
	attr = Err(nil)
	if attr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty", attr.Key)
	}
}

func TestAnonymizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
	}{
		{"regular address", "alice@example.com"},
		{"display name form", "Alice <alice@example.com>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnonymizeEmail(tt.email)
			if !strings.HasPrefix(got, "user:") {
				t.Errorf("AnonymizeEmail(%q) = %q, want user: prefix", tt.email, got)
			}
			if strings.Contains(got, "@") {
				t.Errorf("AnonymizeEmail(%q) = %q leaks the address", tt.email, got)
			}
			// Deterministic for identical input
			if again := AnonymizeEmail(tt.email); again != got {
				t.Errorf("AnonymizeEmail not deterministic: %q vs %q", got, again)
			}
		})
	}

	if AnonymizeEmail("") != "" {
		t.Error("AnonymizeEmail(\"\") should be empty")
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken(""); got != "<empty>" {
		t.Errorf("SanitizeToken(\"\") = %q, want <empty>", got)
	}
	got := SanitizeToken("sk-or-v1-secret")
	if strings.Contains(got, "secret") {
		t.Errorf("SanitizeToken leaks token content: %q", got)
	}
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"alice@example.com", "example.com"},
		{"not-an-address", ""},
		{"", ""},
		{"a@b@c", ""},
	}

	for _, tt := range tests {
		if got := ExtractDomain(tt.email); got != tt.want {
			t.Errorf("ExtractDomain(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}
}
