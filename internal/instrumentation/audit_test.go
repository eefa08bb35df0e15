package instrumentation

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestProcessingEventStatus(t *testing.T) {
	ok := ProcessingEvent{Success: true}
	if ok.Status() != StatusSuccess {
		t.Errorf("expected %q, got %q", StatusSuccess, ok.Status())
	}

	failed := ProcessingEvent{Success: false}
	if failed.Status() != StatusError {
		t.Errorf("expected %q, got %q", StatusError, failed.Status())
	}
}

func TestProcessingEventLogAttrsHidesPII(t *testing.T) {
	event := ProcessingEvent{
		MessageID: "msg-1",
		Sender:    "alice@example.com",
		Duration:  time.Second,
		Success:   true,
	}

	for _, attr := range event.LogAttrs(false) {
		if attr.Key == "sender" {
			t.Error("sender attribute must not appear without PII enabled")
		}
		if attr.Key == "sender_domain" && attr.Value.String() != "example.com" {
			t.Errorf("expected domain example.com, got %q", attr.Value.String())
		}
	}

	found := false
	for _, attr := range event.LogAttrs(true) {
		if attr.Key == "sender" && attr.Value.String() == "alice@example.com" {
			found = true
		}
	}
	if !found {
		t.Error("expected full sender attribute with PII enabled")
	}
}

func TestAuditorRecordsWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	auditor := NewAuditor(logger, AuditLoggingConfig{Enabled: true})
	auditor.RecordEmailProcessed(context.Background(), ProcessingEvent{
		MessageID:  "msg-42",
		Sender:     "alice@example.com",
		ActionType: "SCHEDULE_MEETING",
		Success:    true,
	})

	out := buf.String()
	if !strings.Contains(out, "email processed") {
		t.Error("expected audit record to be written")
	}
	if !strings.Contains(out, "msg-42") {
		t.Error("expected message id in audit record")
	}
	if strings.Contains(out, "alice@example.com") {
		t.Error("full sender must not appear without PII enabled")
	}
}

func TestAuditorNoopWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	auditor := NewAuditor(logger, AuditLoggingConfig{Enabled: false})
	auditor.RecordEmailProcessed(context.Background(), ProcessingEvent{MessageID: "msg-1"})

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
