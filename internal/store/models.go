package store

import (
	"time"

	"github.com/google/uuid"
)

// RecipientKind distinguishes the To/Cc/Bcc lists.
type RecipientKind string

const (
	RecipientTo  RecipientKind = "to"
	RecipientCc  RecipientKind = "cc"
	RecipientBcc RecipientKind = "bcc"
)

// Email is a stored message. MessageID is the provider's stable identifier
// and the upsert key.
type Email struct {
	ID         uuid.UUID
	MessageID  string
	ThreadID   string
	Sender     string
	Subject    string
	Body       string
	ReceivedAt time.Time
	Processed  bool
	CreatedAt  time.Time
}

// Recipient is one address on an email's To/Cc/Bcc lists.
type Recipient struct {
	ID      uuid.UUID
	EmailID uuid.UUID
	Address string
	Kind    RecipientKind
}

// Attachment is stored metadata plus, once analyzed, the extracted text.
// (EmailID, Filename) is the upsert key.
type Attachment struct {
	ID            uuid.UUID
	EmailID       uuid.UUID
	Filename      string
	ContentType   string
	Size          int64
	ExtractedText *string
	CreatedAt     time.Time
}

// AttachmentAnalysis is the per-attachment summary, keyed by attachment.
type AttachmentAnalysis struct {
	ID           uuid.UUID
	AttachmentID uuid.UUID
	Summary      string
	KeyPhrases   []string
	Sentiment    float64
	AnalyzedAt   time.Time
}

// Analysis is the per-email summary and classification, keyed by email.
type Analysis struct {
	ID            uuid.UUID
	EmailID       uuid.UUID
	Summary       string
	Insights      []string
	KeyPhrases    []string
	Sentiment     float64
	ActionType    string
	ThreadContext string
	AnalyzedAt    time.Time
}

// Action statuses.
const (
	ActionStatusPending   = "PENDING"
	ActionStatusCompleted = "COMPLETED"
	ActionStatusFailed    = "FAILED"
)

// Action is a classified follow-up awaiting or past execution.
type Action struct {
	ID        uuid.UUID
	EmailID   uuid.UUID
	Type      string
	Payload   map[string]string
	Status    string
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reply is a drafted response with its delivery state.
type Reply struct {
	ID        uuid.UUID
	EmailID   uuid.UUID
	Recipient string
	Subject   string
	Body      string
	Status    string
	Attempts  int
	LastError string
	SentAt    *time.Time
	CreatedAt time.Time
}
