package gmail

import "time"

// FetchMode selects which inbox messages a fetch retrieves.
type FetchMode string

const (
	// FetchUnread retrieves only unread inbox messages.
	FetchUnread FetchMode = "unread"
	// FetchAll retrieves all inbox messages, read or not.
	FetchAll FetchMode = "all"
)

// Valid reports whether the mode is one of the supported fetch modes.
func (m FetchMode) Valid() bool {
	return m == FetchUnread || m == FetchAll
}

// Query returns the Gmail search query for the mode.
func (m FetchMode) Query() string {
	if m == FetchUnread {
		return "is:unread"
	}
	return ""
}

// Recipients holds the To/Cc/Bcc addresses of a message.
type Recipients struct {
	To  []string
	Cc  []string
	Bcc []string
}

// Email is a parsed inbox message.
type Email struct {
	MessageID   string
	ThreadID    string
	Sender      string
	Recipients  Recipients
	Subject     string
	Body        string
	Timestamp   time.Time
	Unread      bool
	Attachments []Attachment
}

// Attachment is a downloaded message attachment.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Content     []byte
}
