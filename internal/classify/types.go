package classify

// ActionType identifies the follow-up an email calls for.
type ActionType string

const (
	ActionScheduleMeeting ActionType = "SCHEDULE_MEETING"
	ActionSendReply       ActionType = "SEND_REPLY"
	ActionSetReminder     ActionType = "SET_REMINDER"
	ActionForwardToSlack  ActionType = "FORWARD_TO_SLACK"
	ActionNone            ActionType = "NO_ACTION"
)

// Valid reports whether t is a known action type.
func (t ActionType) Valid() bool {
	switch t {
	case ActionScheduleMeeting, ActionSendReply, ActionSetReminder,
		ActionForwardToSlack, ActionNone:
		return true
	}
	return false
}

// Action is a classified follow-up with its parameters.
type Action struct {
	Type ActionType
	// Payload holds the ACTION_DATA key/value pairs, keys lowercased.
	Payload map[string]string
}

// Classification is the parsed analysis of one email.
type Classification struct {
	Summary       string
	Insights      []string
	ThreadContext string
	// SearchQuery is non-empty when answering the email needs external
	// information.
	SearchQuery string
	Action      Action
}

// Actionable reports whether the classification triggers an external side
// effect (calendar event, reminder or Slack notification). Actionable emails
// get their acknowledgment reply sent automatically.
func (c Classification) Actionable() bool {
	switch c.Action.Type {
	case ActionScheduleMeeting, ActionSetReminder, ActionForwardToSlack:
		return true
	}
	return false
}
