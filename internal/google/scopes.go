package google

// DefaultOAuthScopes are the Google OAuth scopes the pipeline needs.
//
// The scopes provide access to:
//   - Gmail: read, modify (mark as read), send (auto replies)
//   - Google Calendar: full access (event creation and conflict checks)
var DefaultOAuthScopes = []string{
	// Gmail scopes
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/gmail.send",

	// Google Calendar scope
	"https://www.googleapis.com/auth/calendar",
}
