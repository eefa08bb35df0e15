// Package reply drafts acknowledgment replies for classified emails.
//
// Drafts come from per-action templates and may be refined by an LLM when
// one is configured. Replies for actionable emails are sent automatically;
// everything else waits in PENDING for operator confirmation.
package reply
