// Package gmail provides a client for fetching and parsing inbox messages
// through the Gmail API.
//
// The client retrieves messages in batches (all or unread), parses headers,
// body and attachments into the Email type, marks processed messages as read
// and sends threaded replies. HTML bodies are converted to readable text;
// attachments above the size limit are skipped before download.
package gmail
