// Package cmd implements the command-line interface for mailtriage.
//
// This package provides the following commands:
//   - process: Fetch a batch of emails and run the full pipeline
//   - analyze: Extract text for stored attachments that have none yet
//   - summarize: Summarize stored emails that were fetched without analysis
//   - actions: Execute pending actions and retry unsent replies
//   - auth: Authorize access to your Google account
//   - version: Display version information
//
// The process command is the default command when no subcommand is specified.
package cmd
