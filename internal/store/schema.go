package store

// schemaStatements create the tables. Kept as individual statements so a
// partial failure points at the table that caused it.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS emails (
		id UUID PRIMARY KEY,
		message_id TEXT NOT NULL UNIQUE,
		thread_id TEXT NOT NULL DEFAULT '',
		sender TEXT NOT NULL,
		subject TEXT NOT NULL,
		body TEXT NOT NULL,
		received_at TIMESTAMPTZ NOT NULL,
		processed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS email_recipients (
		id UUID PRIMARY KEY,
		email_id UUID NOT NULL REFERENCES emails(id) ON DELETE CASCADE,
		address TEXT NOT NULL,
		kind TEXT NOT NULL,
		UNIQUE (email_id, address, kind)
	)`,
	`CREATE TABLE IF NOT EXISTS attachments (
		id UUID PRIMARY KEY,
		email_id UUID NOT NULL REFERENCES emails(id) ON DELETE CASCADE,
		filename TEXT NOT NULL,
		content_type TEXT NOT NULL,
		size BIGINT NOT NULL,
		extracted_text TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (email_id, filename)
	)`,
	`CREATE TABLE IF NOT EXISTS attachment_analysis (
		id UUID PRIMARY KEY,
		attachment_id UUID NOT NULL UNIQUE REFERENCES attachments(id) ON DELETE CASCADE,
		summary TEXT NOT NULL,
		key_phrases TEXT[] NOT NULL DEFAULT '{}',
		sentiment DOUBLE PRECISION NOT NULL DEFAULT 0,
		analyzed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS analysis (
		id UUID PRIMARY KEY,
		email_id UUID NOT NULL UNIQUE REFERENCES emails(id) ON DELETE CASCADE,
		summary TEXT NOT NULL,
		insights TEXT[] NOT NULL DEFAULT '{}',
		key_phrases TEXT[] NOT NULL DEFAULT '{}',
		sentiment DOUBLE PRECISION NOT NULL DEFAULT 0,
		action_type TEXT NOT NULL DEFAULT 'NO_ACTION',
		thread_context TEXT NOT NULL DEFAULT '',
		analyzed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS actions (
		id UUID PRIMARY KEY,
		email_id UUID NOT NULL REFERENCES emails(id) ON DELETE CASCADE,
		action_type TEXT NOT NULL,
		payload JSONB NOT NULL DEFAULT '{}',
		status TEXT NOT NULL DEFAULT 'PENDING',
		last_error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS email_replies (
		id UUID PRIMARY KEY,
		email_id UUID NOT NULL REFERENCES emails(id) ON DELETE CASCADE,
		recipient TEXT NOT NULL,
		subject TEXT NOT NULL,
		body TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		attempts INT NOT NULL DEFAULT 0,
		last_error TEXT NOT NULL DEFAULT '',
		sent_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}
