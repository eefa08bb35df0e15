// Package store persists emails, attachments, analyses, actions and replies
// to Postgres through a pgx connection pool.
//
// Writes are idempotent upserts keyed on natural identifiers (message id,
// attachment filename per email, one analysis per email) so re-running a
// batch converges instead of duplicating. Each write is an independent
// statement; there is no cross-record transaction.
package store
