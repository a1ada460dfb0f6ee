// Package pg bootstraps the PostgreSQL layer on top of pgx/v5.
//
// Connect opens a pgxpool.Pool with retries, Migrate applies goose migrations
// through the same pool, and Healthcheck adapts the pool to readiness probes.
//
// DB and Querier describe the subset of pgx used by storages. *pgxpool.Pool
// and pgx.Tx implement them, so storage code runs unchanged inside or outside
// a transaction and can be tested with pgxmock.
//
// The error helpers classify driver errors by SQLSTATE:
//
//	if pg.IsDuplicateKeyError(err) {
//		return ErrUsernameTaken
//	}
package pg
