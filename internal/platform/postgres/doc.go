// Package postgres implements the store interfaces against a PostgreSQL
// database. Implementations accept a store.DBTX so they run unchanged inside
// or outside a transaction, and map database-level failures (missing rows,
// version mismatches, foreign-key violations) onto the store package's
// sentinel errors.
package postgres
