// Package postgres provides PostgreSQL-backed implementations of the
// store interfaces. Connections are opened with the pgx stdlib driver and
// managed by the caller; stores accept a store.DBTX so they work with
// either a connection pool or a transaction.
package postgres
