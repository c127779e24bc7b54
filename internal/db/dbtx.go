package db

import "github.com/jmoiron/sqlx"

// DBTX is the common interface satisfied by both *sqlx.DB and *sqlx.Tx.
// Repositories depend on it instead of a concrete handle so the same code
// runs inside and outside a transaction. Queries are written with ?
// placeholders and passed through Rebind for the active driver.
type DBTX = sqlx.ExtContext

var (
	_ DBTX = (*sqlx.DB)(nil)
	_ DBTX = (*sqlx.Tx)(nil)
)
