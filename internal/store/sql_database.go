package store

import (
	"database/sql"

	"github.com/mlevkov/lockstep/internal/logger"
	"github.com/mlevkov/lockstep/migrations"
)

// DB wraps the raw sql.DB handle together with the store logger so the
// repositories share one connection and one migration entry point.
type DB struct {
	*sql.DB
	logger *logger.Logger
}

// Migrate applies pending schema migrations to the underlying database.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}
