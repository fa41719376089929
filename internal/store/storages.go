package store

import (
	"context"
	"fmt"
	"time"

	"github.com/mlevkov/lockstep/internal/config"
	"github.com/mlevkov/lockstep/internal/logger"
)

// ClientStorages groups the client-side storage surfaces into a single value
// that can be passed to the engine.
type ClientStorages struct {
	// Records is the SQLite-backed table store for syncable entities.
	Records RecordStore

	// KV is the bookkeeping key-value store (client id, cursor, retry state,
	// operation journal).
	KV KVStore
}

// NewClientStorages initialises the client storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to the file path in cfg.DB.DSN, creating the
//     database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Constructs the record and kv repositories and installs the change
//     tracker hook on the record repository.
func NewClientStorages(cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(context.Background(), cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	records := NewRecordRepository(db, logger)
	records.RegisterHook(TrackChanges(time.Now))

	return &ClientStorages{
		Records: records,
		KV:      NewKVRepository(db, logger),
	}, nil
}
