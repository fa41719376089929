package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mlevkov/lockstep/internal/logger"
)

type kvRepository struct {
	*DB
	logger *logger.Logger
}

// NewKVRepository constructs the SQLite-backed [KVStore] over the sync_kv
// table.
func NewKVRepository(db *DB, logger *logger.Logger) KVStore {
	return &kvRepository{
		DB:     db,
		logger: logger,
	}
}

func (k *kvRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := k.DB.QueryRowContext(ctx, selectKV, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		logger.FromContext(ctx).Err(err).
			Str("func", "kvRepository.Get").
			Str("key", key).
			Msg("failed to read kv entry")
		return "", fmt.Errorf("failed to get kv entry %s: %w", key, err)
	}

	return value, nil
}

func (k *kvRepository) Set(ctx context.Context, key, value string) error {
	_, err := k.DB.ExecContext(ctx, upsertKV, key, value)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "kvRepository.Set").
			Str("key", key).
			Msg("failed to write kv entry")
		return fmt.Errorf("failed to set kv entry %s: %w", key, err)
	}

	return nil
}

func (k *kvRepository) Delete(ctx context.Context, key string) error {
	_, err := k.DB.ExecContext(ctx, deleteKV, key)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "kvRepository.Delete").
			Str("key", key).
			Msg("failed to delete kv entry")
		return fmt.Errorf("failed to delete kv entry %s: %w", key, err)
	}

	return nil
}
