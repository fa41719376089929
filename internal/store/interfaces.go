// Package store implements the client's local persistence layer: a SQLite
// table of syncable records and a small key-value table holding the engine's
// bookkeeping (client id, sync cursor, retry state, operation journal).
//
// The record repository exposes a before-write hook point so that sync
// eligibility is a property of the storage layer itself: every write path
// passes through the registered hooks, whether or not the sync engine knows
// about it.
package store

import (
	"context"
	"time"

	"github.com/mlevkov/lockstep/models"
)

// WriteHook mutates a record immediately before it is persisted. Hooks run in
// registration order on every Save; they must not perform I/O.
type WriteHook func(rec *models.Record)

// RecordStore is the local table-oriented store the sync engine reconciles
// against. Records are keyed by (table, id); the sync status column is
// indexed so pending scans stay cheap.
type RecordStore interface {
	// Save upserts rec after passing it through the registered write hooks.
	// Application writes leave SyncStatus empty (or pending) and are forced
	// pending by the change tracker; writes applying a remote change set
	// StatusSynced explicitly and keep their stamps.
	Save(ctx context.Context, rec models.Record) error

	// Get returns the record with the given table and id, or
	// [ErrRecordNotFound].
	Get(ctx context.Context, table, id string) (models.Record, error)

	// ListPending returns all records of table whose sync status is pending.
	ListPending(ctx context.Context, table string) ([]models.Record, error)

	// SetStatus updates only the sync status column. It bypasses write hooks:
	// status transitions are engine bookkeeping, not local mutations.
	SetStatus(ctx context.Context, table, id string, status models.SyncStatus) error

	// SoftDelete stamps DeletedAt on the record and routes the write through
	// the hooks, so a local delete becomes sync-eligible like any other
	// mutation. Records are never physically removed on the client.
	SoftDelete(ctx context.Context, table, id string, at time.Time) error

	// RegisterHook appends a write hook. Not safe to call concurrently with
	// Save; hooks are installed once during storage assembly.
	RegisterHook(hook WriteHook)
}

// KVStore is a typed key-value surface over the sync_kv table. The engine
// persists its bookkeeping blobs here; the presence or absence of a key is
// itself meaningful (an absent cursor means "full resync required").
type KVStore interface {
	// Get returns the value stored under key, or [ErrKeyNotFound].
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
