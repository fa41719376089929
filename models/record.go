package models

import (
	"encoding/json"
	"time"
)

// SyncStatus describes where a local record stands relative to the server.
type SyncStatus string

const (
	// StatusSynced means the server has acknowledged the record's current state.
	StatusSynced SyncStatus = "synced"

	// StatusPending means the record carries a local change the server has not
	// acknowledged yet.
	StatusPending SyncStatus = "pending"

	// StatusConflict means the last push of this record was rejected by the
	// server; the local copy is kept untouched and surfaced to the application.
	StatusConflict SyncStatus = "conflict"
)

// Valid reports whether s is one of the known sync statuses.
func (s SyncStatus) Valid() bool {
	switch s {
	case StatusSynced, StatusPending, StatusConflict:
		return true
	}
	return false
}

// Record is a single syncable row of a logical table.
//
// The engine is type-agnostic: the application's entity is carried as an
// opaque JSON document in Data, while the engine owns the bookkeeping fields
// (SyncStatus, LocalUpdatedAt, DeletedAt). A record is never physically
// removed on the client; deletion is expressed through DeletedAt so the row
// stays reconcilable with the server.
type Record struct {
	// ID is the stable unique identifier of the entity. Assigned at creation,
	// never reused.
	ID string `json:"id"`

	// Table is the logical table (entity kind) the record belongs to.
	Table string `json:"table"`

	// Data is the application payload, opaque to the engine.
	Data json.RawMessage `json:"data"`

	// SyncStatus is the record's position in the sync lifecycle.
	SyncStatus SyncStatus `json:"sync_status"`

	// LocalUpdatedAt is the timestamp of the last local mutation. For a
	// pending record it is always at or after the last applied remote write.
	LocalUpdatedAt time.Time `json:"local_updated_at"`

	// DeletedAt marks the record as soft-deleted when non-nil.
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Deleted reports whether the record is soft-deleted.
func (r *Record) Deleted() bool {
	return r.DeletedAt != nil
}
