package models

import (
	"encoding/json"
	"time"
)

// ChangeOperation distinguishes the two halves of the change union.
type ChangeOperation string

const (
	// OpUpsert carries the full serialized entity.
	OpUpsert ChangeOperation = "upsert"

	// OpDelete carries only the deletion timestamp.
	OpDelete ChangeOperation = "delete"
)

// Change is the wire unit of synchronization: a tagged union of an upsert
// (full entity payload plus its local modification time) and a delete
// (deletion timestamp only). Type identifies the logical table the entity
// belongs to.
type Change struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Operation ChangeOperation `json:"operation"`

	// Data is present for upserts and null for deletes.
	Data json.RawMessage `json:"data,omitempty"`

	// UpdatedAt is the client-side modification time of an upsert.
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// DeletedAt is the deletion time of a delete.
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// ChangeRecord is a single entry of the server's change stream, returned by
// the pull endpoint grouped by logical table.
type ChangeRecord struct {
	ID        string          `json:"id"`
	Operation ChangeOperation `json:"operation"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt *time.Time      `json:"deleted_at"`
}

// ConflictResolution names how the server settled a conflicting upsert.
type ConflictResolution string

const (
	// ResolutionServerWins means the server kept its own version.
	ResolutionServerWins ConflictResolution = "server_wins"

	// ResolutionMerged is a defined extension point: the server reports a
	// merge, the client only marks the record conflicted and never attempts
	// merge semantics of its own.
	ResolutionMerged ConflictResolution = "merged"
)

// ConflictInfo is returned by the server for every pushed upsert it could not
// apply as-is.
type ConflictInfo struct {
	ID            string             `json:"id"`
	ServerVersion json.RawMessage    `json:"server_version,omitempty"`
	Resolution    ConflictResolution `json:"resolution"`
}
