package models

import "time"

// OperationKind names the two sync operations the journal can record.
type OperationKind string

const (
	OperationPush OperationKind = "push"
	OperationPull OperationKind = "pull"
)

// JournalEntry marks a push or pull as in flight. It is written before any
// network I/O starts and removed only after the response has been fully
// processed, so its presence at process start signals an interrupted attempt.
//
// The journal is a crash-recovery aid, not a transaction log: affected
// entities stay pending locally whether or not the interrupted attempt
// reached the server, so recovery is simply discarding the stale entry and
// letting the next pending scan retry the same ids.
type JournalEntry struct {
	// ID uniquely identifies the attempt.
	ID string `json:"id"`

	// Kind is push or pull.
	Kind OperationKind `json:"kind"`

	// StartedAt is when the operation began.
	StartedAt time.Time `json:"started_at"`

	// EntityIDs is the full set of record ids the operation covers.
	// Empty for pulls, whose affected set is unknown until the response.
	EntityIDs []string `json:"entity_ids,omitempty"`
}
