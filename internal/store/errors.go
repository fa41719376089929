package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrRecordNotFound is returned when a query targets a record
	// (identified by table and id) that does not exist in the local store.
	ErrRecordNotFound = errors.New("record was not found")

	// ErrKeyNotFound is returned when a key-value lookup matches no row.
	// The engine relies on this to detect absent bookkeeping state, e.g. a
	// missing sync cursor meaning "full resync required".
	ErrKeyNotFound = errors.New("key was not found")
)
