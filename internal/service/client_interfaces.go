package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mlevkov/lockstep/models"
)

// SyncEngine reconciles the local store with the remote sync service. One
// engine instance is constructed at application start and owns all sync
// state; there is no process-wide singleton.
type SyncEngine interface {
	// SyncNow runs one push-then-pull cycle. If a cycle is already in
	// flight the caller is attached to it and receives the same outcome; at
	// most one network round-trip runs per instance at any time. When the
	// connectivity probe reports offline, the engine transitions to the
	// offline status and returns a zero result without contacting the
	// server.
	SyncNow(ctx context.Context) (models.SyncResult, error)

	// ForceFullSync awaits any in-flight cycle, deletes the persisted
	// cursor, and runs a fresh cycle whose pull re-fetches the server's
	// complete change history. Used for first-login hydration and recovery
	// from local corruption.
	ForceFullSync(ctx context.Context) (models.SyncResult, error)

	// Start launches the periodic background trigger, performing one
	// immediate sync. Starting while already started restarts the timer
	// (stop-then-start); duplicate timers are never created.
	Start(ctx context.Context, interval time.Duration)

	// Stop prevents future periodic triggers. A sync already in flight is
	// not cancelled.
	Stop()

	// Status returns the engine's externally visible state.
	Status() models.EngineStatus

	// OnStatusChange registers a status observer. The returned function
	// removes it; other subscribers are unaffected.
	OnStatusChange(handler func(models.EngineStatus)) (unsubscribe func())

	// OnSyncComplete registers an observer invoked with the counts of every
	// successfully completed cycle.
	OnSyncComplete(handler func(models.SyncResult)) (unsubscribe func())

	// OnAuthError registers an observer invoked when a cycle fails with an
	// authentication error, so the caller can refresh the credential
	// out-of-band. Auth failures do not feed the generic retry backoff.
	OnAuthError(handler func(error)) (unsubscribe func())

	// Close stops the periodic trigger and cancels any armed retry timer.
	Close()
}

// Table configures one logical table participating in sync.
type Table struct {
	// Name identifies the table on both sides of the wire.
	Name string

	// Serializer converts between the stored record and its wire payload.
	// Nil means the record's raw data is shipped as-is.
	Serializer Serializer
}

func (t Table) serializer() Serializer {
	if t.Serializer == nil {
		return rawSerializer{}
	}
	return t.Serializer
}

// Serializer is the application-supplied codec for one table's payloads.
type Serializer interface {
	// Serialize produces the wire payload of an upsert for rec.
	Serialize(rec models.Record) (json.RawMessage, error)

	// Deserialize applies a remote payload onto rec before it is saved.
	Deserialize(data json.RawMessage, rec *models.Record) error
}

// rawSerializer ships the stored document unchanged.
type rawSerializer struct{}

func (rawSerializer) Serialize(rec models.Record) (json.RawMessage, error) {
	return rec.Data, nil
}

func (rawSerializer) Deserialize(data json.RawMessage, rec *models.Record) error {
	rec.Data = data
	return nil
}

// IDGenerator produces unique identifiers for idempotency keys, journal
// entries, and the per-installation client id.
type IDGenerator interface {
	Generate() string
}
