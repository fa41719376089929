package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mlevkov/lockstep/internal/logger"
	"github.com/mlevkov/lockstep/internal/store"
	"github.com/mlevkov/lockstep/models"
)

const kvKeyJournal = "op_journal"

// operationJournal records that a push or pull is in flight, persisted before
// any network I/O begins. It is consulted exactly once, at engine
// construction: a surviving entry means the previous process died mid-
// operation. Recovery is cheap because affected records stay pending either
// way — the entry is discarded with a warning and the next pending scan
// retries the same ids.
type operationJournal struct {
	kv     store.KVStore
	ids    IDGenerator
	now    func() time.Time
	logger *logger.Logger
}

func newOperationJournal(kv store.KVStore, ids IDGenerator, now func() time.Time, log *logger.Logger) *operationJournal {
	return &operationJournal{kv: kv, ids: ids, now: now, logger: log}
}

// Begin persists a journal entry for an operation about to start. It must be
// called before the corresponding network request is sent.
func (j *operationJournal) Begin(ctx context.Context, kind models.OperationKind, entityIDs []string) error {
	entry := models.JournalEntry{
		ID:        j.ids.Generate(),
		Kind:      kind,
		StartedAt: j.now(),
		EntityIDs: entityIDs,
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}

	if err = j.kv.Set(ctx, kvKeyJournal, string(payload)); err != nil {
		return fmt.Errorf("persist journal entry: %w", err)
	}

	return nil
}

// End removes the journal entry after the operation's response has been fully
// processed. A failed operation leaves the entry in place: it is either
// overwritten by the next attempt or reported as stale after a restart.
func (j *operationJournal) End(ctx context.Context) error {
	if err := j.kv.Delete(ctx, kvKeyJournal); err != nil {
		return fmt.Errorf("clear journal entry: %w", err)
	}
	return nil
}

// RecoverStale checks for a leftover entry from a previous process. If one
// exists it is logged and discarded; no push is re-sent, the regular pending
// scan covers the interrupted ids. Returns the stale entry when found.
func (j *operationJournal) RecoverStale(ctx context.Context) (*models.JournalEntry, error) {
	raw, err := j.kv.Get(ctx, kvKeyJournal)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read journal entry: %w", err)
	}

	var entry models.JournalEntry
	if err = json.Unmarshal([]byte(raw), &entry); err != nil {
		j.logger.Warn().
			Str("func", "operationJournal.RecoverStale").
			Msg("discarding unreadable journal entry")
	} else {
		j.logger.Warn().
			Str("func", "operationJournal.RecoverStale").
			Str("operation", string(entry.Kind)).
			Time("started_at", entry.StartedAt).
			Int("entities", len(entry.EntityIDs)).
			Msg("previous sync attempt was interrupted; pending records will be retried")
	}

	if err = j.kv.Delete(ctx, kvKeyJournal); err != nil {
		return nil, fmt.Errorf("discard stale journal entry: %w", err)
	}

	return &entry, nil
}
