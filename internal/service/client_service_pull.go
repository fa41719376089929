package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mlevkov/lockstep/internal/store"
	"github.com/mlevkov/lockstep/models"
)

// pull downloads the server's change stream since the persisted cursor and
// applies it to the local store. The cursor is persisted only when the
// response carries a non-empty token, and only after every change landed, so
// an interrupted pull re-fetches instead of skipping.
func (e *syncEngine) pull(ctx context.Context) (int, error) {
	since, err := e.kv.Get(ctx, kvKeyLastSyncToken)
	if err != nil && !errors.Is(err, store.ErrKeyNotFound) {
		return 0, fmt.Errorf("read sync cursor: %w", err)
	}

	if err = e.journal.Begin(ctx, models.OperationPull, nil); err != nil {
		return 0, err
	}

	resp, err := e.transport.Pull(ctx, e.tableNames(), since, e.clientID)
	if err != nil {
		return 0, fmt.Errorf("pull changes: %w", err)
	}

	applied := 0
	for _, t := range e.tables {
		for _, change := range resp.Changes[t.Name] {
			ok, err := e.applyRemote(ctx, t, change)
			if err != nil {
				return applied, err
			}
			if ok {
				applied++
			}
		}
	}

	if resp.SyncToken != "" {
		if err = e.kv.Set(ctx, kvKeyLastSyncToken, resp.SyncToken); err != nil {
			return applied, fmt.Errorf("persist sync cursor: %w", err)
		}
	}

	if err = e.journal.End(ctx); err != nil {
		return applied, err
	}

	return applied, nil
}

// applyRemote lands one remote change locally, reporting whether it was
// applied. A local record still pending shadows a remote upsert: the local
// edit wins until it has been pushed and the server has had its say. Remote
// deletes go through regardless, even over a pending local edit, turning
// into local soft deletes; a server-side delete is treated as final rather
// than something a stale local edit may resurrect.
func (e *syncEngine) applyRemote(ctx context.Context, t Table, change models.ChangeRecord) (bool, error) {
	local, err := e.records.Get(ctx, t.Name, change.ID)
	switch {
	case err == nil:
		if change.Operation == models.OpUpsert && local.SyncStatus == models.StatusPending {
			e.logger.Debug().
				Str("func", "syncEngine.applyRemote").
				Str("table", t.Name).
				Str("id", change.ID).
				Msg("skipping remote upsert: local pending change wins")
			return false, nil
		}
	case errors.Is(err, store.ErrRecordNotFound):
		if change.Operation == models.OpDelete {
			return false, nil
		}
		local = models.Record{ID: change.ID, Table: t.Name}
	default:
		return false, fmt.Errorf("load local %s/%s: %w", t.Name, change.ID, err)
	}

	switch change.Operation {
	case models.OpDelete:
		deletedAt := change.UpdatedAt
		if change.DeletedAt != nil {
			deletedAt = *change.DeletedAt
		}
		local.DeletedAt = &deletedAt
	case models.OpUpsert:
		if err = t.serializer().Deserialize(change.Data, &local); err != nil {
			return false, fmt.Errorf("deserialize %s/%s: %w", t.Name, change.ID, err)
		}
		local.DeletedAt = nil
	default:
		e.logger.Warn().
			Str("func", "syncEngine.applyRemote").
			Str("table", t.Name).
			Str("id", change.ID).
			Str("operation", string(change.Operation)).
			Msg("skipping change with unknown operation")
		return false, nil
	}

	// StatusSynced writes pass the change tracker untouched
	local.SyncStatus = models.StatusSynced
	local.LocalUpdatedAt = change.UpdatedAt

	if err = e.records.Save(ctx, local); err != nil {
		return false, fmt.Errorf("apply remote %s/%s: %w", t.Name, change.ID, err)
	}

	return true, nil
}
