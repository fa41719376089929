package service

import (
	"context"
	"fmt"

	"github.com/mlevkov/lockstep/models"
)

// push uploads every pending local record as one batch. A cycle with nothing
// pending skips the network entirely. The push never touches the sync cursor:
// the cursor advances exclusively from pull responses.
func (e *syncEngine) push(ctx context.Context) (pushed, conflicts int, err error) {
	changes, owner, err := e.collectPending(ctx)
	if err != nil {
		return 0, 0, err
	}
	if len(changes) == 0 {
		return 0, 0, nil
	}

	entityIDs := make([]string, 0, len(changes))
	for _, ch := range changes {
		entityIDs = append(entityIDs, ch.ID)
	}

	if err = e.journal.Begin(ctx, models.OperationPush, entityIDs); err != nil {
		return 0, 0, err
	}

	resp, err := e.transport.Push(ctx, models.PushRequest{
		Changes:        changes,
		ClientID:       e.clientID,
		IdempotencyKey: e.ids.Generate(),
	})
	if err != nil {
		return 0, 0, fmt.Errorf("push %d changes: %w", len(changes), err)
	}

	for _, id := range resp.Applied {
		table, ok := owner[id]
		if !ok {
			e.logger.Warn().
				Str("func", "syncEngine.push").
				Str("id", id).
				Msg("server applied an id this batch never sent")
			continue
		}
		if err = e.records.SetStatus(ctx, table, id, models.StatusSynced); err != nil {
			return 0, 0, fmt.Errorf("mark %s/%s synced: %w", table, id, err)
		}
	}

	for _, conflict := range resp.Conflicts {
		table, ok := owner[conflict.ID]
		if !ok {
			e.logger.Warn().
				Str("func", "syncEngine.push").
				Str("id", conflict.ID).
				Msg("server reported a conflict for an id this batch never sent")
			continue
		}
		e.logger.Warn().
			Str("func", "syncEngine.push").
			Str("table", table).
			Str("id", conflict.ID).
			Str("resolution", string(conflict.Resolution)).
			Msg("push conflict; keeping local copy for manual resolution")
		if err = e.records.SetStatus(ctx, table, conflict.ID, models.StatusConflict); err != nil {
			return 0, 0, fmt.Errorf("mark %s/%s conflicted: %w", table, conflict.ID, err)
		}
	}

	if err = e.journal.End(ctx); err != nil {
		return 0, 0, err
	}

	return len(resp.Applied), len(resp.Conflicts), nil
}

// collectPending scans every registered table for pending records and builds
// the wire batch. owner maps each record id back to its table for response
// processing.
func (e *syncEngine) collectPending(ctx context.Context) ([]models.Change, map[string]string, error) {
	var changes []models.Change
	owner := make(map[string]string)

	for _, t := range e.tables {
		pending, err := e.records.ListPending(ctx, t.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("list pending %s records: %w", t.Name, err)
		}
		for _, rec := range pending {
			ch, err := buildChange(t, rec)
			if err != nil {
				return nil, nil, err
			}
			changes = append(changes, ch)
			owner[rec.ID] = t.Name
		}
	}

	return changes, owner, nil
}

// buildChange converts a pending record into its wire form: soft-deleted
// records become deletes carrying only the deletion timestamp, everything
// else becomes an upsert with the serialized payload.
func buildChange(t Table, rec models.Record) (models.Change, error) {
	if rec.Deleted() {
		return models.Change{
			Type:      t.Name,
			ID:        rec.ID,
			Operation: models.OpDelete,
			DeletedAt: rec.DeletedAt,
		}, nil
	}

	data, err := t.serializer().Serialize(rec)
	if err != nil {
		return models.Change{}, fmt.Errorf("serialize %s/%s: %w", t.Name, rec.ID, err)
	}

	updatedAt := rec.LocalUpdatedAt
	return models.Change{
		Type:      t.Name,
		ID:        rec.ID,
		Operation: models.OpUpsert,
		Data:      data,
		UpdatedAt: &updatedAt,
	}, nil
}
