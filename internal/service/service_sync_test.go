// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mikhail Levkov

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlevkov/lockstep/internal/logger"
	"github.com/mlevkov/lockstep/models"
)

func newTestBackend() SyncBackend {
	return NewSyncBackend(logger.Nop())
}

func upsertChange(id, payload string, at time.Time) models.Change {
	return models.Change{
		Type:      "notes",
		ID:        id,
		Operation: models.OpUpsert,
		Data:      json.RawMessage(payload),
		UpdatedAt: &at,
	}
}

func TestSyncBackend_PushAndPull(t *testing.T) {
	backend := newTestBackend()
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	resp, err := backend.Push(ctx, "alice", models.PushRequest{
		Changes: []models.Change{
			upsertChange("n1", `{"title":"one"}`, now),
			upsertChange("n2", `{"title":"two"}`, now.Add(time.Second)),
		},
		ClientID:       "client-a",
		IdempotencyKey: "batch-1",
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"n1", "n2"}, resp.Applied)
	assert.Empty(t, resp.Conflicts)
	assert.Equal(t, "2", resp.SyncToken)

	// другой клиент видит оба изменения в порядке применения
	pull, err := backend.Pull(ctx, "alice", []string{"notes"}, "", "client-b")
	require.NoError(t, err)
	require.Len(t, pull.Changes["notes"], 2)
	assert.Equal(t, "n1", pull.Changes["notes"][0].ID)
	assert.Equal(t, "n2", pull.Changes["notes"][1].ID)
	assert.Equal(t, "2", pull.SyncToken)
}

func TestSyncBackend_Push_IdempotentReplay(t *testing.T) {
	backend := newTestBackend()
	ctx := context.Background()
	now := time.Now()

	req := models.PushRequest{
		Changes:        []models.Change{upsertChange("n1", `{"v":1}`, now)},
		ClientID:       "client-a",
		IdempotencyKey: "batch-1",
	}

	first, err := backend.Push(ctx, "alice", req)
	require.NoError(t, err)

	// ретрансляция после потерянного ответа: тот же ответ, без повторного применения
	second, err := backend.Push(ctx, "alice", req)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	pull, err := backend.Pull(ctx, "alice", []string{"notes"}, "", "client-b")
	require.NoError(t, err)
	assert.Len(t, pull.Changes["notes"], 1)
	assert.Equal(t, first.SyncToken, pull.SyncToken)
}

func TestSyncBackend_Push_MissingIdempotencyKey(t *testing.T) {
	backend := newTestBackend()

	_, err := backend.Push(context.Background(), "alice", models.PushRequest{
		Changes:  []models.Change{upsertChange("n1", `{}`, time.Now())},
		ClientID: "client-a",
	})
	assert.ErrorIs(t, err, ErrMissingIdempotencyKey)
}

func TestSyncBackend_Push_RejectsInvalidBatch(t *testing.T) {
	backend := newTestBackend()
	ctx := context.Background()

	// upsert без полезной нагрузки
	missingData := upsertChange("n1", `{}`, time.Now())
	missingData.Data = nil

	_, err := backend.Push(ctx, "alice", models.PushRequest{
		Changes:        []models.Change{missingData},
		ClientID:       "client-a",
		IdempotencyKey: "batch-1",
	})
	assert.ErrorIs(t, err, ErrInvalidChangeBatch)

	// пустой батч тоже отклоняется до применения
	_, err = backend.Push(ctx, "alice", models.PushRequest{
		ClientID:       "client-a",
		IdempotencyKey: "batch-2",
	})
	assert.ErrorIs(t, err, ErrInvalidChangeBatch)
}

func TestSyncBackend_Push_LastWriteWinsConflict(t *testing.T) {
	backend := newTestBackend()
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	_, err := backend.Push(ctx, "alice", models.PushRequest{
		Changes:        []models.Change{upsertChange("n1", `{"v":"newer"}`, now)},
		ClientID:       "client-a",
		IdempotencyKey: "batch-1",
	})
	require.NoError(t, err)

	// второй клиент приносит более старую версию той же записи
	resp, err := backend.Push(ctx, "alice", models.PushRequest{
		Changes:        []models.Change{upsertChange("n1", `{"v":"older"}`, now.Add(-time.Minute))},
		ClientID:       "client-b",
		IdempotencyKey: "batch-2",
	})
	require.NoError(t, err)

	assert.Empty(t, resp.Applied)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, "n1", resp.Conflicts[0].ID)
	assert.Equal(t, models.ResolutionServerWins, resp.Conflicts[0].Resolution)
	assert.JSONEq(t, `{"v":"newer"}`, string(resp.Conflicts[0].ServerVersion))

	// серверная версия не изменилась
	pull, err := backend.Pull(ctx, "alice", []string{"notes"}, "", "client-c")
	require.NoError(t, err)
	require.Len(t, pull.Changes["notes"], 1)
	assert.JSONEq(t, `{"v":"newer"}`, string(pull.Changes["notes"][0].Data))
}

func TestSyncBackend_Push_NewerWriteReplacesOlder(t *testing.T) {
	backend := newTestBackend()
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	_, err := backend.Push(ctx, "alice", models.PushRequest{
		Changes:        []models.Change{upsertChange("n1", `{"v":"old"}`, now)},
		ClientID:       "client-a",
		IdempotencyKey: "batch-1",
	})
	require.NoError(t, err)

	resp, err := backend.Push(ctx, "alice", models.PushRequest{
		Changes:        []models.Change{upsertChange("n1", `{"v":"new"}`, now.Add(time.Minute))},
		ClientID:       "client-b",
		IdempotencyKey: "batch-2",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, resp.Applied)

	pull, err := backend.Pull(ctx, "alice", []string{"notes"}, "", "client-c")
	require.NoError(t, err)
	require.Len(t, pull.Changes["notes"], 1)
	assert.JSONEq(t, `{"v":"new"}`, string(pull.Changes["notes"][0].Data))
}

func TestSyncBackend_Push_DeleteCreatesTombstone(t *testing.T) {
	backend := newTestBackend()
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	deletedAt := now.Add(time.Minute)

	_, err := backend.Push(ctx, "alice", models.PushRequest{
		Changes:        []models.Change{upsertChange("n1", `{"v":1}`, now)},
		ClientID:       "client-a",
		IdempotencyKey: "batch-1",
	})
	require.NoError(t, err)

	resp, err := backend.Push(ctx, "alice", models.PushRequest{
		Changes: []models.Change{{
			Type:      "notes",
			ID:        "n1",
			Operation: models.OpDelete,
			DeletedAt: &deletedAt,
		}},
		ClientID:       "client-a",
		IdempotencyKey: "batch-2",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, resp.Applied)

	pull, err := backend.Pull(ctx, "alice", []string{"notes"}, "", "client-b")
	require.NoError(t, err)
	require.Len(t, pull.Changes["notes"], 1)
	assert.Equal(t, models.OpDelete, pull.Changes["notes"][0].Operation)
	require.NotNil(t, pull.Changes["notes"][0].DeletedAt)
	assert.Equal(t, deletedAt, *pull.Changes["notes"][0].DeletedAt)
}

func TestSyncBackend_Pull_SuppressesOwnEcho(t *testing.T) {
	backend := newTestBackend()
	ctx := context.Background()

	_, err := backend.Push(ctx, "alice", models.PushRequest{
		Changes:        []models.Change{upsertChange("n1", `{}`, time.Now())},
		ClientID:       "client-a",
		IdempotencyKey: "batch-1",
	})
	require.NoError(t, err)

	// собственные изменения не возвращаются, но курсор продвигается
	pull, err := backend.Pull(ctx, "alice", []string{"notes"}, "", "client-a")
	require.NoError(t, err)
	assert.Empty(t, pull.Changes["notes"])
	assert.Equal(t, "1", pull.SyncToken)
}

func TestSyncBackend_Pull_IncrementalCursor(t *testing.T) {
	backend := newTestBackend()
	ctx := context.Background()
	now := time.Now()

	_, err := backend.Push(ctx, "alice", models.PushRequest{
		Changes:        []models.Change{upsertChange("n1", `{}`, now)},
		ClientID:       "client-a",
		IdempotencyKey: "batch-1",
	})
	require.NoError(t, err)

	first, err := backend.Pull(ctx, "alice", []string{"notes"}, "", "client-b")
	require.NoError(t, err)
	require.Len(t, first.Changes["notes"], 1)

	// повторный pull с полученным курсором: изменений нет, токен пуст
	second, err := backend.Pull(ctx, "alice", []string{"notes"}, first.SyncToken, "client-b")
	require.NoError(t, err)
	assert.Empty(t, second.Changes["notes"])
	assert.Empty(t, second.SyncToken)

	// новое изменение снова двигает курсор
	_, err = backend.Push(ctx, "alice", models.PushRequest{
		Changes:        []models.Change{upsertChange("n2", `{}`, now.Add(time.Second))},
		ClientID:       "client-a",
		IdempotencyKey: "batch-2",
	})
	require.NoError(t, err)

	third, err := backend.Pull(ctx, "alice", []string{"notes"}, first.SyncToken, "client-b")
	require.NoError(t, err)
	require.Len(t, third.Changes["notes"], 1)
	assert.Equal(t, "n2", third.Changes["notes"][0].ID)
}

func TestSyncBackend_Pull_InvalidToken(t *testing.T) {
	backend := newTestBackend()

	_, err := backend.Pull(context.Background(), "alice", []string{"notes"}, "not-a-number", "client-a")
	assert.ErrorIs(t, err, ErrInvalidSyncToken)
}

func TestSyncBackend_AccountsAreIsolated(t *testing.T) {
	backend := newTestBackend()
	ctx := context.Background()

	_, err := backend.Push(ctx, "alice", models.PushRequest{
		Changes:        []models.Change{upsertChange("n1", `{}`, time.Now())},
		ClientID:       "client-a",
		IdempotencyKey: "batch-1",
	})
	require.NoError(t, err)

	pull, err := backend.Pull(ctx, "bob", []string{"notes"}, "", "client-b")
	require.NoError(t, err)
	assert.Empty(t, pull.Changes["notes"])
	assert.Empty(t, pull.SyncToken)
}
