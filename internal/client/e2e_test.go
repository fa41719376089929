// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mikhail Levkov

package client

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlevkov/lockstep/internal/adapter"
	"github.com/mlevkov/lockstep/internal/config"
	httphandler "github.com/mlevkov/lockstep/internal/handler/http"
	"github.com/mlevkov/lockstep/internal/logger"
	"github.com/mlevkov/lockstep/internal/service"
	"github.com/mlevkov/lockstep/internal/store"
	"github.com/mlevkov/lockstep/internal/utils"
	"github.com/mlevkov/lockstep/models"
)

// Сквозной сценарий: два клиента против настоящего HTTP-сервера.

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", store.ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type memRecords struct {
	mu      sync.Mutex
	records map[string]map[string]models.Record
	hooks   []store.WriteHook
}

func newMemRecords() *memRecords {
	return &memRecords{records: make(map[string]map[string]models.Record)}
}

func (m *memRecords) Save(_ context.Context, rec models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, hook := range m.hooks {
		hook(&rec)
	}
	table := m.records[rec.Table]
	if table == nil {
		table = make(map[string]models.Record)
		m.records[rec.Table] = table
	}
	table[rec.ID] = rec
	return nil
}

func (m *memRecords) Get(_ context.Context, table, id string) (models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[table][id]
	if !ok {
		return models.Record{}, store.ErrRecordNotFound
	}
	return rec, nil
}

func (m *memRecords) ListPending(_ context.Context, table string) ([]models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []models.Record
	for _, rec := range m.records[table] {
		if rec.SyncStatus == models.StatusPending {
			pending = append(pending, rec)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })
	return pending, nil
}

func (m *memRecords) SetStatus(_ context.Context, table, id string, status models.SyncStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[table][id]
	if !ok {
		return store.ErrRecordNotFound
	}
	rec.SyncStatus = status
	m.records[table][id] = rec
	return nil
}

func (m *memRecords) SoftDelete(ctx context.Context, table, id string, at time.Time) error {
	rec, err := m.Get(ctx, table, id)
	if err != nil {
		return err
	}
	rec.DeletedAt = &at
	rec.SyncStatus = models.StatusPending
	return m.Save(ctx, rec)
}

func (m *memRecords) RegisterHook(hook store.WriteHook) {
	m.hooks = append(m.hooks, hook)
}

func newSyncServer(t *testing.T) *httptest.Server {
	t.Helper()

	auth := service.NewAuthService(config.ServerApp{
		TokenSignKey:    "e2e-sign-key",
		TokenIssuer:     "lockstep",
		TokenDuration:   time.Hour,
		PasswordHashKey: "e2e-hash-key",
	}, logger.Nop())
	backend := service.NewSyncBackend(logger.Nop())

	handler := httphandler.NewHandler(auth, backend, logger.Nop())
	ts := httptest.NewServer(handler.Init())
	t.Cleanup(ts.Close)

	return ts
}

type clientRig struct {
	app     *App
	engine  service.SyncEngine
	records *memRecords
}

func newClientRig(t *testing.T, baseURL string) *clientRig {
	t.Helper()

	records := newMemRecords()
	records.RegisterHook(store.TrackChanges(time.Now))

	adapterCfg := config.ClientAdapter{BaseURL: baseURL, RequestTimeout: 5 * time.Second}
	tokens := adapter.NewStaticTokenProvider("")
	transport := adapter.NewHTTPSyncTransport(adapterCfg, tokens)
	authClient := adapter.NewHTTPAuthClient(adapterCfg)

	engine, err := service.NewSyncEngine(context.Background(), service.EngineConfig{
		Records:   records,
		KV:        newMemKV(),
		Transport: transport,
		Tables:    []service.Table{{Name: "notes"}},
		IDs:       utils.NewUUIDGenerator(),
		Logger:    logger.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	cfg := &config.ClientConfig{
		Auth:    config.ClientAuth{Login: "alice", Password: "secret"},
		Workers: config.ClientWorkers{SyncInterval: time.Minute},
	}

	app, err := NewApp(engine, authClient, tokens, cfg, logger.Nop())
	require.NoError(t, err)

	return &clientRig{app: app, engine: engine, records: records}
}

func TestEndToEnd_TwoClientsConverge(t *testing.T) {
	ts := newSyncServer(t)
	ctx := context.Background()

	first := newClientRig(t, ts.URL)
	second := newClientRig(t, ts.URL)

	// первый логин регистрирует аккаунт, второй входит в него же
	require.NoError(t, first.app.login(ctx))
	require.NoError(t, second.app.login(ctx))

	require.NoError(t, first.records.Save(ctx, models.Record{
		ID:    "n1",
		Table: "notes",
		Data:  json.RawMessage(`{"title":"shared note"}`),
	}))

	result, err := first.engine.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pushed)
	assert.Equal(t, 0, result.Pulled)

	result, err = second.engine.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Pushed)
	assert.Equal(t, 1, result.Pulled)

	got, err := second.records.Get(ctx, "notes", "n1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSynced, got.SyncStatus)
	assert.JSONEq(t, `{"title":"shared note"}`, string(got.Data))
	assert.Nil(t, got.DeletedAt)

	// повторный цикл без изменений ничего не гоняет
	result, err = first.engine.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncResult{}, result)
}

func TestEndToEnd_DeletePropagates(t *testing.T) {
	ts := newSyncServer(t)
	ctx := context.Background()

	first := newClientRig(t, ts.URL)
	second := newClientRig(t, ts.URL)
	require.NoError(t, first.app.login(ctx))
	require.NoError(t, second.app.login(ctx))

	require.NoError(t, first.records.Save(ctx, models.Record{
		ID:    "n1",
		Table: "notes",
		Data:  json.RawMessage(`{"title":"doomed"}`),
	}))
	_, err := first.engine.SyncNow(ctx)
	require.NoError(t, err)
	_, err = second.engine.SyncNow(ctx)
	require.NoError(t, err)

	require.NoError(t, second.records.SoftDelete(ctx, "notes", "n1", time.Now()))
	_, err = second.engine.SyncNow(ctx)
	require.NoError(t, err)

	result, err := first.engine.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pulled)

	got, err := first.records.Get(ctx, "notes", "n1")
	require.NoError(t, err)
	assert.NotNil(t, got.DeletedAt)
	assert.Equal(t, models.StatusSynced, got.SyncStatus)
}

func TestEndToEnd_SyncWithoutLoginFails(t *testing.T) {
	ts := newSyncServer(t)
	ctx := context.Background()

	rig := newClientRig(t, ts.URL)

	require.NoError(t, rig.records.Save(ctx, models.Record{
		ID:    "n1",
		Table: "notes",
		Data:  json.RawMessage(`{}`),
	}))

	_, err := rig.engine.SyncNow(ctx)
	assert.ErrorIs(t, err, adapter.ErrUnauthorized)
	assert.Equal(t, models.StatusError, rig.engine.Status())
}
