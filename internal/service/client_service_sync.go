package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/mlevkov/lockstep/internal/adapter"
	"github.com/mlevkov/lockstep/internal/logger"
	"github.com/mlevkov/lockstep/internal/store"
	"github.com/mlevkov/lockstep/models"
)

const (
	kvKeyClientID      = "client_id"
	kvKeyLastSyncToken = "last_sync_token"
)

// ConnectivityProbe reports whether the device currently has network
// connectivity, without contacting the sync server. A nil probe means
// always-online.
type ConnectivityProbe func(ctx context.Context) bool

// EngineConfig assembles the dependencies of a sync engine.
type EngineConfig struct {
	Records   store.RecordStore
	KV        store.KVStore
	Transport adapter.SyncTransport
	Tables    []Table

	// IDs generates idempotency keys, journal ids and, on first run, the
	// installation's client id.
	IDs IDGenerator

	// Probe is consulted before each cycle; nil means always-online.
	Probe ConnectivityProbe

	// Backoff overrides the default retry schedule. Mainly for tests.
	Backoff []time.Duration

	// Now overrides the clock. Mainly for tests.
	Now func() time.Time

	Logger *logger.Logger
}

// syncEngine is the single orchestrator over the store, journal, retry
// scheduler and transport. It guarantees at most one push+pull cycle in
// flight per instance: concurrent SyncNow callers attach to the running
// cycle instead of starting a second one.
type syncEngine struct {
	records   store.RecordStore
	kv        store.KVStore
	transport adapter.SyncTransport
	tables    []Table
	ids       IDGenerator
	probe     ConnectivityProbe
	now       func() time.Time
	logger    *logger.Logger

	journal *operationJournal
	retry   *retryScheduler

	clientID string

	statusMu sync.Mutex
	status   models.EngineStatus

	inflightMu sync.Mutex
	inflight   *inflightSync

	jobMu     sync.Mutex
	jobCancel context.CancelFunc
	jobWG     sync.WaitGroup

	statusSubs   *subscribers[models.EngineStatus]
	completeSubs *subscribers[models.SyncResult]
	authSubs     *subscribers[error]
}

// inflightSync memoizes one running cycle so late callers share its outcome.
type inflightSync struct {
	done chan struct{}
	res  models.SyncResult
	err  error
}

// NewSyncEngine validates cfg, recovers any journal entry left by an
// interrupted previous process, loads or mints the installation's client id,
// and re-arms a persisted retry countdown. The engine starts idle; call
// Start for periodic syncing or SyncNow for a one-shot cycle.
func NewSyncEngine(ctx context.Context, cfg EngineConfig) (SyncEngine, error) {
	if cfg.Records == nil || cfg.KV == nil || cfg.Transport == nil || cfg.IDs == nil {
		return nil, ErrInvalidEngineConfig
	}
	if len(cfg.Tables) == 0 {
		return nil, ErrNoTables
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	e := &syncEngine{
		records:      cfg.Records,
		kv:           cfg.KV,
		transport:    cfg.Transport,
		tables:       cfg.Tables,
		ids:          cfg.IDs,
		probe:        cfg.Probe,
		now:          cfg.Now,
		logger:       cfg.Logger,
		status:       models.StatusIdle,
		statusSubs:   newSubscribers[models.EngineStatus](),
		completeSubs: newSubscribers[models.SyncResult](),
		authSubs:     newSubscribers[error](),
	}
	e.journal = newOperationJournal(cfg.KV, cfg.IDs, cfg.Now, cfg.Logger)
	e.retry = newRetryScheduler(cfg.KV, cfg.Backoff, cfg.Now, e.retryTrigger, cfg.Logger)

	if _, err := e.journal.RecoverStale(ctx); err != nil {
		return nil, err
	}

	clientID, err := e.ensureClientID(ctx)
	if err != nil {
		return nil, err
	}
	e.clientID = clientID

	if err = e.retry.Resume(ctx); err != nil {
		return nil, err
	}

	return e, nil
}

// SyncNow implements SyncEngine.
func (e *syncEngine) SyncNow(ctx context.Context) (models.SyncResult, error) {
	call, leader := e.joinInflight()
	if !leader {
		select {
		case <-call.done:
			return call.res, call.err
		case <-ctx.Done():
			return models.SyncResult{}, ctx.Err()
		}
	}

	call.res, call.err = e.runSync(ctx)

	e.inflightMu.Lock()
	e.inflight = nil
	e.inflightMu.Unlock()
	close(call.done)

	return call.res, call.err
}

// ForceFullSync implements SyncEngine. Any in-flight cycle is awaited first
// so its cursor write cannot land after the reset.
func (e *syncEngine) ForceFullSync(ctx context.Context) (models.SyncResult, error) {
	e.inflightMu.Lock()
	call := e.inflight
	e.inflightMu.Unlock()

	if call != nil {
		select {
		case <-call.done:
		case <-ctx.Done():
			return models.SyncResult{}, ctx.Err()
		}
	}

	if err := e.kv.Delete(ctx, kvKeyLastSyncToken); err != nil {
		return models.SyncResult{}, fmt.Errorf("reset sync cursor: %w", err)
	}

	e.logger.Info().
		Str("func", "syncEngine.ForceFullSync").
		Msg("sync cursor reset; pulling complete history")

	return e.SyncNow(ctx)
}

// Start implements SyncEngine. A running periodic job is stopped first, so
// repeated Start calls never stack timers.
func (e *syncEngine) Start(ctx context.Context, interval time.Duration) {
	e.Stop()

	jobCtx, cancel := context.WithCancel(ctx)

	e.jobMu.Lock()
	e.jobCancel = cancel
	e.jobMu.Unlock()

	e.jobWG.Add(1)
	go func() {
		defer e.jobWG.Done()
		e.runPeriodic(jobCtx, interval)
	}()
}

// Stop implements SyncEngine.
func (e *syncEngine) Stop() {
	e.jobMu.Lock()
	cancel := e.jobCancel
	e.jobCancel = nil
	e.jobMu.Unlock()

	if cancel != nil {
		cancel()
		e.jobWG.Wait()
	}
}

// Close implements SyncEngine.
func (e *syncEngine) Close() {
	e.Stop()
	e.retry.Close()
}

// Status implements SyncEngine.
func (e *syncEngine) Status() models.EngineStatus {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	return e.status
}

// OnStatusChange implements SyncEngine.
func (e *syncEngine) OnStatusChange(handler func(models.EngineStatus)) func() {
	return e.statusSubs.subscribe(handler)
}

// OnSyncComplete implements SyncEngine.
func (e *syncEngine) OnSyncComplete(handler func(models.SyncResult)) func() {
	return e.completeSubs.subscribe(handler)
}

// OnAuthError implements SyncEngine.
func (e *syncEngine) OnAuthError(handler func(error)) func() {
	return e.authSubs.subscribe(handler)
}

// runSync executes one full cycle: connectivity probe, push, pull, then
// status bookkeeping and retry scheduling according to the failure class.
func (e *syncEngine) runSync(ctx context.Context) (models.SyncResult, error) {
	if e.probe != nil && !e.probe(ctx) {
		e.logger.Info().
			Str("func", "syncEngine.runSync").
			Msg("device offline; skipping sync cycle")
		e.setStatus(models.StatusOffline)
		if _, err := e.retry.RecordFailure(ctx); err != nil {
			return models.SyncResult{}, err
		}
		return models.SyncResult{}, nil
	}

	e.setStatus(models.StatusSyncing)

	res, err := e.cycle(ctx)
	if err != nil {
		return res, e.handleFailure(ctx, err)
	}

	if err = e.retry.Clear(ctx); err != nil {
		return res, err
	}
	e.setStatus(models.StatusIdle)
	e.completeSubs.notify(res)

	e.logger.Info().
		Str("func", "syncEngine.runSync").
		Int("pushed", res.Pushed).
		Int("pulled", res.Pulled).
		Int("conflicts", res.Conflicts).
		Msg("sync cycle completed")

	return res, nil
}

func (e *syncEngine) cycle(ctx context.Context) (models.SyncResult, error) {
	var res models.SyncResult

	pushed, conflicts, err := e.push(ctx)
	if err != nil {
		return res, err
	}
	res.Pushed = pushed
	res.Conflicts = conflicts

	pulled, err := e.pull(ctx)
	if err != nil {
		return res, err
	}
	res.Pulled = pulled

	return res, nil
}

// handleFailure classifies err and reacts: auth failures raise the dedicated
// event and never feed the backoff, network failures flip the engine to
// offline, everything else is a plain error. Non-auth failures arm the retry
// scheduler.
func (e *syncEngine) handleFailure(ctx context.Context, err error) error {
	switch {
	case adapter.IsAuthError(err):
		e.logger.Warn().
			Str("func", "syncEngine.handleFailure").
			Err(err).
			Msg("sync rejected: credential invalid or expired")
		e.setStatus(models.StatusError)
		e.authSubs.notify(err)
		return err
	case isNetworkError(err):
		e.logger.Warn().
			Str("func", "syncEngine.handleFailure").
			Err(err).
			Msg("sync failed: server unreachable")
		e.setStatus(models.StatusOffline)
	default:
		e.logger.Error().
			Str("func", "syncEngine.handleFailure").
			Err(err).
			Msg("sync failed")
		e.setStatus(models.StatusError)
	}

	if _, retryErr := e.retry.RecordFailure(ctx); retryErr != nil {
		e.logger.Error().
			Str("func", "syncEngine.handleFailure").
			Err(retryErr).
			Msg("cannot persist retry state")
	}

	return err
}

func (e *syncEngine) runPeriodic(ctx context.Context, interval time.Duration) {
	e.backgroundSync(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.backgroundSync(ctx)
		}
	}
}

// backgroundSync runs one cycle with a detached context: Stop cancels future
// triggers, never a cycle that may already have reached the network.
func (e *syncEngine) backgroundSync(ctx context.Context) {
	if _, err := e.SyncNow(context.WithoutCancel(ctx)); err != nil {
		e.logger.Warn().
			Str("func", "syncEngine.backgroundSync").
			Err(err).
			Msg("periodic sync failed")
	}
}

// retryTrigger is invoked by the retry scheduler's timer. The deduplication
// in SyncNow makes a trigger racing a manual sync harmless.
func (e *syncEngine) retryTrigger() {
	if _, err := e.SyncNow(context.Background()); err != nil {
		e.logger.Debug().
			Str("func", "syncEngine.retryTrigger").
			Err(err).
			Msg("scheduled retry failed")
	}
}

// joinInflight attaches the caller to the running cycle, or registers a new
// one and elects the caller leader.
func (e *syncEngine) joinInflight() (*inflightSync, bool) {
	e.inflightMu.Lock()
	defer e.inflightMu.Unlock()

	if e.inflight != nil {
		return e.inflight, false
	}
	e.inflight = &inflightSync{done: make(chan struct{})}
	return e.inflight, true
}

func (e *syncEngine) setStatus(status models.EngineStatus) {
	e.statusMu.Lock()
	changed := e.status != status
	e.status = status
	e.statusMu.Unlock()

	if changed {
		e.statusSubs.notify(status)
	}
}

// ensureClientID loads the persisted per-installation id, minting and
// persisting one on first run.
func (e *syncEngine) ensureClientID(ctx context.Context) (string, error) {
	id, err := e.kv.Get(ctx, kvKeyClientID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, store.ErrKeyNotFound) {
		return "", fmt.Errorf("read client id: %w", err)
	}

	id = e.ids.Generate()
	if err = e.kv.Set(ctx, kvKeyClientID, id); err != nil {
		return "", fmt.Errorf("persist client id: %w", err)
	}

	e.logger.Info().
		Str("func", "syncEngine.ensureClientID").
		Str("client_id", id).
		Msg("new installation registered")

	return id, nil
}

func (e *syncEngine) tableNames() []string {
	names := make([]string, 0, len(e.tables))
	for _, t := range e.tables {
		names = append(names, t.Name)
	}
	return names
}

// isNetworkError reports whether err is a transport-level failure (server
// unreachable, DNS, timeout) rather than an application-level rejection.
func isNetworkError(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
