package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/mlevkov/lockstep/internal/logger"
	"github.com/mlevkov/lockstep/internal/validators"
	"github.com/mlevkov/lockstep/models"
)

// serverRecord is the server's authoritative copy of one entity. Deleted
// entities stay as tombstones so late clients still learn about the delete.
type serverRecord struct {
	data      json.RawMessage
	updatedAt time.Time
	deletedAt *time.Time

	// seq is the position of the record's last change in the account's
	// change sequence.
	seq uint64

	// originClient is the client id that produced the last change, used to
	// suppress echoing a client's own pushes back to it.
	originClient string
}

// changedRecord pairs an entity id with its server copy while assembling a
// pull response.
type changedRecord struct {
	id  string
	rec *serverRecord
}

// accountState is all sync state of one account.
type accountState struct {
	// records maps logical table -> entity id -> authoritative copy.
	records map[string]map[string]*serverRecord

	// replay caches push responses by idempotency key so a retransmitted
	// batch is answered without being applied twice.
	replay map[string]models.PushResponse

	// seq is the monotonic change counter backing sync tokens.
	seq uint64
}

// syncBackend is the concrete in-memory implementation of SyncBackend.
// Conflicts are resolved last-write-wins on the change's timestamp, with the
// server keeping its own version on a tie or an older client write.
type syncBackend struct {
	mu       sync.Mutex
	accounts map[string]*accountState

	validator validators.Validator
	now       func() time.Time
	logger    *logger.Logger
}

// NewSyncBackend constructs an empty in-memory SyncBackend.
func NewSyncBackend(logger *logger.Logger) SyncBackend {
	return &syncBackend{
		accounts:  make(map[string]*accountState),
		validator: validators.NewChangeValidator(),
		now:       time.Now,
		logger:    logger,
	}
}

// Push implements SyncBackend.
func (s *syncBackend) Push(ctx context.Context, account string, req models.PushRequest) (models.PushResponse, error) {
	log := logger.FromContext(ctx)

	if req.IdempotencyKey == "" {
		return models.PushResponse{}, ErrMissingIdempotencyKey
	}
	if err := s.validator.Validate(ctx, req); err != nil {
		return models.PushResponse{}, fmt.Errorf("%w: %w", ErrInvalidChangeBatch, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.account(account)

	if resp, seen := state.replay[req.IdempotencyKey]; seen {
		log.Info().
			Str("account", account).
			Str("idempotency_key", req.IdempotencyKey).
			Msg("replaying cached push response")
		return resp, nil
	}

	var resp models.PushResponse
	for _, change := range req.Changes {
		table := state.records[change.Type]
		if table == nil {
			table = make(map[string]*serverRecord)
			state.records[change.Type] = table
		}

		existing := table[change.ID]

		switch change.Operation {
		case models.OpDelete:
			deletedAt := s.now()
			if change.DeletedAt != nil {
				deletedAt = *change.DeletedAt
			}
			state.seq++
			table[change.ID] = &serverRecord{
				updatedAt:    deletedAt,
				deletedAt:    &deletedAt,
				seq:          state.seq,
				originClient: req.ClientID,
			}
			resp.Applied = append(resp.Applied, change.ID)

		case models.OpUpsert:
			updatedAt := s.now()
			if change.UpdatedAt != nil {
				updatedAt = *change.UpdatedAt
			}

			if existing != nil && !existing.updatedAt.Before(updatedAt) {
				resp.Conflicts = append(resp.Conflicts, models.ConflictInfo{
					ID:            change.ID,
					ServerVersion: existing.data,
					Resolution:    models.ResolutionServerWins,
				})
				continue
			}

			state.seq++
			table[change.ID] = &serverRecord{
				data:         change.Data,
				updatedAt:    updatedAt,
				seq:          state.seq,
				originClient: req.ClientID,
			}
			resp.Applied = append(resp.Applied, change.ID)
		}
	}

	resp.SyncToken = strconv.FormatUint(state.seq, 10)
	state.replay[req.IdempotencyKey] = resp

	log.Info().
		Str("account", account).
		Int("applied", len(resp.Applied)).
		Int("conflicts", len(resp.Conflicts)).
		Msg("push batch processed")

	return resp, nil
}

// Pull implements SyncBackend. The returned token always reflects the
// account's current change head when it moved past since, even if every
// change in between was suppressed as the caller's own echo; an unchanged
// head yields an empty token so the client keeps its cursor.
func (s *syncBackend) Pull(ctx context.Context, account string, types []string, since, clientID string) (models.PullResponse, error) {
	sinceSeq, err := parseSyncToken(since)
	if err != nil {
		return models.PullResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.account(account)

	resp := models.PullResponse{Changes: make(map[string][]models.ChangeRecord)}
	for _, table := range types {
		var changed []changedRecord
		for id, rec := range state.records[table] {
			if rec.seq <= sinceSeq {
				continue
			}
			if clientID != "" && rec.originClient == clientID {
				continue
			}
			changed = append(changed, changedRecord{id: id, rec: rec})
		}

		sort.Slice(changed, func(i, j int) bool {
			return changed[i].rec.seq < changed[j].rec.seq
		})

		for _, c := range changed {
			record := models.ChangeRecord{
				ID:        c.id,
				UpdatedAt: c.rec.updatedAt,
			}
			if c.rec.deletedAt != nil {
				record.Operation = models.OpDelete
				record.DeletedAt = c.rec.deletedAt
			} else {
				record.Operation = models.OpUpsert
				record.Data = c.rec.data
			}
			resp.Changes[table] = append(resp.Changes[table], record)
		}
	}

	if state.seq > sinceSeq {
		resp.SyncToken = strconv.FormatUint(state.seq, 10)
	}

	return resp, nil
}

// account returns the state of the given account, creating it on first use.
// Callers must hold s.mu.
func (s *syncBackend) account(name string) *accountState {
	state, ok := s.accounts[name]
	if !ok {
		state = &accountState{
			records: make(map[string]map[string]*serverRecord),
			replay:  make(map[string]models.PushResponse),
		}
		s.accounts[name] = state
	}
	return state
}

// parseSyncToken decodes a client cursor. Empty means "from the beginning".
func parseSyncToken(token string) (uint64, error) {
	if token == "" {
		return 0, nil
	}
	seq, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return 0, ErrInvalidSyncToken
	}
	return seq, nil
}
