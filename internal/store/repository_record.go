package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mlevkov/lockstep/internal/logger"
	"github.com/mlevkov/lockstep/models"
)

type recordRepository struct {
	*DB
	logger *logger.Logger
	hooks  []WriteHook
}

// NewRecordRepository constructs the SQLite-backed [RecordStore].
func NewRecordRepository(db *DB, logger *logger.Logger) RecordStore {
	return &recordRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *recordRepository) RegisterHook(hook WriteHook) {
	r.hooks = append(r.hooks, hook)
}

func (r *recordRepository) Save(ctx context.Context, rec models.Record) error {
	log := logger.FromContext(ctx)

	for _, hook := range r.hooks {
		hook(&rec)
	}

	var deletedAt any
	if rec.DeletedAt != nil {
		deletedAt = *rec.DeletedAt
	}

	_, err := r.DB.ExecContext(ctx, upsertRecord,
		rec.Table,
		rec.ID,
		string(rec.Data),
		string(rec.SyncStatus),
		rec.LocalUpdatedAt,
		deletedAt,
	)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.Save").
			Str("table", rec.Table).
			Str("id", rec.ID).
			Msg("failed to execute upsert for record")
		return fmt.Errorf("failed to save record (table=%s, id=%s): %w", rec.Table, rec.ID, err)
	}

	return nil
}

func (r *recordRepository) Get(ctx context.Context, table, id string) (models.Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := selectRecords().
		Where(sq.Eq{"table_name": table, "id": id}).
		ToSql()
	if err != nil {
		return models.Record{}, fmt.Errorf("failed to build select query: %w", err)
	}

	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Record{}, ErrRecordNotFound
		}
		log.Err(err).
			Str("func", "recordRepository.Get").
			Str("table", table).
			Str("id", id).
			Msg("failed to read record")
		return models.Record{}, fmt.Errorf("failed to get record (table=%s, id=%s): %w", table, id, err)
	}

	return rec, nil
}

func (r *recordRepository) ListPending(ctx context.Context, table string) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := selectRecords().
		Where(sq.Eq{"table_name": table, "sync_status": string(models.StatusPending)}).
		OrderBy("local_updated_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build pending scan query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.ListPending").
			Str("table", table).
			Msg("failed to scan pending records")
		return nil, fmt.Errorf("failed to list pending records (table=%s): %w", table, err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending record row: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending records: %w", err)
	}

	return records, nil
}

func (r *recordRepository) SetStatus(ctx context.Context, table, id string, status models.SyncStatus) error {
	log := logger.FromContext(ctx)

	res, err := r.DB.ExecContext(ctx, setRecordStatus, string(status), table, id)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.SetStatus").
			Str("table", table).
			Str("id", id).
			Msg("failed to update record status")
		return fmt.Errorf("failed to set status (table=%s, id=%s): %w", table, id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (r *recordRepository) SoftDelete(ctx context.Context, table, id string, at time.Time) error {
	rec, err := r.Get(ctx, table, id)
	if err != nil {
		return err
	}

	deletedAt := at
	rec.DeletedAt = &deletedAt
	// Routed through Save so the delete passes the write hooks and becomes
	// sync-eligible like any other local mutation.
	rec.SyncStatus = models.StatusPending

	return r.Save(ctx, rec)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.Record, error) {
	var (
		rec       models.Record
		data      string
		status    string
		deletedAt sql.NullTime
	)

	err := row.Scan(&rec.Table, &rec.ID, &data, &status, &rec.LocalUpdatedAt, &deletedAt)
	if err != nil {
		return models.Record{}, err
	}

	rec.Data = []byte(data)
	rec.SyncStatus = models.SyncStatus(status)
	if deletedAt.Valid {
		t := deletedAt.Time
		rec.DeletedAt = &t
	}

	return rec, nil
}
