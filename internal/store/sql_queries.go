package store

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	upsertRecord = `
		INSERT INTO records (
			table_name,
			id,
			data,
			sync_status,
			local_updated_at,
			deleted_at
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (table_name, id) DO UPDATE SET
			data             = excluded.data,
			sync_status      = excluded.sync_status,
			local_updated_at = excluded.local_updated_at,
			deleted_at       = excluded.deleted_at;`

	setRecordStatus = `
		UPDATE records
		SET sync_status = ?
		WHERE table_name = ? AND id = ?;`

	upsertKV = `
		INSERT INTO sync_kv (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value;`

	selectKV = `SELECT value FROM sync_kv WHERE key = ?;`

	deleteKV = `DELETE FROM sync_kv WHERE key = ?;`
)

var recordColumns = []string{
	"table_name", "id", "data", "sync_status", "local_updated_at", "deleted_at",
}

// selectRecords builds the base SELECT over the records table. Callers chain
// further predicates onto the returned builder.
func selectRecords() sq.SelectBuilder {
	return sq.Select(recordColumns...).From("records")
}
