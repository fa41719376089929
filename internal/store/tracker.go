package store

import (
	"time"

	"github.com/mlevkov/lockstep/models"
)

// TrackChanges returns the write hook that makes every local mutation
// sync-eligible automatically.
//
// A write that explicitly marks the record synced is the result of applying a
// remote pull and keeps its stamps. Every other write — creation, edit, soft
// delete, from any call site — is forced to pending with a fresh local
// modification time. Local edits therefore always win over concurrent pulls
// until the server acknowledges them.
//
// now is injectable for tests; pass time.Now in production.
func TrackChanges(now func() time.Time) WriteHook {
	return func(rec *models.Record) {
		if rec.SyncStatus == models.StatusSynced {
			return
		}

		rec.SyncStatus = models.StatusPending
		rec.LocalUpdatedAt = now()
	}
}
