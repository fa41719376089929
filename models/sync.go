package models

// EngineStatus is the externally visible state of the sync engine. The UI can
// render it directly without knowing anything about retry internals.
type EngineStatus string

const (
	StatusIdle    EngineStatus = "idle"
	StatusSyncing EngineStatus = "syncing"
	StatusOffline EngineStatus = "offline"
	StatusError   EngineStatus = "error"
)

// PushRequest is the batch sent to the push endpoint. ClientID identifies the
// installation so the server can exclude these changes from the client's own
// pull stream; IdempotencyKey is freshly generated per batch so a retransmit
// after a dropped response does not double-apply.
type PushRequest struct {
	Changes        []Change `json:"changes"`
	ClientID       string   `json:"client_id"`
	IdempotencyKey string   `json:"idempotency_key"`
}

// PushResponse reports which pushed ids the server applied and which ones
// conflicted. SyncToken is informational only: the client cursor advances
// exclusively from pull responses so a client never skips another device's
// concurrent changes by virtue of its own push.
type PushResponse struct {
	Applied   []string       `json:"applied"`
	Conflicts []ConflictInfo `json:"conflicts"`
	SyncToken string         `json:"sync_token"`
}

// PullResponse is the server's change stream since a given cursor, grouped by
// logical table. SyncToken may be empty when the server has nothing new, in
// which case the client keeps its previous cursor.
type PullResponse struct {
	Changes   map[string][]ChangeRecord `json:"changes"`
	SyncToken string                    `json:"sync_token"`
}

// SyncResult summarizes one completed push+pull cycle.
type SyncResult struct {
	// Pushed is the number of local changes acknowledged by the server.
	Pushed int `json:"pushed"`

	// Pulled is the number of remote changes applied locally.
	Pulled int `json:"pulled"`

	// Conflicts is the number of pushed changes the server rejected.
	Conflicts int `json:"conflicts"`
}
