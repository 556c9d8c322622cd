package sync

import (
	"context"
	"time"
)

// Ack is the server's acknowledgement of a pushed document.
type Ack struct {
	RemoteID       string
	RemoteModified *time.Time
}

// Scope bounds a pull: the run context plus an optional incremental window.
type Scope struct {
	Context
	Since *time.Time
}

// LocalPort is the on-device storage seen by a sync unit. Implementations
// live in internal/store.
type LocalPort[T Doc] interface {
	// PendingOutbox returns the unsynced documents oldest-first.
	PendingOutbox(ctx context.Context, instanceID, companyID string) ([]T, error)

	// MarkSynced records the server acknowledgement for one document. It is
	// idempotent: re-marking with the same remote id is a no-op, re-marking
	// with a different remote id is an error.
	MarkSynced(ctx context.Context, instanceID, companyID, localID string, ack Ack) error

	// MarkFailed parks a document the server rejected. Failed documents
	// leave the outbox until explicitly retried.
	MarkFailed(ctx context.Context, instanceID, companyID, localID, reason string) error

	// UpsertFromServer applies pulled records transactionally. It reports
	// whether anything actually changed and how many collisions with
	// pending local edits were recorded as conflicts.
	UpsertFromServer(ctx context.Context, instanceID, companyID string, records []T) (changed bool, conflicts int, err error)
}

// RemotePort is the business server seen by a sync unit. Implementations
// live in internal/remote.
type RemotePort[T Doc] interface {
	// Create submits one document and returns the server's acknowledgement.
	Create(ctx context.Context, doc T) (Ack, error)

	// FetchByScope returns the server records visible to the scope.
	FetchByScope(ctx context.Context, scope Scope) ([]T, error)
}

// Invalidator is anything holding derived state that a changed doctype
// makes stale. Snapshot caches implement it.
type Invalidator interface {
	Invalidate()
}

// Recorder persists per-unit run outcomes. The store's metadata table
// implements it.
type Recorder interface {
	RecordRun(ctx context.Context, res Result) error
}

// Notifier receives the report of each completed run. The websocket hub
// implements it.
type Notifier interface {
	NotifyReport(rep Report)
}
