package sync

import "time"

// Decision is what a pull should do with one record.
type Decision string

const (
	// DecisionTakeRemote applies the server version over the local row.
	DecisionTakeRemote Decision = "take_remote"
	// DecisionKeepLocal keeps the local row and counts the conflict as
	// auto-resolved in the device's favor.
	DecisionKeepLocal Decision = "keep_local"
	// DecisionConflict keeps the local row and records a pending conflict
	// for manual review.
	DecisionConflict Decision = "conflict"
)

// Resolver decides how a pull treats records that exist on both sides.
//
// The one hard rule: a record with unsynced local changes is never
// overwritten by a pull, whatever the strategy says. Strategies only decide
// whether the collision is auto-resolved in the device's favor or parked
// for manual review.
type Resolver struct {
	strategy string
}

// NewResolver returns a resolver for the configured strategy. An empty
// strategy falls back to manual review.
func NewResolver(strategy string) *Resolver {
	if strategy == "" {
		strategy = "manual"
	}
	return &Resolver{strategy: strategy}
}

// Strategy returns the configured strategy name.
func (r *Resolver) Strategy() string { return r.strategy }

// Decide returns the action for a record found on both sides. localStatus
// is the row's sync status, localModified its last local update time,
// remoteModified the server's write timestamp (nil when unknown).
func (r *Resolver) Decide(localStatus string, localModified time.Time, remoteModified *time.Time) Decision {
	// Clean rows carry no device-side information worth protecting.
	if localStatus == "synced" {
		return DecisionTakeRemote
	}

	switch r.strategy {
	case "client_wins":
		return DecisionKeepLocal
	case "last_write_wins":
		if remoteModified == nil || !remoteModified.After(localModified) {
			return DecisionKeepLocal
		}
		// The server wrote later, but local edits are still pending push.
		return DecisionConflict
	default: // server_wins, manual
		return DecisionConflict
	}
}
