package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// Unit is one doctype's reconciliation step. Units never let an error
// escape: every failure is captured in the returned Result.
type Unit interface {
	Name() string
	Doctype() Doctype
	Priority() int
	Run(ctx context.Context, sc Context) Result
}

// DocUnit wires a local and a remote port for one doctype and runs the
// push and/or pull halves its direction calls for.
type DocUnit[T Doc] struct {
	doctype Doctype
	local   LocalPort[T]
	remote  RemotePort[T]
}

// NewDocUnit builds a unit for the doctype. The doctype must be registered.
func NewDocUnit[T Doc](dt Doctype, local LocalPort[T], remote RemotePort[T]) *DocUnit[T] {
	if !dt.Known() {
		panic(fmt.Sprintf("unregistered doctype %q", dt))
	}
	return &DocUnit[T]{doctype: dt, local: local, remote: remote}
}

func (u *DocUnit[T]) Name() string     { return string(u.doctype) + "_unit" }
func (u *DocUnit[T]) Doctype() Doctype { return u.doctype }
func (u *DocUnit[T]) Priority() int    { return u.doctype.Priority() }

// Run executes push before pull so locally finished documents reach the
// server before the pull can collide with them.
func (u *DocUnit[T]) Run(ctx context.Context, sc Context) Result {
	start := time.Now()
	res := Result{Unit: u.Name(), Doctype: u.doctype, Success: true}

	dir := u.doctype.Direction()

	if dir == PushOnly || dir == Bidirectional {
		u.push(ctx, sc, &res)
	}
	if res.Err == nil && (dir == PullOnly || dir == Bidirectional) {
		u.pull(ctx, sc, &res)
	}

	if res.Err != nil {
		res.Success = false
		res.Error = res.Err.Error()
	}
	res.Duration = time.Since(start)
	return res
}

// push drains the outbox oldest-first. A transport failure stops the drain
// and leaves the rest pending; a server rejection parks the one entry as
// failed and continues; a storage failure aborts the unit.
func (u *DocUnit[T]) push(ctx context.Context, sc Context, res *Result) {
	docs, err := u.local.PendingOutbox(ctx, sc.InstanceID, sc.CompanyID)
	if err != nil {
		res.Err = &LocalStorageError{Op: "load outbox", Err: err}
		return
	}
	if len(docs) == 0 {
		return
	}

	log.Printf("📤 %s: pushing %d pending document(s)", u.doctype, len(docs))

	for _, doc := range docs {
		if ctx.Err() != nil {
			res.Err = &TransportError{Op: "push " + string(u.doctype), Err: ctx.Err()}
			return
		}

		ack, err := u.remote.Create(ctx, doc)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				// Resubmitting an unchanged rejected document cannot succeed.
				if merr := u.local.MarkFailed(ctx, sc.InstanceID, sc.CompanyID, doc.DocLocalID(), verr.Reason); merr != nil {
					res.Err = &LocalStorageError{Op: "mark failed", Err: merr}
					return
				}
				log.Printf("⚠️ %s %s rejected by server: %s", u.doctype, doc.DocLocalID(), verr.Reason)
				res.Failed++
				res.Changed = true
				continue
			}
			// Connectivity is gone; the rest of the outbox stays pending.
			res.Err = err
			return
		}

		if err := u.local.MarkSynced(ctx, sc.InstanceID, sc.CompanyID, doc.DocLocalID(), ack); err != nil {
			res.Err = &LocalStorageError{Op: "mark synced", Err: err}
			return
		}
		res.Pushed++
		res.Changed = true
	}
}

// pull fetches the server's view of the scope and applies it in one
// transaction. Collisions with pending local edits are counted, not applied.
func (u *DocUnit[T]) pull(ctx context.Context, sc Context, res *Result) {
	records, err := u.remote.FetchByScope(ctx, Scope{Context: sc, Since: sc.Since()})
	if err != nil {
		res.Err = err
		return
	}
	res.Pulled = len(records)
	if len(records) == 0 {
		return
	}

	changed, conflicts, err := u.local.UpsertFromServer(ctx, sc.InstanceID, sc.CompanyID, records)
	if err != nil {
		res.Err = &LocalStorageError{Op: "apply pull", Err: err}
		return
	}
	if changed {
		res.Changed = true
	}
	res.Conflicts += conflicts
	if conflicts > 0 {
		log.Printf("⚠️ %s: %d record(s) in conflict with pending local edits", u.doctype, conflicts)
	}
}
