package sync

import (
	"errors"
	"fmt"
)

// ErrSyncInProgress is returned when a run is requested while another run
// holds the engine.
var ErrSyncInProgress = errors.New("sync already in progress")

// ErrEngineRunning is returned by Start when the engine is already started.
var ErrEngineRunning = errors.New("sync engine already running")

// TransportError marks a failure to reach or talk to the remote server.
// Entries touched by the failing operation stay pending and are retried on
// the next run.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError marks a document the server rejected as malformed or
// inconsistent. Retrying without changing the document is pointless, so the
// entry is parked in failed state instead of clogging the outbox.
type ValidationError struct {
	Doctype Doctype
	LocalID string
	Reason  string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.LocalID != "" {
		return fmt.Sprintf("server rejected %s %s: %s", e.Doctype, e.LocalID, e.Reason)
	}
	return fmt.Sprintf("server rejected %s: %s", e.Doctype, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// LocalStorageError marks a failure of the on-device database. It aborts
// the current unit; nothing can be safely recorded without storage.
type LocalStorageError struct {
	Op  string
	Err error
}

func (e *LocalStorageError) Error() string {
	return fmt.Sprintf("local storage error during %s: %v", e.Op, e.Err)
}

func (e *LocalStorageError) Unwrap() error { return e.Err }

// ConflictError marks a pull that met pending local edits. It is recorded,
// never propagated as a unit failure.
type ConflictError struct {
	Doctype Doctype
	LocalID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s %s: pending local changes", e.Doctype, e.LocalID)
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsLocalStorage reports whether err is (or wraps) a LocalStorageError.
func IsLocalStorage(err error) bool {
	var le *LocalStorageError
	return errors.As(err, &le)
}
