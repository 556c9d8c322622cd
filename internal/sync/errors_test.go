package sync

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	te := &TransportError{Op: "create sales.invoice", Err: errors.New("connection refused")}
	ve := &ValidationError{Doctype: DoctypeSalesInvoice, LocalID: "abc", Reason: "missing customer"}
	le := &LocalStorageError{Op: "load outbox", Err: errors.New("database closed")}

	if !IsTransport(te) || IsTransport(ve) || IsTransport(le) {
		t.Error("IsTransport misclassifies")
	}
	if !IsValidation(ve) || IsValidation(te) {
		t.Error("IsValidation misclassifies")
	}
	if !IsLocalStorage(le) || IsLocalStorage(te) {
		t.Error("IsLocalStorage misclassifies")
	}
}

func TestErrorClassificationThroughWrapping(t *testing.T) {
	inner := &TransportError{Op: "search_read item", Err: errors.New("timeout")}
	wrapped := fmt.Errorf("item unit: %w", inner)

	if !IsTransport(wrapped) {
		t.Error("Classification must see through fmt.Errorf wrapping")
	}

	var te *TransportError
	if !errors.As(wrapped, &te) || te.Op != "search_read item" {
		t.Error("errors.As should recover the original transport error")
	}
}

func TestTransportErrorUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	te := &TransportError{Op: "create", Err: cause}
	if !errors.Is(te, cause) {
		t.Error("TransportError should unwrap to its cause")
	}
}
