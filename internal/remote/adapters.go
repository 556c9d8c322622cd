package remote

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kolo/xmlrpc"

	"github.com/openretail/possync/internal/models"
	"github.com/openretail/possync/internal/sync"
)

// Descriptor tells a DocRemote how one doctype maps onto the server: the
// remote model, the fields to pull, the scope filter and the push payload.
type Descriptor[T sync.Doc] struct {
	Doctype sync.Doctype
	Model   string
	Fields  []string
	Domain  func(scope sync.Scope) []interface{}
	Payload func(doc T) map[string]interface{}
	// Submit finalizes the record server-side after create. Financial
	// documents are pushed as submitted, drafts stay drafts.
	Submit bool
}

// DocRemote implements sync.RemotePort for one doctype over the XML-RPC
// client.
type DocRemote[T sync.Doc] struct {
	client *Client
	desc   Descriptor[T]
}

// NewDocRemote wires a descriptor to the client.
func NewDocRemote[T sync.Doc](client *Client, desc Descriptor[T]) *DocRemote[T] {
	return &DocRemote[T]{client: client, desc: desc}
}

type ackRow struct {
	Name      models.RemoteString `json:"name"`
	WriteDate *time.Time          `json:"write_date"`
}

// Create submits one document and reads back the document name the server
// assigned. The payload always carries the device's local id so the server
// can deduplicate a resubmission after a lost acknowledgement.
func (r *DocRemote[T]) Create(ctx context.Context, doc T) (sync.Ack, error) {
	values := r.desc.Payload(doc)
	values["device_local_id"] = doc.DocLocalID()

	id, err := r.client.Create(ctx, r.desc.Model, values)
	if err != nil {
		return sync.Ack{}, classify(r.desc.Doctype, doc.DocLocalID(), "create "+r.desc.Model, err)
	}

	if r.desc.Submit {
		// The record exists either way; a resubmission after a failure here
		// is deduplicated server-side through the device local id.
		if _, err := r.client.CallMethod(ctx, r.desc.Model, "submit", []int64{id}, nil); err != nil {
			return sync.Ack{}, classify(r.desc.Doctype, doc.DocLocalID(), "submit "+r.desc.Model, err)
		}
	}

	var rows []ackRow
	if err := r.client.Read(ctx, r.desc.Model, []int64{id}, []string{"name", "write_date"}, &rows); err != nil || len(rows) == 0 {
		// The record exists; fall back to the numeric id rather than
		// leaving the entry pending and risking a duplicate.
		log.Printf("⚠️ Could not read back %s %d after create: %v", r.desc.Model, id, err)
		return sync.Ack{RemoteID: fmt.Sprintf("%d", id)}, nil
	}

	return sync.Ack{RemoteID: rows[0].Name.String(), RemoteModified: rows[0].WriteDate}, nil
}

// FetchByScope pulls the records visible to the scope.
func (r *DocRemote[T]) FetchByScope(ctx context.Context, scope sync.Scope) ([]T, error) {
	var domain []interface{}
	if r.desc.Domain != nil {
		domain = r.desc.Domain(scope)
	}
	if domain == nil {
		domain = []interface{}{}
	}

	var out []T
	if err := r.client.SearchRead(ctx, r.desc.Model, domain, r.desc.Fields, 0, 0, &out); err != nil {
		return nil, classify(r.desc.Doctype, "", "search_read "+r.desc.Model, err)
	}
	return out, nil
}

// classify maps raw call failures onto the sync error taxonomy: a server
// fault is a rejection of the document, anything else is connectivity.
func classify(dt sync.Doctype, localID, op string, err error) error {
	var fault xmlrpc.FaultError
	if errors.As(err, &fault) {
		return &sync.ValidationError{Doctype: dt, LocalID: localID, Reason: fault.String, Err: err}
	}
	return &sync.TransportError{Op: op, Err: err}
}
