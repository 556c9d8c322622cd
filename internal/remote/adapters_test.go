package remote

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kolo/xmlrpc"

	"github.com/openretail/possync/internal/models"
	"github.com/openretail/possync/internal/sync"
)

func TestClassify_FaultIsValidation(t *testing.T) {
	fault := xmlrpc.FaultError{Code: 1, String: "Customer is mandatory"}
	wrapped := fmt.Errorf("failed to execute create on sales.invoice: %w", fault)

	err := classify(sync.DoctypeSalesInvoice, "local-1", "create sales.invoice", wrapped)

	var ve *sync.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Server fault should classify as validation error, got %T", err)
	}
	if ve.Reason != "Customer is mandatory" {
		t.Errorf("Fault string should carry through, got %q", ve.Reason)
	}
	if ve.LocalID != "local-1" {
		t.Errorf("Local id should carry through, got %q", ve.LocalID)
	}
}

func TestClassify_NetworkIsTransport(t *testing.T) {
	err := classify(sync.DoctypeItem, "", "search_read item", errors.New("dial tcp: connection refused"))

	if !sync.IsTransport(err) {
		t.Fatalf("Network failure should classify as transport error, got %T", err)
	}
	if sync.IsValidation(err) {
		t.Error("Network failure must not look like a rejection")
	}
}

func TestDocPayload_StripsServerFields(t *testing.T) {
	remoteID := "ITEM-0001"
	item := models.Item{
		ItemCode: "SKU-1",
		ItemName: "Cola 0.5l",
	}
	item.RemoteID = &remoteID

	payload := docPayload(&item)

	if _, ok := payload["name"]; ok {
		t.Error("Server-assigned name must not be part of a create payload")
	}
	if _, ok := payload["write_date"]; ok {
		t.Error("write_date must not be part of a create payload")
	}
	if payload["item_code"] != "SKU-1" {
		t.Errorf("Business fields must survive, got %v", payload["item_code"])
	}
}

func TestDescriptors_FinancialDocumentsAreSubmitted(t *testing.T) {
	client := NewClient("http://localhost:1", "erp", "user", "pw")

	// Financial documents must land submitted, or they would never show up
	// under the outstanding-invoice filter. Drafts and master data must not.
	submitted := map[string]bool{
		NewSalesOrderRemote(client).desc.Model:   NewSalesOrderRemote(client).desc.Submit,
		NewDeliveryNoteRemote(client).desc.Model: NewDeliveryNoteRemote(client).desc.Submit,
		NewSalesInvoiceRemote(client).desc.Model: NewSalesInvoiceRemote(client).desc.Submit,
		NewPaymentEntryRemote(client).desc.Model: NewPaymentEntryRemote(client).desc.Submit,
	}
	for model, submit := range submitted {
		if !submit {
			t.Errorf("%s must be submitted after create", model)
		}
	}

	if NewQuotationRemote(client).desc.Submit {
		t.Error("Quotations stay drafts on the server")
	}
	if NewCustomerRemote(client).desc.Submit {
		t.Error("Master data has no submission lifecycle")
	}
}

func TestWithSince(t *testing.T) {
	base := []interface{}{
		[]interface{}{"disabled", "=", false},
	}

	if got := withSince(base, nil); len(got) != 1 {
		t.Errorf("Nil window must not add a clause, got %d", len(got))
	}

	sc := sync.Context{FromDate: "2026-02-01"}
	got := withSince(base, sc.Since())
	if len(got) != 2 {
		t.Fatalf("Window should add one clause, got %d", len(got))
	}
	clause := got[1].([]interface{})
	if clause[0] != "write_date" || clause[1] != ">=" {
		t.Errorf("Wrong clause shape: %v", clause)
	}
}
