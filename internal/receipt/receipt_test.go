package receipt

import (
	"bytes"
	"testing"

	"github.com/openretail/possync/internal/models"
)

func sampleInvoice() *models.SalesInvoice {
	inv := &models.SalesInvoice{
		Customer:    "Walk-in",
		PostingDate: "2026-08-29",
		PostingTime: "14:32:00",
		IsPOS:       true,
		Items: []models.SalesInvoiceItem{
			{ItemCode: "SKU-1", ItemName: "Cola 0.5l", Qty: 2, Rate: 1.5, Amount: 3.0},
			{ItemCode: "SKU-2", ItemName: "Chips", Qty: 1, Rate: 2.2, Amount: 2.2},
		},
		Payments: []models.SalesInvoicePayment{
			{ModeOfPayment: "Cash", Amount: 10},
		},
		GrandTotal:   5.2,
		PaidAmount:   10,
		ChangeAmount: 4.8,
	}
	inv.LocalID = "3f6c0a1e-0000-0000-0000-000000000001"
	return inv
}

func TestGenerateInvoicePDF(t *testing.T) {
	cfg := ReceiptConfig{
		ShopName:   "Corner Shop",
		Address:    "1 Main Street",
		Footer:     "Thank you",
		LookupBase: "https://shop.example/inv/",
	}

	pdf, err := GenerateInvoicePDF(cfg, sampleInvoice())
	if err != nil {
		t.Fatalf("Failed to render receipt: %v", err)
	}

	if len(pdf) == 0 {
		t.Fatal("Expected non-empty PDF")
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("Output does not look like a PDF")
	}
}

func TestReceiptReference(t *testing.T) {
	inv := sampleInvoice()
	if receiptReference(inv) != inv.LocalID {
		t.Error("Unsynced invoice should be referenced by its local id")
	}

	name := "INV-0001"
	inv.RemoteID = &name
	if receiptReference(inv) != "INV-0001" {
		t.Error("Synced invoice should be referenced by its server name")
	}
}
