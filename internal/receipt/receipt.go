// Package receipt renders customer receipts for finished sales. Output is
// a narrow PDF fitting 80mm thermal printers, with a QR code the server
// resolves back to the invoice.
package receipt

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/openretail/possync/internal/models"
)

// ReceiptConfig holds the header printed on every receipt.
type ReceiptConfig struct {
	ShopName string
	Address  string
	Footer   string
	// LookupBase prefixes the QR content, e.g. "https://shop.example/inv/".
	LookupBase string
}

const (
	receiptWidth = 80.0
	leftMargin   = 5.0
	lineHeight   = 4.5
)

// GenerateInvoicePDF renders one invoice as a receipt PDF.
func GenerateInvoicePDF(cfg ReceiptConfig, inv *models.SalesInvoice) ([]byte, error) {
	// Height grows with line count; gofpdf needs it up front.
	height := 90.0 + float64(len(inv.Items)+len(inv.Payments))*lineHeight + 35.0

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: receiptWidth, Ht: height},
	})
	pdf.SetMargins(leftMargin, 5, leftMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	usable := receiptWidth - 2*leftMargin

	// Header
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(usable, 5, cfg.ShopName, "", 1, "C", false, 0, "")
	if cfg.Address != "" {
		pdf.SetFont("Arial", "", 7)
		pdf.CellFormat(usable, 3.5, cfg.Address, "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(usable, lineHeight, fmt.Sprintf("Invoice: %s", receiptReference(inv)), "", 1, "L", false, 0, "")
	pdf.CellFormat(usable, lineHeight, fmt.Sprintf("Date: %s %s", inv.PostingDate, inv.PostingTime), "", 1, "L", false, 0, "")
	pdf.CellFormat(usable, lineHeight, fmt.Sprintf("Customer: %s", inv.Customer), "", 1, "L", false, 0, "")
	pdf.Ln(1)

	// Lines
	pdf.SetFont("Arial", "B", 8)
	pdf.CellFormat(usable*0.5, lineHeight, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(usable*0.15, lineHeight, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(usable*0.35, lineHeight, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 8)
	for _, line := range inv.Items {
		name := line.ItemName
		if name == "" {
			name = line.ItemCode
		}
		pdf.CellFormat(usable*0.5, lineHeight, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(usable*0.15, lineHeight, trimFloat(line.Qty), "", 0, "R", false, 0, "")
		pdf.CellFormat(usable*0.35, lineHeight, fmt.Sprintf("%.2f", line.Amount), "", 1, "R", false, 0, "")
	}
	pdf.Ln(1)

	// Totals
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(usable*0.6, lineHeight, "TOTAL", "T", 0, "L", false, 0, "")
	pdf.CellFormat(usable*0.4, lineHeight, fmt.Sprintf("%.2f", inv.GrandTotal), "T", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 8)
	for _, pay := range inv.Payments {
		pdf.CellFormat(usable*0.6, lineHeight, pay.ModeOfPayment, "", 0, "L", false, 0, "")
		pdf.CellFormat(usable*0.4, lineHeight, fmt.Sprintf("%.2f", pay.Amount), "", 1, "R", false, 0, "")
	}
	if inv.ChangeAmount != 0 {
		pdf.CellFormat(usable*0.6, lineHeight, "Change", "", 0, "L", false, 0, "")
		pdf.CellFormat(usable*0.4, lineHeight, fmt.Sprintf("%.2f", inv.ChangeAmount), "", 1, "R", false, 0, "")
	}
	if inv.OutstandingAmount > 0 {
		pdf.SetFont("Arial", "B", 8)
		pdf.CellFormat(usable*0.6, lineHeight, "Outstanding", "", 0, "L", false, 0, "")
		pdf.CellFormat(usable*0.4, lineHeight, fmt.Sprintf("%.2f", inv.OutstandingAmount), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	// QR block: the reference resolves to the invoice once it is synced;
	// until then the local id still identifies it on this terminal.
	qrContent := cfg.LookupBase + receiptReference(inv)
	qrPng, err := qrcode.Encode(qrContent, qrcode.Low, 256)
	if err != nil {
		return nil, fmt.Errorf("encode receipt QR: %w", err)
	}

	imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	_ = pdf.RegisterImageOptionsReader("qr", imgOptions, bytes.NewReader(qrPng))

	qrSize := 22.0
	pdf.ImageOptions("qr", (receiptWidth-qrSize)/2, pdf.GetY(), qrSize, qrSize, false, imgOptions, 0, "")
	pdf.SetY(pdf.GetY() + qrSize + 2)

	if cfg.Footer != "" {
		pdf.SetFont("Arial", "", 7)
		pdf.CellFormat(usable, 3.5, cfg.Footer, "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func receiptReference(inv *models.SalesInvoice) string {
	if inv.RemoteID != nil && *inv.RemoteID != "" {
		return *inv.RemoteID
	}
	return inv.LocalID
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%.2f", f)
}
