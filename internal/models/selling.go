package models

import "time"

// SellingLine is one item row of a selling document (quotation, sales
// order, delivery note). The parent type is distinguished by the table
// each wrapper struct maps it into.
type SellingLine struct {
	ID       uint    `gorm:"primaryKey" json:"-"`
	ParentID string  `gorm:"type:uuid;not null;index" json:"-"`
	ItemCode string  `gorm:"type:varchar(255);not null" json:"item_code"`
	ItemName string  `gorm:"type:varchar(255)" json:"item_name"`
	Qty      float64 `json:"qty"`
	UOM      string  `gorm:"type:varchar(50)" json:"uom"`
	Rate     float64 `json:"rate"`
	Amount   float64 `json:"amount"`
}

// QuotationItem is a line of a quotation.
type QuotationItem struct {
	SellingLine
}

func (QuotationItem) TableName() string { return "quotation_items" }

// Quotation is a priced offer drafted at the terminal and pushed to the
// server. Quotations are never pulled back.
type Quotation struct {
	SyncDocument

	Customer        string          `gorm:"type:varchar(255);not null;index" json:"customer"`
	TransactionDate string          `gorm:"type:varchar(10)" json:"transaction_date"`
	ValidTill       RemoteString    `gorm:"type:varchar(10)" json:"valid_till"`
	Items           []QuotationItem `gorm:"foreignKey:ParentID;references:LocalID" json:"items"`
	NetTotal        float64         `json:"net_total"`
	GrandTotal      float64         `json:"grand_total"`
}

func (Quotation) TableName() string { return "quotations" }

// SalesOrderItem is a line of a sales order.
type SalesOrderItem struct {
	SellingLine

	DeliveryDate string `gorm:"type:varchar(10)" json:"delivery_date"`
}

func (SalesOrderItem) TableName() string { return "sales_order_items" }

// SalesOrder is a confirmed order taken at the terminal, pushed to the
// server for fulfilment.
type SalesOrder struct {
	SyncDocument

	Customer        string           `gorm:"type:varchar(255);not null;index" json:"customer"`
	TransactionDate string           `gorm:"type:varchar(10)" json:"transaction_date"`
	DeliveryDate    string           `gorm:"type:varchar(10)" json:"delivery_date"`
	Items           []SalesOrderItem `gorm:"foreignKey:ParentID;references:LocalID" json:"items"`
	NetTotal        float64          `json:"net_total"`
	GrandTotal      float64          `json:"grand_total"`
}

func (SalesOrder) TableName() string { return "sales_orders" }

// DeliveryNoteItem is a line of a delivery note.
type DeliveryNoteItem struct {
	SellingLine

	AgainstSalesOrder RemoteString `gorm:"type:varchar(255)" json:"against_sales_order"`
}

func (DeliveryNoteItem) TableName() string { return "delivery_note_items" }

// DeliveryNote records goods handed over at the counter against an
// earlier sales order, pushed to the server.
type DeliveryNote struct {
	SyncDocument

	Customer    string             `gorm:"type:varchar(255);not null;index" json:"customer"`
	PostingDate string             `gorm:"type:varchar(10)" json:"posting_date"`
	Items       []DeliveryNoteItem `gorm:"foreignKey:ParentID;references:LocalID" json:"items"`
	GrandTotal  float64            `json:"grand_total"`
}

func (DeliveryNote) TableName() string { return "delivery_notes" }

// DocDate formats a time the way the server expects dates in documents.
func DocDate(t time.Time) string { return t.Format("2006-01-02") }
