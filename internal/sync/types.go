package sync

import "time"

// Doc is the view of a document the sync machinery needs. Every GORM model
// embedding models.SyncDocument satisfies it through promoted methods.
type Doc interface {
	DocLocalID() string
	DocRemoteID() string
	DocStatus() string
	DocCreatedAt() time.Time
}

// Direction tells which halves of a sync run apply to a doctype.
type Direction int

const (
	PullOnly Direction = iota
	PushOnly
	Bidirectional
)

// Doctype identifies one synchronized document type.
type Doctype string

const (
	DoctypeItemGroup    Doctype = "item_group"
	DoctypeItem         Doctype = "item"
	DoctypeItemPrice    Doctype = "item_price"
	DoctypeStockBin     Doctype = "stock_bin"
	DoctypeCustomer     Doctype = "customer"
	DoctypeQuotation    Doctype = "quotation"
	DoctypeSalesOrder   Doctype = "sales_order"
	DoctypeSalesInvoice Doctype = "sales_invoice"
	DoctypeDeliveryNote Doctype = "delivery_note"
	DoctypePaymentEntry Doctype = "payment_entry"
)

type doctypeInfo struct {
	priority  int
	direction Direction
}

// Higher priority runs first. Master data must land before the documents
// referencing it; payment entries must follow the invoices they settle.
var registry = map[Doctype]doctypeInfo{
	DoctypeItemGroup:    {100, PullOnly},
	DoctypeItem:         {90, PullOnly},
	DoctypeItemPrice:    {80, PullOnly},
	DoctypeStockBin:     {70, PullOnly},
	DoctypeCustomer:     {60, Bidirectional},
	DoctypeQuotation:    {50, PushOnly},
	DoctypeSalesOrder:   {45, PushOnly},
	DoctypeDeliveryNote: {40, PushOnly},
	DoctypeSalesInvoice: {30, Bidirectional},
	DoctypePaymentEntry: {20, PushOnly},
}

// Priority returns the scheduling weight of the doctype; unknown doctypes
// sort last.
func (d Doctype) Priority() int {
	return registry[d].priority
}

// Direction returns the sync direction configured for the doctype.
func (d Doctype) Direction() Direction {
	return registry[d].direction
}

// Known reports whether the doctype is part of the registry.
func (d Doctype) Known() bool {
	_, ok := registry[d]
	return ok
}

// AllDoctypes lists every registered doctype in descending priority order.
func AllDoctypes() []Doctype {
	out := []Doctype{
		DoctypeItemGroup,
		DoctypeItem,
		DoctypeItemPrice,
		DoctypeStockBin,
		DoctypeCustomer,
		DoctypeQuotation,
		DoctypeSalesOrder,
		DoctypeDeliveryNote,
		DoctypeSalesInvoice,
		DoctypePaymentEntry,
	}
	return out
}
