package models

// SalesInvoiceItem is a line of a sales invoice.
type SalesInvoiceItem struct {
	ID        uint    `gorm:"primaryKey" json:"-"`
	ParentID  string  `gorm:"type:uuid;not null;index" json:"-"`
	ItemCode  string  `gorm:"type:varchar(255);not null" json:"item_code"`
	ItemName  string  `gorm:"type:varchar(255)" json:"item_name"`
	Qty       float64 `json:"qty"`
	UOM       string  `gorm:"type:varchar(50)" json:"uom"`
	Rate      float64 `json:"rate"`
	Amount    float64 `json:"amount"`
	Warehouse string  `gorm:"type:varchar(255)" json:"warehouse"`
}

func (SalesInvoiceItem) TableName() string { return "sales_invoice_items" }

// SalesInvoicePayment is one tender line of a point-of-sale invoice.
type SalesInvoicePayment struct {
	ID            uint    `gorm:"primaryKey" json:"-"`
	ParentID      string  `gorm:"type:uuid;not null;index" json:"-"`
	ModeOfPayment string  `gorm:"type:varchar(100);not null" json:"mode_of_payment"`
	Amount        float64 `json:"amount"`
}

func (SalesInvoicePayment) TableName() string { return "sales_invoice_payments" }

// SalesInvoice is the finished sale. Invoices created at the terminal are
// pushed to the server; invoices with an open balance are pulled back so
// credit sales can be settled at the counter.
type SalesInvoice struct {
	SyncDocument

	Customer          string                `gorm:"type:varchar(255);not null;index" json:"customer"`
	PostingDate       string                `gorm:"type:varchar(10)" json:"posting_date"`
	PostingTime       string                `gorm:"type:varchar(8)" json:"posting_time"`
	DueDate           RemoteString          `gorm:"type:varchar(10)" json:"due_date"`
	IsPOS             bool                  `json:"is_pos"`
	IsReturn          bool                  `json:"is_return"`
	ReturnAgainst     RemoteString          `gorm:"type:varchar(255)" json:"return_against"`
	POSProfile        RemoteString          `gorm:"type:varchar(255)" json:"pos_profile"`
	Items             []SalesInvoiceItem    `gorm:"foreignKey:ParentID;references:LocalID" json:"items"`
	Payments          []SalesInvoicePayment `gorm:"foreignKey:ParentID;references:LocalID" json:"payments"`
	NetTotal          float64               `json:"net_total"`
	GrandTotal        float64               `json:"grand_total"`
	PaidAmount        float64               `json:"paid_amount"`
	ChangeAmount      float64               `json:"change_amount"`
	OutstandingAmount float64               `json:"outstanding_amount"`
	Status            RemoteString          `gorm:"type:varchar(50);index" json:"status"`
}

func (SalesInvoice) TableName() string { return "sales_invoices" }

// PaymentEntry settles an outstanding invoice. Entries recorded at the
// terminal are pushed to the server; they are never pulled.
type PaymentEntry struct {
	SyncDocument

	PaymentType      string       `gorm:"type:varchar(20);not null" json:"payment_type"`
	Party            string       `gorm:"type:varchar(255);not null;index" json:"party"`
	PostingDate      string       `gorm:"type:varchar(10)" json:"posting_date"`
	ModeOfPayment    string       `gorm:"type:varchar(100)" json:"mode_of_payment"`
	PaidAmount       float64      `json:"paid_amount"`
	ReferenceInvoice RemoteString `gorm:"type:varchar(255);index" json:"reference_invoice"`
}

func (PaymentEntry) TableName() string { return "payment_entries" }
