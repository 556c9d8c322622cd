package models

// Customer is synchronized in both directions: the catalog of existing
// customers is pulled from the server, and customers created at the
// terminal (walk-ins registered offline) are pushed back.
type Customer struct {
	SyncDocument

	CustomerName     string       `gorm:"type:varchar(255);not null;index" json:"customer_name"`
	CustomerGroup    RemoteString `gorm:"type:varchar(255)" json:"customer_group"`
	Territory        RemoteString `gorm:"type:varchar(255)" json:"territory"`
	MobileNo         RemoteString `gorm:"type:varchar(50);index" json:"mobile_no"`
	EmailID          RemoteString `gorm:"type:varchar(255)" json:"email_id"`
	TaxID            RemoteString `gorm:"type:varchar(100)" json:"tax_id"`
	DefaultPriceList RemoteString `gorm:"type:varchar(255)" json:"default_price_list"`
	Disabled         bool         `json:"disabled"`
}

func (Customer) TableName() string { return "customers" }
