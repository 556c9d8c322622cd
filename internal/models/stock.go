package models

// StockBin is the per-warehouse stock level of an item, pulled from the
// server so the terminal can show availability while offline. Quantities
// are advisory only; the server remains the system of record for stock.
type StockBin struct {
	SyncDocument

	ItemCode     string  `gorm:"type:varchar(255);not null;index" json:"item_code"`
	Warehouse    string  `gorm:"type:varchar(255);not null;index" json:"warehouse"`
	ActualQty    float64 `json:"actual_qty"`
	ReservedQty  float64 `json:"reserved_qty"`
	ProjectedQty float64 `json:"projected_qty"`
}

func (StockBin) TableName() string { return "stock_bins" }
