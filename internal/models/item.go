package models

// ItemGroup is a node of the product category tree, pulled from the server.
type ItemGroup struct {
	SyncDocument

	GroupName   string       `gorm:"type:varchar(255);not null;index" json:"item_group_name"`
	ParentGroup RemoteString `gorm:"type:varchar(255);index" json:"parent_item_group"`
	IsGroup     bool         `json:"is_group"`
}

func (ItemGroup) TableName() string { return "item_groups" }

// Item is a sellable product pulled from the server catalog.
type Item struct {
	SyncDocument

	ItemCode     string       `gorm:"type:varchar(255);not null;uniqueIndex" json:"item_code"`
	ItemName     string       `gorm:"type:varchar(255);not null" json:"item_name"`
	Description  RemoteString `gorm:"type:text" json:"description"`
	ItemGroup    string       `gorm:"type:varchar(255);index" json:"item_group"`
	StockUOM     string       `gorm:"type:varchar(50)" json:"stock_uom"`
	Barcode      RemoteString `gorm:"type:varchar(255);index" json:"barcode"`
	StandardRate float64      `json:"standard_rate"`
	IsStockItem  bool         `json:"is_stock_item"`
	Disabled     bool         `json:"disabled"`
	ImageURL     RemoteString `gorm:"type:text" json:"image"`
}

func (Item) TableName() string { return "items" }

// ItemPrice is a price-list entry for an item, pulled from the server.
type ItemPrice struct {
	SyncDocument

	ItemCode  string       `gorm:"type:varchar(255);not null;index" json:"item_code"`
	PriceList string       `gorm:"type:varchar(255);not null;index" json:"price_list"`
	Rate      float64      `json:"price_list_rate"`
	Currency  string       `gorm:"type:varchar(10)" json:"currency"`
	UOM       RemoteString `gorm:"type:varchar(50)" json:"uom"`
}

func (ItemPrice) TableName() string { return "item_prices" }
