package remote

import (
	"encoding/json"
	"time"

	"github.com/openretail/possync/internal/models"
	"github.com/openretail/possync/internal/sync"
)

const remoteTimeLayout = "2006-01-02 15:04:05"

// docPayload turns a model into the create payload through its json tags,
// stripping the server-owned fields.
func docPayload(doc interface{}) map[string]interface{} {
	raw, err := json.Marshal(doc)
	if err != nil {
		return map[string]interface{}{}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]interface{}{}
	}
	delete(m, "name")
	delete(m, "write_date")
	return m
}

// withSince narrows a domain to records written after the scope window.
func withSince(domain []interface{}, since *time.Time) []interface{} {
	if since == nil {
		return domain
	}
	return append(domain, []interface{}{"write_date", ">=", since.Format(remoteTimeLayout)})
}

// NewItemGroupRemote pulls the full category tree.
func NewItemGroupRemote(client *Client) *DocRemote[*models.ItemGroup] {
	return NewDocRemote(client, Descriptor[*models.ItemGroup]{
		Doctype: sync.DoctypeItemGroup,
		Model:   "item.group",
		Fields:  []string{"name", "write_date", "item_group_name", "parent_item_group", "is_group"},
		Domain: func(scope sync.Scope) []interface{} {
			return withSince([]interface{}{}, scope.Since)
		},
		Payload: func(doc *models.ItemGroup) map[string]interface{} { return docPayload(doc) },
	})
}

// NewItemRemote pulls the sellable catalog (disabled items excluded).
func NewItemRemote(client *Client) *DocRemote[*models.Item] {
	return NewDocRemote(client, Descriptor[*models.Item]{
		Doctype: sync.DoctypeItem,
		Model:   "item",
		Fields: []string{
			"name", "write_date", "item_code", "item_name", "description",
			"item_group", "stock_uom", "barcode", "standard_rate",
			"is_stock_item", "disabled", "image",
		},
		Domain: func(scope sync.Scope) []interface{} {
			domain := []interface{}{
				[]interface{}{"disabled", "=", false},
			}
			return withSince(domain, scope.Since)
		},
		Payload: func(doc *models.Item) map[string]interface{} { return docPayload(doc) },
	})
}

// NewItemPriceRemote pulls the prices of the device's price list.
func NewItemPriceRemote(client *Client) *DocRemote[*models.ItemPrice] {
	return NewDocRemote(client, Descriptor[*models.ItemPrice]{
		Doctype: sync.DoctypeItemPrice,
		Model:   "item.price",
		Fields:  []string{"name", "write_date", "item_code", "price_list", "price_list_rate", "currency", "uom"},
		Domain: func(scope sync.Scope) []interface{} {
			domain := []interface{}{}
			if scope.PriceList != "" {
				domain = append(domain, []interface{}{"price_list", "=", scope.PriceList})
			}
			return withSince(domain, scope.Since)
		},
		Payload: func(doc *models.ItemPrice) map[string]interface{} { return docPayload(doc) },
	})
}

// NewStockBinRemote pulls stock levels of the device's warehouse. Stock is
// advisory, so the pull is always full, never windowed.
func NewStockBinRemote(client *Client) *DocRemote[*models.StockBin] {
	return NewDocRemote(client, Descriptor[*models.StockBin]{
		Doctype: sync.DoctypeStockBin,
		Model:   "stock.bin",
		Fields:  []string{"name", "write_date", "item_code", "warehouse", "actual_qty", "reserved_qty", "projected_qty"},
		Domain: func(scope sync.Scope) []interface{} {
			domain := []interface{}{}
			if scope.WarehouseID != "" {
				domain = append(domain, []interface{}{"warehouse", "=", scope.WarehouseID})
			}
			return domain
		},
		Payload: func(doc *models.StockBin) map[string]interface{} { return docPayload(doc) },
	})
}

// NewCustomerRemote syncs customers both ways, scoped to the device's
// territory when one is registered.
func NewCustomerRemote(client *Client) *DocRemote[*models.Customer] {
	return NewDocRemote(client, Descriptor[*models.Customer]{
		Doctype: sync.DoctypeCustomer,
		Model:   "customer",
		Fields: []string{
			"name", "write_date", "customer_name", "customer_group",
			"territory", "mobile_no", "email_id", "tax_id",
			"default_price_list", "disabled",
		},
		Domain: func(scope sync.Scope) []interface{} {
			domain := []interface{}{
				[]interface{}{"disabled", "=", false},
			}
			if scope.TerritoryID != "" {
				domain = append(domain, []interface{}{"territory", "=", scope.TerritoryID})
			}
			return withSince(domain, scope.Since)
		},
		Payload: func(doc *models.Customer) map[string]interface{} { return docPayload(doc) },
	})
}

// NewQuotationRemote pushes quotations; they are never pulled.
func NewQuotationRemote(client *Client) *DocRemote[*models.Quotation] {
	return NewDocRemote(client, Descriptor[*models.Quotation]{
		Doctype: sync.DoctypeQuotation,
		Model:   "quotation",
		Payload: func(doc *models.Quotation) map[string]interface{} { return docPayload(doc) },
	})
}

// NewSalesOrderRemote pushes sales orders; they are never pulled.
func NewSalesOrderRemote(client *Client) *DocRemote[*models.SalesOrder] {
	return NewDocRemote(client, Descriptor[*models.SalesOrder]{
		Doctype: sync.DoctypeSalesOrder,
		Model:   "sales.order",
		Submit:  true,
		Payload: func(doc *models.SalesOrder) map[string]interface{} { return docPayload(doc) },
	})
}

// NewDeliveryNoteRemote pushes delivery notes; they are never pulled.
func NewDeliveryNoteRemote(client *Client) *DocRemote[*models.DeliveryNote] {
	return NewDocRemote(client, Descriptor[*models.DeliveryNote]{
		Doctype: sync.DoctypeDeliveryNote,
		Model:   "delivery.note",
		Submit:  true,
		Payload: func(doc *models.DeliveryNote) map[string]interface{} { return docPayload(doc) },
	})
}

// NewSalesInvoiceRemote pushes finished sales and pulls back every invoice
// with an open balance, so credit sales can be settled at the counter. The
// pull is a business filter, not a date window.
func NewSalesInvoiceRemote(client *Client) *DocRemote[*models.SalesInvoice] {
	return NewDocRemote(client, Descriptor[*models.SalesInvoice]{
		Doctype: sync.DoctypeSalesInvoice,
		Model:   "sales.invoice",
		Submit:  true,
		Fields: []string{
			"name", "write_date", "customer", "posting_date", "posting_time",
			"due_date", "is_pos", "is_return", "return_against", "pos_profile",
			"net_total", "grand_total", "paid_amount", "change_amount",
			"outstanding_amount", "status",
		},
		Domain: func(scope sync.Scope) []interface{} {
			return []interface{}{
				[]interface{}{"outstanding_amount", ">", 0.0},
				[]interface{}{"docstatus", "=", 1},
			}
		},
		Payload: func(doc *models.SalesInvoice) map[string]interface{} { return docPayload(doc) },
	})
}

// NewPaymentEntryRemote pushes payment entries; they are never pulled.
func NewPaymentEntryRemote(client *Client) *DocRemote[*models.PaymentEntry] {
	return NewDocRemote(client, Descriptor[*models.PaymentEntry]{
		Doctype: sync.DoctypePaymentEntry,
		Model:   "payment.entry",
		Submit:  true,
		Payload: func(doc *models.PaymentEntry) map[string]interface{} { return docPayload(doc) },
	})
}
