package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/openretail/possync/internal/cache"
	"github.com/openretail/possync/internal/models"
	"github.com/openretail/possync/internal/store"
	"github.com/openretail/possync/internal/sync"
)

// CatalogSnapshot is the assembled read model the selling screen works
// from. It is cached per scope fingerprint and rebuilt only after a sync
// run changes one of its doctypes.
type CatalogSnapshot struct {
	Items  []models.Item      `json:"items"`
	Groups []models.ItemGroup `json:"groups"`
	Prices []models.ItemPrice `json:"prices"`
	Stock  []models.StockBin  `json:"stock"`
}

// CatalogHandler serves the cached catalog and customer snapshots.
type CatalogHandler struct {
	contextFn func() sync.Context

	catalogCache  *cache.Snapshot
	customerCache *cache.Snapshot

	items     *store.DocStore[models.Item, *models.Item]
	groups    *store.DocStore[models.ItemGroup, *models.ItemGroup]
	prices    *store.DocStore[models.ItemPrice, *models.ItemPrice]
	bins      *store.DocStore[models.StockBin, *models.StockBin]
	customers *store.DocStore[models.Customer, *models.Customer]
}

// NewCatalogHandler creates the snapshot handler.
func NewCatalogHandler(
	contextFn func() sync.Context,
	catalogCache, customerCache *cache.Snapshot,
	items *store.DocStore[models.Item, *models.Item],
	groups *store.DocStore[models.ItemGroup, *models.ItemGroup],
	prices *store.DocStore[models.ItemPrice, *models.ItemPrice],
	bins *store.DocStore[models.StockBin, *models.StockBin],
	customers *store.DocStore[models.Customer, *models.Customer],
) *CatalogHandler {
	return &CatalogHandler{
		contextFn:     contextFn,
		catalogCache:  catalogCache,
		customerCache: customerCache,
		items:         items,
		groups:        groups,
		prices:        prices,
		bins:          bins,
		customers:     customers,
	}
}

// RegisterRoutes registers catalog routes.
func (ch *CatalogHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/pos/catalog", ch.GetCatalog).Methods("GET")
	r.HandleFunc("/api/pos/customers", ch.GetCustomers).Methods("GET")
}

// GetCatalog serves the catalog snapshot, rebuilding it on a cache miss.
func (ch *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	sc := ch.contextFn()
	key := sc.Fingerprint()

	if v, ok := ch.catalogCache.Get(key); ok {
		respondJSON(w, http.StatusOK, v)
		return
	}

	snapshot := CatalogSnapshot{}
	var err error
	if snapshot.Items, err = ch.items.List(r.Context(), sc.InstanceID, sc.CompanyID); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if snapshot.Groups, err = ch.groups.List(r.Context(), sc.InstanceID, sc.CompanyID); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if snapshot.Prices, err = ch.prices.List(r.Context(), sc.InstanceID, sc.CompanyID); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if snapshot.Stock, err = ch.bins.List(r.Context(), sc.InstanceID, sc.CompanyID); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ch.catalogCache.Put(key, snapshot)
	respondJSON(w, http.StatusOK, snapshot)
}

// GetCustomers serves the customer snapshot, rebuilding it on a cache miss.
func (ch *CatalogHandler) GetCustomers(w http.ResponseWriter, r *http.Request) {
	sc := ch.contextFn()
	key := sc.CustomerFingerprint()

	if v, ok := ch.customerCache.Get(key); ok {
		respondJSON(w, http.StatusOK, v)
		return
	}

	customers, err := ch.customers.List(r.Context(), sc.InstanceID, sc.CompanyID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ch.customerCache.Put(key, customers)
	respondJSON(w, http.StatusOK, customers)
}
