package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/openretail/possync/internal/models"
	"github.com/openretail/possync/internal/receipt"
	"github.com/openretail/possync/internal/store"
	"github.com/openretail/possync/internal/sync"
)

// POSHandler takes documents finished at the terminal into local storage.
// Everything accepted here lands in the outbox; the engine moves it to the
// server when connectivity allows.
type POSHandler struct {
	engine     *sync.Engine
	contextFn  func() sync.Context
	invoices   *store.DocStore[models.SalesInvoice, *models.SalesInvoice]
	customers  *store.DocStore[models.Customer, *models.Customer]
	payments   *store.DocStore[models.PaymentEntry, *models.PaymentEntry]
	receiptCfg receipt.ReceiptConfig
}

// NewPOSHandler creates the intake handler.
func NewPOSHandler(
	engine *sync.Engine,
	contextFn func() sync.Context,
	invoices *store.DocStore[models.SalesInvoice, *models.SalesInvoice],
	customers *store.DocStore[models.Customer, *models.Customer],
	payments *store.DocStore[models.PaymentEntry, *models.PaymentEntry],
	receiptCfg receipt.ReceiptConfig,
) *POSHandler {
	return &POSHandler{
		engine:     engine,
		contextFn:  contextFn,
		invoices:   invoices,
		customers:  customers,
		payments:   payments,
		receiptCfg: receiptCfg,
	}
}

// RegisterRoutes registers intake routes.
func (ph *POSHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/pos/invoices", ph.CreateInvoice).Methods("POST")
	r.HandleFunc("/api/pos/invoices/{local_id}/receipt", ph.GetReceipt).Methods("GET")
	r.HandleFunc("/api/pos/customers", ph.CreateCustomer).Methods("POST")
	r.HandleFunc("/api/pos/payments", ph.CreatePayment).Methods("POST")
}

// CreateInvoice stores a finished sale and nudges the engine. The sale is
// accepted whether or not the server is reachable.
func (ph *POSHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv models.SalesInvoice
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		respondError(w, http.StatusBadRequest, "invalid invoice payload")
		return
	}
	if inv.Customer == "" || len(inv.Items) == 0 {
		respondError(w, http.StatusBadRequest, "invoice needs a customer and at least one item")
		return
	}
	if inv.PostingDate == "" {
		now := time.Now()
		inv.PostingDate = models.DocDate(now)
		if inv.PostingTime == "" {
			inv.PostingTime = now.Format("15:04:05")
		}
	}

	sc := ph.contextFn()
	if err := ph.invoices.Insert(r.Context(), sc.InstanceID, sc.CompanyID, &inv); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ph.engine.RequestSync("invoice intake")
	respondJSON(w, http.StatusCreated, map[string]string{
		"local_id": inv.LocalID,
		"status":   inv.SyncStatus,
	})
}

// GetReceipt renders the receipt PDF for a stored invoice.
func (ph *POSHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	sc := ph.contextFn()
	inv, err := ph.invoices.Get(r.Context(), sc.InstanceID, sc.CompanyID, mux.Vars(r)["local_id"])
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	pdf, err := receipt.GenerateInvoicePDF(ph.receiptCfg, inv)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=receipt.pdf")
	w.Write(pdf)
}

// CreateCustomer stores a customer registered at the counter.
func (ph *POSHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var cust models.Customer
	if err := json.NewDecoder(r.Body).Decode(&cust); err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer payload")
		return
	}
	if cust.CustomerName == "" {
		respondError(w, http.StatusBadRequest, "customer name is required")
		return
	}

	sc := ph.contextFn()
	if err := ph.customers.Insert(r.Context(), sc.InstanceID, sc.CompanyID, &cust); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ph.engine.RequestSync("customer intake")
	respondJSON(w, http.StatusCreated, map[string]string{"local_id": cust.LocalID})
}

// CreatePayment stores a settlement against an outstanding invoice.
func (ph *POSHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var pay models.PaymentEntry
	if err := json.NewDecoder(r.Body).Decode(&pay); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payment payload")
		return
	}
	if pay.Party == "" || pay.PaidAmount <= 0 {
		respondError(w, http.StatusBadRequest, "payment needs a party and a positive amount")
		return
	}
	if pay.PostingDate == "" {
		pay.PostingDate = models.DocDate(time.Now())
	}

	sc := ph.contextFn()
	if err := ph.payments.Insert(r.Context(), sc.InstanceID, sc.CompanyID, &pay); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ph.engine.RequestSync("payment intake")
	respondJSON(w, http.StatusCreated, map[string]string{"local_id": pay.LocalID})
}
