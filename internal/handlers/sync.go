package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/openretail/possync/internal/store"
	"github.com/openretail/possync/internal/sync"
)

// SyncHandler exposes the engine and the sync bookkeeping over HTTP.
type SyncHandler struct {
	engine    *sync.Engine
	contextFn func() sync.Context
	metadata  *store.MetadataStore
	conflicts *store.ConflictStore
	outboxes  map[sync.Doctype]store.OutboxReporter
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(engine *sync.Engine, contextFn func() sync.Context, metadata *store.MetadataStore, conflicts *store.ConflictStore, outboxes []store.OutboxReporter) *SyncHandler {
	byType := make(map[sync.Doctype]store.OutboxReporter, len(outboxes))
	for _, o := range outboxes {
		byType[o.Doctype()] = o
	}
	return &SyncHandler{
		engine:    engine,
		contextFn: contextFn,
		metadata:  metadata,
		conflicts: conflicts,
		outboxes:  byType,
	}
}

// RegisterRoutes registers sync routes.
func (sh *SyncHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/sync/status", sh.GetStatus).Methods("GET")
	r.HandleFunc("/api/sync/run", sh.TriggerRun).Methods("POST")
	r.HandleFunc("/api/sync/metadata", sh.GetMetadata).Methods("GET")

	r.HandleFunc("/api/sync/outbox", sh.GetOutboxSummary).Methods("GET")
	r.HandleFunc("/api/sync/outbox/{doc_type}/{local_id}/retry", sh.RetryFailed).Methods("POST")

	r.HandleFunc("/api/sync/conflicts", sh.ListConflicts).Methods("GET")
	r.HandleFunc("/api/sync/conflicts/{id}/resolve", sh.ResolveConflict).Methods("POST")
}

// GetStatus returns the engine state including the last run's report.
func (sh *SyncHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, sh.engine.Status())
}

// TriggerRun starts a run in the foreground and returns its report. A 409
// means a run already holds the engine.
func (sh *SyncHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	rep, err := sh.engine.RunSync(r.Context(), sh.contextFn())
	if err == sync.ErrSyncInProgress {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// GetMetadata returns the last recorded outcome per doctype.
func (sh *SyncHandler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	rows, err := sh.metadata.All(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// GetOutboxSummary reports pending/failed counts and oldest pending age
// per doctype.
func (sh *SyncHandler) GetOutboxSummary(w http.ResponseWriter, r *http.Request) {
	sc := sh.contextFn()

	rows := make([]store.OutboxRow, 0, len(sh.outboxes))
	for _, dt := range sync.AllDoctypes() {
		reporter, ok := sh.outboxes[dt]
		if !ok {
			continue
		}
		row, err := reporter.OutboxStatus(r.Context(), sc.InstanceID, sc.CompanyID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		rows = append(rows, row)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"generated_at": time.Now().UTC(),
		"outbox":       rows,
	})
}

// RetryFailed returns one parked document to the outbox.
func (sh *SyncHandler) RetryFailed(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	dt := sync.Doctype(vars["doc_type"])

	reporter, ok := sh.outboxes[dt]
	if !ok {
		respondError(w, http.StatusNotFound, "unknown doctype "+vars["doc_type"])
		return
	}

	sc := sh.contextFn()
	if err := reporter.RetryFailed(r.Context(), sc.InstanceID, sc.CompanyID, vars["local_id"]); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "requeued"})
}

// ListConflicts returns recorded conflicts; ?open=true filters resolved
// ones out.
func (sh *SyncHandler) ListConflicts(w http.ResponseWriter, r *http.Request) {
	openOnly := r.URL.Query().Get("open") == "true"
	rows, err := sh.conflicts.List(r.Context(), openOnly)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// ResolveConflict applies keep_local or take_remote to one conflict.
func (sh *SyncHandler) ResolveConflict(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid conflict id")
		return
	}

	var body struct {
		Resolution string `json:"resolution"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := sh.conflicts.Resolve(r.Context(), uint(id), body.Resolution); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
