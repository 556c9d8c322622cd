package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/openretail/possync/internal/buildinfo"
	"github.com/openretail/possync/internal/websocket"
)

// Router bundles the HTTP surface of the terminal daemon.
type Router struct {
	mux *mux.Router
	hub *websocket.Hub
}

// NewRouter builds the router with the health and event endpoints; feature
// handlers register themselves through Register.
func NewRouter(hub *websocket.Hub) *Router {
	r := &Router{
		mux: mux.NewRouter(),
		hub: hub,
	}

	r.mux.HandleFunc("/api/health", r.health).Methods("GET")
	r.mux.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		websocket.ServeWs(hub, w, req)
	})

	return r
}

// Register lets a feature handler attach its routes.
func (r *Router) Register(h interface{ RegisterRoutes(*mux.Router) }) {
	h.RegisterRoutes(r.mux)
}

// Handler returns the http.Handler to serve.
func (r *Router) Handler() http.Handler {
	return r.mux
}

func (r *Router) health(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"build_time":  buildinfo.BuildTime,
		"commit_hash": buildinfo.CommitHash,
		"started_at":  buildinfo.StartTime,
	})
}
