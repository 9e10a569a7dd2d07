package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/bptracker/internal/entryservice"
	"github.com/starford/bptracker/internal/reading"
)

// NewRouter creates a chi router with all API routes, meant to be mounted
// under /api. authEnabled controls whether Bearer token auth is enforced.
// defaults is the entry-creation default policy of the REST surface.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *entryservice.Service, defaults reading.Defaults, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, defaults)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/entries", h.ListEntries)
	r.Post("/entries", h.CreateEntry)
	r.Get("/entries/{id}", h.GetEntry)
	r.Delete("/entries/{id}", h.DeleteEntry)

	r.Get("/stats", h.Stats)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

// Index handles GET / with a description of the API.
func Index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Info)
}
