package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/bptracker/internal/apperr"
	"github.com/starford/bptracker/internal/entryservice"
	"github.com/starford/bptracker/internal/reading"
)

const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc      *entryservice.Service
	defaults reading.Defaults
}

// NewHandler creates a new Handler.
func NewHandler(svc *entryservice.Service, defaults reading.Defaults) *Handler {
	return &Handler{svc: svc, defaults: defaults}
}

// entryID parses the {id} URL parameter. Ids that are not integers cannot
// exist, so callers answer 404 rather than 400.
func entryID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// ListEntries handles GET /api/entries.
//
//	@Summary		List all entries
//	@Tags			entries
//	@Produce		json
//	@Success		200	{object}	okResponse
//	@Security		BearerAuth
//	@Router			/entries [get]
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.List(r.Context())
	if err != nil {
		slog.Error("list entries failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if entries == nil {
		entries = []reading.Reading{}
	}
	writeJSON(w, http.StatusOK, okBody(entries))
}

// GetEntry handles GET /api/entries/{id}.
//
//	@Summary		Get a single entry by id
//	@Tags			entries
//	@Produce		json
//	@Param			id	path		int	true	"Entry id"
//	@Success		200	{object}	okResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/{id} [get]
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("Entry not found"))
		return
	}
	entry, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("Entry not found"))
		} else {
			slog.Error("get entry failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, okBody(entry))
}

// CreateEntry handles POST /api/entries.
//
//	@Summary		Add a new entry
//	@Tags			entries
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateEntryRequest	true	"Entry to create"
//	@Success		201		{object}	okResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries [post]
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	entry, err := h.svc.Create(r.Context(), req.input(), h.defaults)
	if err != nil {
		var ve *reading.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusBadRequest, errorBody(ve.Message))
			return
		}
		slog.Error("create entry failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, okBody(entry))
}

// DeleteEntry handles DELETE /api/entries/{id}.
//
//	@Summary		Delete an entry
//	@Tags			entries
//	@Param			id	path		int	true	"Entry id"
//	@Success		200	{object}	okResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/{id} [delete]
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("Entry not found"))
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("Entry not found"))
		} else {
			slog.Error("delete entry failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, messageBody("Entry deleted"))
}

// Stats handles GET /api/stats.
//
//	@Summary		Summary statistics over all entries
//	@Tags			stats
//	@Produce		json
//	@Success		200	{object}	okResponse
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	summary, ok, err := h.svc.Stats(r.Context())
	if err != nil {
		slog.Error("stats failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, okResponse{Success: true, Message: "no data available"})
		return
	}
	writeJSON(w, http.StatusOK, okBody(summary))
}
