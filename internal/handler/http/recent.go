package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/addressbook/internal/service"
	"github.com/utafrali/addressbook/pkg/httputil"
	"github.com/utafrali/addressbook/pkg/middleware"
)

// RecentHandler handles the caller's recent-search history.
type RecentHandler struct {
	searches RecentSearches
	logger   *slog.Logger
}

// NewRecentHandler creates a new recent-search HTTP handler.
func NewRecentHandler(searches RecentSearches, logger *slog.Logger) *RecentHandler {
	return &RecentHandler{searches: searches, logger: logger}
}

// RecordRequest is the JSON body of POST /api/users/recent.
type RecordRequest struct {
	FullAddress string `json:"fullAddress"`
}

// Record handles POST /api/users/recent
func (h *RecentHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	list, err := h.searches.Record(r.Context(), middleware.UserIDFromContext(r.Context()),
		service.RecordSearchInput{FullAddress: req.FullAddress})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, list)
}

// List handles GET /api/users/recent
func (h *RecentHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.searches.List(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, list)
}

// Clear handles DELETE /api/users/recent
func (h *RecentHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.searches.Clear(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
