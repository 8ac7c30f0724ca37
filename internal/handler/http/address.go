package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/addressbook/internal/domain"
	"github.com/utafrali/addressbook/internal/service"
	"github.com/utafrali/addressbook/pkg/httputil"
	"github.com/utafrali/addressbook/pkg/middleware"
)

// AddressHandler handles the caller's address book.
type AddressHandler struct {
	book   AddressBook
	logger *slog.Logger
}

// NewAddressHandler creates a new address HTTP handler.
func NewAddressHandler(book AddressBook, logger *slog.Logger) *AddressHandler {
	return &AddressHandler{book: book, logger: logger}
}

// AddAddressRequest is the JSON body of POST /api/users/address.
type AddAddressRequest struct {
	House       string `json:"house"`
	Apartment   string `json:"apartment"`
	Category    string `json:"category"`
	FullAddress string `json:"fullAddress"`
}

// Add handles POST /api/users/address and responds with the whole book.
func (h *AddressHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddAddressRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	list, err := h.book.AddAddress(r.Context(), middleware.UserIDFromContext(r.Context()), service.AddAddressInput{
		House:       req.House,
		Apartment:   req.Apartment,
		Category:    req.Category,
		FullAddress: req.FullAddress,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, list)
}

// List handles GET /api/users/addresses
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.book.ListAddresses(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, list)
}

// Categories handles GET /api/users/categories. The labels are suggestions;
// any non-empty category is accepted on save.
func (h *AddressHandler) Categories(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, domain.Categories())
}
