package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/addressbook/internal/service"
	"github.com/utafrali/addressbook/pkg/httputil"
)

// AuthHandler handles sign-up and sign-in.
type AuthHandler struct {
	auth   Authenticator
	logger *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(auth Authenticator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// CredentialsRequest is the JSON body of sign-up and sign-in.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (req CredentialsRequest) input() service.CredentialsInput {
	return service.CredentialsInput{Username: req.Username, Password: req.Password}
}

// SignUp handles POST /api/users/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	identity, err := h.auth.SignUp(r.Context(), req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, identity)
}

// SignIn handles POST /api/users/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	session, err := h.auth.Authenticate(r.Context(), req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, session)
}
