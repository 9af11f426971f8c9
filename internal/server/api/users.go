// Package api implements the HTTP handlers of the cashbook service emulator.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cashbook-app/cashbook/internal/server/auth"
	"github.com/cashbook-app/cashbook/internal/server/store"
	"github.com/cashbook-app/cashbook/pkg/ledger"
)

// UsersHandler handles user-related API endpoints.
type UsersHandler struct {
	store  *store.Store
	tokens *auth.Manager
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(s *store.Store, tokens *auth.Manager) *UsersHandler {
	return &UsersHandler{store: s, tokens: tokens}
}

// registerResponse is the body returned on successful registration.
type registerResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// loginResponse is the body returned on successful login.
type loginResponse struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	Balance  decimal.Decimal `json:"balance"`
	Token    string          `json:"token"`
}

// Register handles POST /api/users/register.
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var creds ledger.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse request body")
		return
	}

	if strings.TrimSpace(creds.Username) == "" {
		writeError(w, http.StatusBadRequest, "Username is required")
		return
	}
	if strings.TrimSpace(creds.Password) == "" {
		writeError(w, http.StatusBadRequest, "Password is required")
		return
	}

	account, err := h.store.CreateAccount(creds.Username, creds.Password, decimal.Zero)
	if err != nil {
		if err == store.ErrDuplicateUsername {
			writeError(w, http.StatusBadRequest, "Username already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	writeJSON(w, http.StatusOK, registerResponse{ID: account.ID, Username: account.Username})
}

// Login handles POST /api/users/login.
func (h *UsersHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds ledger.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse request body")
		return
	}

	account, err := h.store.GetAccountByUsername(creds.Username)
	if err != nil || account.Password != creds.Password {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.tokens.Issue(account.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		ID:       account.ID,
		Username: account.Username,
		Balance:  account.Balance,
		Token:    token,
	})
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	account, err := h.store.GetAccount(id)
	if err != nil {
		if err == store.ErrNotFound {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}

	writeJSON(w, http.StatusOK, ledger.User{
		ID:       account.ID,
		Username: account.Username,
		Balance:  account.Balance,
	})
}
