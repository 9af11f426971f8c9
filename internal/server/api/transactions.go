package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cashbook-app/cashbook/internal/server/store"
	"github.com/cashbook-app/cashbook/pkg/ledger"
)

// TransactionsHandler handles transaction-related API endpoints.
//
// The balance is authoritative here: every mutation adjusts the owning
// account so that clients can always re-derive it with a user query instead
// of accumulating deltas themselves.
type TransactionsHandler struct {
	store *store.Store
}

// NewTransactionsHandler creates a new TransactionsHandler.
func NewTransactionsHandler(s *store.Store) *TransactionsHandler {
	return &TransactionsHandler{store: s}
}

// ListForUser handles GET /api/transactions/user/{id}.
func (h *TransactionsHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	txns, err := h.store.ListTransactionsByUser(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	writeJSON(w, http.StatusOK, txns)
}

// Deposit handles POST /api/transactions/deposit.
func (h *TransactionsHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, ledger.KindCashIn)
}

// Withdraw handles POST /api/transactions/withdraw.
func (h *TransactionsHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, ledger.KindCashOut)
}

func (h *TransactionsHandler) create(w http.ResponseWriter, r *http.Request, kind ledger.Kind) {
	var req ledger.Transaction
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse request body")
		return
	}

	if req.User == nil || req.User.ID == 0 {
		writeError(w, http.StatusBadRequest, "User or User ID must not be null")
		return
	}

	account, err := h.store.GetAccount(req.User.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "User not found")
		return
	}

	amount := req.CashIn
	if kind == ledger.KindCashOut {
		amount = req.CashOut
	}
	if amount.Sign() <= 0 {
		writeError(w, http.StatusBadRequest, "Amount must be greater than zero")
		return
	}

	txn := ledger.Transaction{
		User:            &ledger.UserRef{ID: account.ID},
		Type:            kind,
		Notes:           req.Notes,
		TransactionDate: time.Now().UTC(),
	}

	if kind == ledger.KindCashIn {
		txn.CashIn = amount
		account.Balance = account.Balance.Add(amount)
	} else {
		if account.Balance.LessThan(amount) {
			writeError(w, http.StatusBadRequest, "Insufficient funds")
			return
		}
		txn.CashOut = amount
		account.Balance = account.Balance.Sub(amount)
	}

	if err := h.store.SaveAccount(account); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update balance")
		return
	}

	created, err := h.store.CreateTransaction(txn)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save transaction")
		return
	}

	writeJSON(w, http.StatusOK, created)
}

// Update handles PUT /api/transactions/{id}. The record's kind never flips:
// the amount of the existing side is replaced and the balance adjusted by
// the difference.
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	var req ledger.Transaction
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse request body")
		return
	}

	existing, err := h.store.GetTransaction(id)
	if err != nil {
		if err == store.ErrNotFound {
			writeError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get transaction")
		return
	}

	account, err := h.store.GetAccount(existing.UserID())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}

	oldAmount := existing.Amount()
	newAmount := req.CashIn
	if existing.Type == ledger.KindCashOut {
		newAmount = req.CashOut
	}
	if newAmount.Sign() <= 0 {
		writeError(w, http.StatusBadRequest, "Amount must be greater than zero")
		return
	}

	if existing.Type == ledger.KindCashIn {
		existing.CashIn = newAmount
		account.Balance = account.Balance.Sub(oldAmount).Add(newAmount)
	} else {
		existing.CashOut = newAmount
		account.Balance = account.Balance.Add(oldAmount).Sub(newAmount)
	}
	existing.Notes = req.Notes

	if err := h.store.SaveAccount(account); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update balance")
		return
	}
	if err := h.store.SaveTransaction(existing); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update transaction")
		return
	}

	writeJSON(w, http.StatusOK, existing)
}

// Delete handles DELETE /api/transactions/{id}, reversing the record's
// effect on the owning account's balance.
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	existing, err := h.store.GetTransaction(id)
	if err != nil {
		if err == store.ErrNotFound {
			writeError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get transaction")
		return
	}

	account, err := h.store.GetAccount(existing.UserID())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}

	if existing.Type == ledger.KindCashIn {
		account.Balance = account.Balance.Sub(existing.CashIn)
	} else {
		account.Balance = account.Balance.Add(existing.CashOut)
	}

	if err := h.store.SaveAccount(account); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update balance")
		return
	}
	if err := h.store.DeleteTransaction(id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted successfully"})
}
