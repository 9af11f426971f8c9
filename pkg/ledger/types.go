// Package ledger provides the cashbook transaction service client and types.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The transaction service speaks bare JSON numbers for amounts.
	decimal.MarshalJSONWithoutQuotes = true
}

// Kind represents the direction of a transaction.
type Kind string

const (
	KindCashIn  Kind = "CASHIN"
	KindCashOut Kind = "CASHOUT"
)

// Label returns a human-readable name for the kind.
func (k Kind) Label() string {
	if k == KindCashIn {
		return "Cash In"
	}
	return "Cash Out"
}

// User represents a registered user of the transaction service.
type User struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	Balance  decimal.Decimal `json:"balance"`
}

// UserRef is the minimal user reference embedded in transaction payloads.
type UserRef struct {
	ID int64 `json:"id"`
}

// Transaction represents a cash movement recorded on the service.
// Exactly one of CashIn/CashOut is non-zero; the ID is assigned by the
// server on create and is zero before the first successful write.
type Transaction struct {
	ID              int64           `json:"id"`
	User            *UserRef        `json:"user,omitempty"`
	CashIn          decimal.Decimal `json:"cashIn"`
	CashOut         decimal.Decimal `json:"cashOut"`
	Type            Kind            `json:"type"`
	Notes           string          `json:"notes"`
	TransactionDate time.Time       `json:"transactionDate"`
}

// Amount returns the non-zero side of the transaction.
func (t Transaction) Amount() decimal.Decimal {
	if t.Type == KindCashIn {
		return t.CashIn
	}
	return t.CashOut
}

// UserID returns the owning user's ID, or zero if absent.
func (t Transaction) UserID() int64 {
	if t.User == nil {
		return 0
	}
	return t.User.ID
}

// NewTransaction is the client-side input for creating a transaction.
type NewTransaction struct {
	UserID int64
	Kind   Kind
	Amount decimal.Decimal
	Notes  string
}

// Credentials carries a username/password pair for register and login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the login payload: the user plus an opaque session token.
type loginResponse struct {
	User
	Token string `json:"token"`
}

// serviceError is the error body returned by the service on failure.
type serviceError struct {
	Message string `json:"message"`
}
