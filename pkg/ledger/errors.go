package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrorKind classifies failures of remote ledger operations.
type ErrorKind string

const (
	// KindNetwork covers transport failures and timeouts; the request may
	// or may not have reached the service.
	KindNetwork ErrorKind = "network"
	// KindServerRejected covers 4xx/5xx responses other than 404. The
	// server-supplied message is carried verbatim when present.
	KindServerRejected ErrorKind = "server_rejected"
	// KindNotFound covers 404 responses.
	KindNotFound ErrorKind = "not_found"
)

// Error is a remote ledger failure with a classified kind.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ledger: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("ledger: %s", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a ledger error with kind not_found.
func IsNotFound(err error) bool {
	var le *Error
	return errors.As(err, &le) && le.Kind == KindNotFound
}

// IsNetwork reports whether err is a ledger error with kind network.
func IsNetwork(err error) bool {
	var le *Error
	return errors.As(err, &le) && le.Kind == KindNetwork
}

// ValidationError is a client-detected input failure. No I/O has been
// attempted when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ParseAmount parses a user-supplied amount string. Unparsable or
// non-positive values are rejected with a ValidationError.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: fmt.Sprintf("not a number: %q", s)}
	}
	if err := validateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// validateAmount enforces the positive-amount rule shared by create and edit.
func validateAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	return nil
}
