package server

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cashbook-app/cashbook/internal/server/store"
	"github.com/cashbook-app/cashbook/pkg/ledger"
)

// SeedUser is one fixture account, optionally with pre-existing transactions.
type SeedUser struct {
	Username     string            `yaml:"username"`
	Password     string            `yaml:"password"`
	Transactions []SeedTransaction `yaml:"transactions"`
}

// SeedTransaction is one fixture cash movement.
type SeedTransaction struct {
	Kind   string `yaml:"kind"` // "in" or "out"
	Amount string `yaml:"amount"`
	Notes  string `yaml:"notes"`
	Date   string `yaml:"date"` // RFC 3339, optional
}

// SeedFile is the emulator fixture file format.
type SeedFile struct {
	Users []SeedUser `yaml:"users"`
}

// Seed loads a YAML fixture file into the store. Accounts start at zero
// balance; seeded transactions move it the same way live requests would.
func Seed(st *store.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed YAML: %w", err)
	}

	for _, su := range seed.Users {
		account, err := st.CreateAccount(su.Username, su.Password, decimal.Zero)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", su.Username, err)
		}

		for _, stx := range su.Transactions {
			amount, err := decimal.NewFromString(stx.Amount)
			if err != nil {
				return fmt.Errorf("invalid seed amount %q for %s: %w", stx.Amount, su.Username, err)
			}

			date := time.Now().UTC()
			if stx.Date != "" {
				if date, err = time.Parse(time.RFC3339, stx.Date); err != nil {
					return fmt.Errorf("invalid seed date %q for %s: %w", stx.Date, su.Username, err)
				}
			}

			txn := ledger.Transaction{
				User:            &ledger.UserRef{ID: account.ID},
				Notes:           stx.Notes,
				TransactionDate: date,
			}

			switch stx.Kind {
			case "in":
				txn.Type = ledger.KindCashIn
				txn.CashIn = amount
				account.Balance = account.Balance.Add(amount)
			case "out":
				txn.Type = ledger.KindCashOut
				txn.CashOut = amount
				account.Balance = account.Balance.Sub(amount)
			default:
				return fmt.Errorf("invalid seed kind %q for %s", stx.Kind, su.Username)
			}

			if _, err := st.CreateTransaction(txn); err != nil {
				return fmt.Errorf("failed to seed transaction for %s: %w", su.Username, err)
			}
		}

		if err := st.SaveAccount(account); err != nil {
			return fmt.Errorf("failed to save seeded balance for %s: %w", su.Username, err)
		}
	}

	return nil
}
