package cache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cashbook-app/cashbook/pkg/ledger"
)

// Snapshot is the cached dashboard view for one user: the last balance and
// transaction list the server reported. It is never computed locally.
type Snapshot struct {
	UserID       int64
	Balance      decimal.Decimal
	Transactions []ledger.Transaction
	RefreshedAt  time.Time
}

// Store manages snapshot persistence.
type Store struct {
	conn *Connection
}

// NewStore creates a new snapshot Store.
func NewStore(conn *Connection) *Store {
	return &Store{conn: conn}
}

// Save replaces the cached snapshot for a user. The transaction list is
// replaced wholesale so the cache always mirrors one server response.
func (s *Store) Save(userID int64, balance decimal.Decimal, txns []ledger.Transaction) error {
	err := s.conn.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO cached_balances (user_id, balance, refreshed_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(user_id) DO UPDATE SET
				balance = excluded.balance,
				refreshed_at = CURRENT_TIMESTAMP
		`, userID, balance.String()); err != nil {
			return err
		}

		if _, err := tx.Exec(`DELETE FROM cached_transactions WHERE user_id = ?`, userID); err != nil {
			return err
		}

		for _, t := range txns {
			if _, err := tx.Exec(`
				INSERT INTO cached_transactions (id, user_id, cash_in, cash_out, type, notes, transaction_date)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, t.ID, userID, t.CashIn.String(), t.CashOut.String(), string(t.Type), t.Notes,
				t.TransactionDate.Format(time.RFC3339)); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load retrieves the cached snapshot for a user. Returns ok=false when no
// snapshot has been saved yet.
func (s *Store) Load(userID int64) (*Snapshot, bool, error) {
	var balanceStr string
	var refreshedAt time.Time

	err := s.conn.QueryRow(`
		SELECT balance, refreshed_at FROM cached_balances WHERE user_id = ?
	`, userID).Scan(&balanceStr, &refreshedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load snapshot: %w", err)
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, false, fmt.Errorf("corrupt cached balance %q: %w", balanceStr, err)
	}

	rows, err := s.conn.Query(`
		SELECT id, cash_in, cash_out, type, notes, transaction_date
		FROM cached_transactions
		WHERE user_id = ?
		ORDER BY transaction_date DESC, id DESC
	`, userID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load cached transactions: %w", err)
	}
	defer rows.Close()

	snapshot := &Snapshot{
		UserID:      userID,
		Balance:     balance,
		RefreshedAt: refreshedAt,
	}

	for rows.Next() {
		var (
			t               ledger.Transaction
			cashIn, cashOut string
			txType, txDate  string
		)
		if err := rows.Scan(&t.ID, &cashIn, &cashOut, &txType, &t.Notes, &txDate); err != nil {
			return nil, false, fmt.Errorf("failed to scan cached transaction: %w", err)
		}

		if t.CashIn, err = decimal.NewFromString(cashIn); err != nil {
			return nil, false, fmt.Errorf("corrupt cached amount %q: %w", cashIn, err)
		}
		if t.CashOut, err = decimal.NewFromString(cashOut); err != nil {
			return nil, false, fmt.Errorf("corrupt cached amount %q: %w", cashOut, err)
		}
		if t.TransactionDate, err = time.Parse(time.RFC3339, txDate); err != nil {
			return nil, false, fmt.Errorf("corrupt cached date %q: %w", txDate, err)
		}
		t.Type = ledger.Kind(txType)
		t.User = &ledger.UserRef{ID: userID}

		snapshot.Transactions = append(snapshot.Transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read cached transactions: %w", err)
	}

	return snapshot, true, nil
}

// Stats represents cache statistics.
type Stats struct {
	Users        int
	Transactions int
	LastRefresh  sql.NullString
}

// GetStats retrieves cache statistics.
func (s *Store) GetStats() (*Stats, error) {
	var stats Stats

	if err := s.conn.QueryRow(`SELECT COUNT(*) FROM cached_balances`).Scan(&stats.Users); err != nil {
		return nil, fmt.Errorf("failed to get user count: %w", err)
	}

	if err := s.conn.QueryRow(`SELECT COUNT(*) FROM cached_transactions`).Scan(&stats.Transactions); err != nil {
		return nil, fmt.Errorf("failed to get transaction count: %w", err)
	}

	err := s.conn.QueryRow(`SELECT MAX(refreshed_at) FROM cached_balances`).Scan(&stats.LastRefresh)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get last refresh time: %w", err)
	}

	return &stats, nil
}
