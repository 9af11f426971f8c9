// Package store provides the bbolt persistence layer for the cashbook
// service emulator.
package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	bolt "go.etcd.io/bbolt"

	"github.com/cashbook-app/cashbook/pkg/ledger"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateUsername is returned when registering an existing username.
	ErrDuplicateUsername = errors.New("username already exists")
)

// Bucket names.
const (
	bucketAccounts     = "accounts"
	bucketUsernames    = "usernames"
	bucketTransactions = "transactions"
	bucketTokens       = "tokens"
)

// Account is a stored user record, credentials included.
type Account struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	Password string          `json:"password"`
	Balance  decimal.Decimal `json:"balance"`
}

// Store represents the bbolt database wrapper.
type Store struct {
	db *bolt.DB
}

// New creates a new Store instance and initializes buckets.
func New(dbPath string) (*Store, error) {
	db, err := bolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		buckets := []string{bucketAccounts, bucketUsernames, bucketTransactions, bucketTokens}
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateAccount stores a new account, assigning its ID. Usernames are
// unique; a duplicate returns ErrDuplicateUsername.
func (s *Store) CreateAccount(username, password string, balance decimal.Decimal) (Account, error) {
	var account Account
	err := s.db.Update(func(tx *bolt.Tx) error {
		names := tx.Bucket([]byte(bucketUsernames))
		if names.Get([]byte(username)) != nil {
			return ErrDuplicateUsername
		}

		accounts := tx.Bucket([]byte(bucketAccounts))
		seq, err := accounts.NextSequence()
		if err != nil {
			return err
		}

		account = Account{
			ID:       int64(seq),
			Username: username,
			Password: password,
			Balance:  balance,
		}

		data, err := json.Marshal(account)
		if err != nil {
			return fmt.Errorf("failed to marshal account: %w", err)
		}

		if err := accounts.Put(itob(account.ID), data); err != nil {
			return err
		}
		return names.Put([]byte(username), itob(account.ID))
	})
	return account, err
}

// GetAccount retrieves an account by ID.
func (s *Store) GetAccount(id int64) (Account, error) {
	var account Account
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketAccounts)).Get(itob(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &account)
	})
	return account, err
}

// GetAccountByUsername retrieves an account by username.
func (s *Store) GetAccountByUsername(username string) (Account, error) {
	var account Account
	err := s.db.View(func(tx *bolt.Tx) error {
		idBytes := tx.Bucket([]byte(bucketUsernames)).Get([]byte(username))
		if idBytes == nil {
			return ErrNotFound
		}
		data := tx.Bucket([]byte(bucketAccounts)).Get(idBytes)
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &account)
	})
	return account, err
}

// SaveAccount overwrites an existing account record.
func (s *Store) SaveAccount(account Account) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(account)
		if err != nil {
			return fmt.Errorf("failed to marshal account: %w", err)
		}
		return tx.Bucket([]byte(bucketAccounts)).Put(itob(account.ID), data)
	})
}

// CreateTransaction stores a new transaction, assigning its ID.
func (s *Store) CreateTransaction(txn ledger.Transaction) (ledger.Transaction, error) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketTransactions))
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		txn.ID = int64(seq)

		data, err := json.Marshal(txn)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction: %w", err)
		}
		return bucket.Put(itob(txn.ID), data)
	})
	return txn, err
}

// GetTransaction retrieves a transaction by ID.
func (s *Store) GetTransaction(id int64) (ledger.Transaction, error) {
	var txn ledger.Transaction
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketTransactions)).Get(itob(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &txn)
	})
	return txn, err
}

// SaveTransaction overwrites an existing transaction record.
func (s *Store) SaveTransaction(txn ledger.Transaction) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(txn)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction: %w", err)
		}
		return tx.Bucket([]byte(bucketTransactions)).Put(itob(txn.ID), data)
	})
}

// DeleteTransaction removes a transaction record.
func (s *Store) DeleteTransaction(id int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketTransactions))
		if bucket.Get(itob(id)) == nil {
			return ErrNotFound
		}
		return bucket.Delete(itob(id))
	})
}

// ListTransactionsByUser retrieves all transactions owned by a user, in
// storage order. Ordering is the client's problem.
func (s *Store) ListTransactionsByUser(userID int64) ([]ledger.Transaction, error) {
	txns := []ledger.Transaction{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketTransactions)).ForEach(func(k, v []byte) error {
			var txn ledger.Transaction
			if err := json.Unmarshal(v, &txn); err != nil {
				return err
			}
			if txn.UserID() == userID {
				txns = append(txns, txn)
			}
			return nil
		})
	})
	return txns, err
}

// PutString stores a string value with a string key in the tokens bucket.
func (s *Store) PutString(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketTokens)).Put([]byte(key), []byte(value))
	})
}

// GetString retrieves a string value with a string key from the tokens bucket.
func (s *Store) GetString(key string) (string, error) {
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketTokens)).Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}
		value = string(data)
		return nil
	})
	return value, err
}

// DeleteString removes a value with a string key from the tokens bucket.
func (s *Store) DeleteString(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketTokens)).Delete([]byte(key))
	})
}

// itob converts an int64 to a byte slice for use as a bbolt key.
func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}
