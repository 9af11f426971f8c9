// Package auth manages opaque session tokens for the cashbook service
// emulator.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cashbook-app/cashbook/internal/server/store"
)

const (
	tokenLength = 32
	tokenTTL    = 24 * time.Hour
)

// tokenRecord is the stored token payload.
type tokenRecord struct {
	UserID    int64 `json:"user_id"`
	ExpiresAt int64 `json:"expires_at"`
}

// Manager issues and validates session tokens.
type Manager struct {
	store *store.Store
}

// NewManager creates a new token Manager.
func NewManager(s *store.Store) *Manager {
	return &Manager{store: s}
}

// Issue generates a new session token bound to a user and stores it.
func (m *Manager) Issue(userID int64) (string, error) {
	token, err := generateRandomToken(tokenLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	record := tokenRecord{
		UserID:    userID,
		ExpiresAt: time.Now().Add(tokenTTL).Unix(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to marshal token record: %w", err)
	}

	if err := m.store.PutString(token, string(data)); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	return token, nil
}

// Validate resolves a token to its user. valid is false for unknown or
// expired tokens.
func (m *Manager) Validate(token string) (userID int64, valid bool, err error) {
	data, err := m.store.GetString(token)
	if err != nil {
		if err == store.ErrNotFound {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get token: %w", err)
	}

	var record tokenRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return 0, false, fmt.Errorf("failed to parse token record: %w", err)
	}

	if time.Now().Unix() > record.ExpiresAt {
		// Delete expired token.
		_ = m.store.DeleteString(token)
		return 0, false, nil
	}

	return record.UserID, true, nil
}

// Revoke removes a session token.
func (m *Manager) Revoke(token string) error {
	return m.store.DeleteString(token)
}

// generateRandomToken generates a random token string.
func generateRandomToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
