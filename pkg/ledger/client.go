package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// ClientConfig represents the configuration for the transaction service client.
type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration // Default: 30 seconds
}

// Client is a transaction service API client.
//
// All calls are bounded by the underlying http.Client timeout; a timed-out
// call surfaces as a network-kind error, never an indefinite hang.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a new transaction service client.
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: config.BaseURL,
		token:   config.Token,
	}
}

// SetToken sets the session token used for authenticated requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current session token, empty before login.
func (c *Client) Token() string {
	return c.token
}

// Register creates a new user account.
func (c *Client) Register(username, password string) (User, error) {
	var user User
	err := c.do("POST", "/api/users/register", Credentials{Username: username, Password: password}, &user)
	return user, err
}

// Login authenticates and stores the returned session token on the client.
func (c *Client) Login(username, password string) (User, error) {
	var resp loginResponse
	if err := c.do("POST", "/api/users/login", Credentials{Username: username, Password: password}, &resp); err != nil {
		return User{}, err
	}
	c.token = resp.Token
	return resp.User, nil
}

// GetUser fetches a user, including the authoritative balance.
func (c *Client) GetUser(id int64) (User, error) {
	var user User
	err := c.do("GET", fmt.Sprintf("/api/users/%d", id), nil, &user)
	return user, err
}

// ListTransactions fetches all transactions for a user, sorted newest first.
// The service's own ordering is not trusted; sorting is normalized here.
func (c *Client) ListTransactions(userID int64) ([]Transaction, error) {
	var txns []Transaction
	if err := c.do("GET", fmt.Sprintf("/api/transactions/user/%d", userID), nil, &txns); err != nil {
		return nil, err
	}

	sort.Slice(txns, func(i, j int) bool {
		if txns[i].TransactionDate.Equal(txns[j].TransactionDate) {
			return txns[i].ID > txns[j].ID
		}
		return txns[i].TransactionDate.After(txns[j].TransactionDate)
	})

	return txns, nil
}

// CreateTransaction records a new cash movement. The amount is validated
// before any network round-trip; the returned transaction carries the
// server-assigned ID.
func (c *Client) CreateTransaction(nt NewTransaction) (Transaction, error) {
	if err := validateAmount(nt.Amount); err != nil {
		return Transaction{}, err
	}

	body := Transaction{
		User:  &UserRef{ID: nt.UserID},
		Notes: nt.Notes,
		Type:  nt.Kind,
	}

	endpoint := "/api/transactions/deposit"
	if nt.Kind == KindCashOut {
		endpoint = "/api/transactions/withdraw"
		body.CashOut = nt.Amount
	} else {
		body.CashIn = nt.Amount
	}

	var created Transaction
	if err := c.do("POST", endpoint, body, &created); err != nil {
		return Transaction{}, err
	}
	if created.ID == 0 {
		return Transaction{}, &Error{Kind: KindServerRejected, Message: "created transaction has no id"}
	}
	return created, nil
}

// UpdateTransaction replaces an existing transaction's amount and notes.
func (c *Client) UpdateTransaction(tx Transaction) (Transaction, error) {
	if err := validateAmount(tx.Amount()); err != nil {
		return Transaction{}, err
	}

	var updated Transaction
	err := c.do("PUT", fmt.Sprintf("/api/transactions/%d", tx.ID), tx, &updated)
	return updated, err
}

// DeleteTransaction removes a transaction from the ledger.
func (c *Client) DeleteTransaction(id int64) error {
	return c.do("DELETE", fmt.Sprintf("/api/transactions/%d", id), nil, nil)
}

// do performs one API round-trip, decoding into out when non-nil.
func (c *Client) do(method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.parseError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindServerRejected, Message: "malformed response body", Err: err}
	}
	return nil
}

// parseError maps a non-2xx response to a classified ledger error,
// preserving the server-supplied message when one is present.
func (c *Client) parseError(resp *http.Response) error {
	kind := KindServerRejected
	if resp.StatusCode == http.StatusNotFound {
		kind = KindNotFound
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: kind, Message: fmt.Sprintf("status %d", resp.StatusCode)}
	}

	var se serviceError
	if err := json.Unmarshal(body, &se); err == nil && se.Message != "" {
		return &Error{Kind: kind, Message: se.Message}
	}
	if len(body) > 0 {
		return &Error{Kind: kind, Message: fmt.Sprintf("status %d: %s", resp.StatusCode, string(body))}
	}
	return &Error{Kind: kind, Message: fmt.Sprintf("status %d", resp.StatusCode)}
}
