package ledger

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// countingServer wraps an httptest server with a request counter so tests can
// prove that client-side validation never reaches the network.
type countingServer struct {
	*httptest.Server
	requests atomic.Int64
}

func newCountingServer(t *testing.T, handler http.HandlerFunc) *countingServer {
	t.Helper()

	cs := &countingServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.requests.Add(1)
		handler(w, r)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"100", "100", false},
		{"0.01", "0.01", false},
		{"42.50", "42.5", false},
		{"0", "", true},
		{"-5", "", true},
		{"abc", "", true},
		{"", "", true},
		{"12.3.4", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q", tt.input)
				}
				if !IsValidation(err) {
					t.Errorf("Expected a validation error, got %T: %v", err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) failed: %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestCreateTransactionRejectsBadAmountsWithoutNetwork(t *testing.T) {
	server := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("No request should reach the server")
	})
	client := NewClient(ClientConfig{BaseURL: server.URL})

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err := client.CreateTransaction(NewTransaction{
			UserID: 1,
			Kind:   KindCashIn,
			Amount: amount,
		})
		if !IsValidation(err) {
			t.Errorf("Expected validation error for amount %s, got %v", amount, err)
		}
	}

	if n := server.requests.Load(); n != 0 {
		t.Errorf("Expected 0 requests, server saw %d", n)
	}
}

func TestCreateTransactionRoutesByKind(t *testing.T) {
	var gotPath string
	var gotBody Transaction
	server := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		gotBody.ID = 7
		json.NewEncoder(w).Encode(gotBody)
	})
	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "tok"})

	created, err := client.CreateTransaction(NewTransaction{
		UserID: 3,
		Kind:   KindCashIn,
		Amount: decimal.NewFromInt(100),
		Notes:  "salary",
	})
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if gotPath != "/api/transactions/deposit" {
		t.Errorf("Expected deposit endpoint, got %s", gotPath)
	}
	if created.ID != 7 {
		t.Errorf("Expected server-assigned ID 7, got %d", created.ID)
	}
	if !gotBody.CashIn.Equal(decimal.NewFromInt(100)) || !gotBody.CashOut.IsZero() {
		t.Errorf("Expected only cashIn set, got in=%s out=%s", gotBody.CashIn, gotBody.CashOut)
	}
	if gotBody.UserID() != 3 {
		t.Errorf("Expected user reference 3, got %d", gotBody.UserID())
	}

	_, err = client.CreateTransaction(NewTransaction{
		UserID: 3,
		Kind:   KindCashOut,
		Amount: decimal.NewFromInt(40),
	})
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if gotPath != "/api/transactions/withdraw" {
		t.Errorf("Expected withdraw endpoint, got %s", gotPath)
	}
	if !gotBody.CashOut.Equal(decimal.NewFromInt(40)) || !gotBody.CashIn.IsZero() {
		t.Errorf("Expected only cashOut set, got in=%s out=%s", gotBody.CashIn, gotBody.CashOut)
	}
}

func TestCreateTransactionRejectsMissingID(t *testing.T) {
	server := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"cashIn":5,"type":"CASHIN"}`)
	})
	client := NewClient(ClientConfig{BaseURL: server.URL})

	_, err := client.CreateTransaction(NewTransaction{
		UserID: 1,
		Kind:   KindCashIn,
		Amount: decimal.NewFromInt(5),
	})
	if err == nil {
		t.Fatal("Expected error for response without an id")
	}
}

func TestListTransactionsSortsNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	server := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		// Deliberately unsorted, with a date tie between 2 and 4.
		txns := []Transaction{
			{ID: 2, Type: KindCashIn, CashIn: decimal.NewFromInt(10), TransactionDate: base.Add(time.Hour)},
			{ID: 1, Type: KindCashIn, CashIn: decimal.NewFromInt(20), TransactionDate: base.Add(3 * time.Hour)},
			{ID: 4, Type: KindCashOut, CashOut: decimal.NewFromInt(5), TransactionDate: base.Add(time.Hour)},
			{ID: 3, Type: KindCashIn, CashIn: decimal.NewFromInt(30), TransactionDate: base},
		}
		json.NewEncoder(w).Encode(txns)
	})
	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "tok"})

	txns, err := client.ListTransactions(1)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}

	wantOrder := []int64{1, 4, 2, 3}
	if len(txns) != len(wantOrder) {
		t.Fatalf("Expected %d transactions, got %d", len(wantOrder), len(txns))
	}
	for i, want := range wantOrder {
		if txns[i].ID != want {
			t.Errorf("Position %d: expected ID %d, got %d", i, want, txns[i].ID)
		}
	}
}

func TestServerMessagePreservedVerbatim(t *testing.T) {
	server := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message":"Insufficient funds"}`)
	})
	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "tok"})

	_, err := client.CreateTransaction(NewTransaction{
		UserID: 1,
		Kind:   KindCashOut,
		Amount: decimal.NewFromInt(9999),
	})
	if err == nil {
		t.Fatal("Expected error")
	}

	le, ok := err.(*Error)
	if !ok {
		t.Fatalf("Expected *Error, got %T", err)
	}
	if le.Kind != KindServerRejected {
		t.Errorf("Expected kind %s, got %s", KindServerRejected, le.Kind)
	}
	if le.Message != "Insufficient funds" {
		t.Errorf("Expected server message carried verbatim, got %q", le.Message)
	}
}

func TestNotFoundClassification(t *testing.T) {
	server := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Transaction not found"}`)
	})
	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "tok"})

	err := client.DeleteTransaction(999)
	if !IsNotFound(err) {
		t.Errorf("Expected a not-found error, got %v", err)
	}
}

func TestNetworkErrorClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Closed on purpose: every request now fails at transport level.

	client := NewClient(ClientConfig{BaseURL: server.URL})
	_, err := client.GetUser(1)
	if !IsNetwork(err) {
		t.Errorf("Expected a network error, got %v", err)
	}
}

func TestLoginStoresToken(t *testing.T) {
	server := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":1,"username":"alice","balance":0,"token":"secret-token"}`)
	})
	client := NewClient(ClientConfig{BaseURL: server.URL})

	user, err := client.Login("alice", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != 1 || user.Username != "alice" {
		t.Errorf("Unexpected user: %+v", user)
	}
	if !user.Balance.IsZero() {
		t.Errorf("Expected zero balance, got %s", user.Balance)
	}
	if client.Token() != "secret-token" {
		t.Errorf("Expected token to be stored, got %q", client.Token())
	}
}

func TestAuthorizationHeaderSent(t *testing.T) {
	var gotAuth string
	server := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"id":1,"username":"alice","balance":60}`)
	})
	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "abc123"})

	if _, err := client.GetUser(1); err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if gotAuth != "Bearer abc123" {
		t.Errorf("Expected Bearer header, got %q", gotAuth)
	}
}

func TestAmountsDecodeAsDecimals(t *testing.T) {
	server := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":2,"username":"bob","balance":1234.56}`)
	})
	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "tok"})

	user, err := client.GetUser(2)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	want := decimal.RequireFromString("1234.56")
	if !user.Balance.Equal(want) {
		t.Errorf("Expected balance %s, got %s", want, user.Balance)
	}
}

func TestUpdateTransactionRejectsBadAmount(t *testing.T) {
	server := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("No request should reach the server")
	})
	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "tok"})

	_, err := client.UpdateTransaction(Transaction{
		ID:      1,
		Type:    KindCashIn,
		CashIn:  decimal.Zero,
		CashOut: decimal.Zero,
	})
	if !IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if n := server.requests.Load(); n != 0 {
		t.Errorf("Expected 0 requests, server saw %d", n)
	}
}
