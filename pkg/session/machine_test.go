package session

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cashbook-app/cashbook/pkg/ledger"
)

func testUser() ledger.User {
	return ledger.User{ID: 1, Username: "alice", Balance: decimal.NewFromInt(100)}
}

func TestInitialState(t *testing.T) {
	m := New()

	if m.State() != StateRegistering {
		t.Errorf("Expected initial state %s, got %s", StateRegistering, m.State())
	}
	if _, ok := m.CurrentUser(); ok {
		t.Error("Expected no user before login")
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		from  State
		event Event
		want  State
	}{
		{"register completes", StateRegistering, EventRegistered, StateAuthenticating},
		{"skip to login", StateRegistering, EventNavigateLogin, StateAuthenticating},
		{"login succeeds", StateAuthenticating, EventLoggedIn, StateAuthenticated},
		{"open cash in", StateAuthenticated, EventNavigateCashIn, StateRecordingCashIn},
		{"open cash out", StateAuthenticated, EventNavigateCashOut, StateRecordingCashOut},
		{"logout", StateAuthenticated, EventLogout, StateAuthenticating},
		{"cash in saved", StateRecordingCashIn, EventTransactionSaved, StateAuthenticated},
		{"cash in back", StateRecordingCashIn, EventBack, StateAuthenticated},
		{"cash out saved", StateRecordingCashOut, EventTransactionSaved, StateAuthenticated},
		{"cash out back", StateRecordingCashOut, EventBack, StateAuthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Machine{state: tt.from}
			if err := m.Apply(tt.event, testUser()); err != nil {
				t.Fatalf("Apply(%s) failed: %v", tt.event, err)
			}
			if m.State() != tt.want {
				t.Errorf("Expected state %s, got %s", tt.want, m.State())
			}
		})
	}
}

func TestInvalidTransitionsLeaveStateUnchanged(t *testing.T) {
	tests := []struct {
		name  string
		from  State
		event Event
	}{
		{"login before registering done", StateRegistering, EventLoggedIn},
		{"logout while registering", StateRegistering, EventLogout},
		{"save while registering", StateRegistering, EventTransactionSaved},
		{"register twice", StateAuthenticating, EventRegistered},
		{"navigate before login", StateAuthenticating, EventNavigateCashIn},
		{"logout before login", StateAuthenticating, EventLogout},
		{"login again on dashboard", StateAuthenticated, EventLoggedIn},
		{"save without a record screen", StateAuthenticated, EventTransactionSaved},
		{"back on dashboard", StateAuthenticated, EventBack},
		{"logout mid-record", StateRecordingCashIn, EventLogout},
		{"navigate mid-record", StateRecordingCashIn, EventNavigateCashOut},
		{"login mid-record", StateRecordingCashOut, EventLoggedIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Machine{state: tt.from}
			err := m.Apply(tt.event, testUser())
			if err == nil {
				t.Fatalf("Expected error for %s in %s", tt.event, tt.from)
			}

			var invalid *InvalidTransitionError
			if !errors.As(err, &invalid) {
				t.Fatalf("Expected InvalidTransitionError, got %T: %v", err, err)
			}
			if invalid.State != tt.from || invalid.Event != tt.event {
				t.Errorf("Error carries wrong pair: %v", invalid)
			}
			if m.State() != tt.from {
				t.Errorf("Invalid event must not change state, got %s", m.State())
			}
		})
	}
}

func TestLoginAttachesUser(t *testing.T) {
	m := New()
	mustApply(t, m, EventRegistered)
	mustApply(t, m, EventLoggedIn, testUser())

	user, ok := m.CurrentUser()
	if !ok {
		t.Fatal("Expected a current user after login")
	}
	if user.ID != 1 || user.Username != "alice" {
		t.Errorf("Unexpected user: %+v", user)
	}
}

func TestLoginWithoutUserFails(t *testing.T) {
	m := New()
	mustApply(t, m, EventRegistered)

	if err := m.Apply(EventLoggedIn); err == nil {
		t.Fatal("Expected error when logging in without a user")
	}
	if m.State() != StateAuthenticating {
		t.Errorf("Failed login event must not change state, got %s", m.State())
	}
}

func TestUserSurvivesRecordingRoundTrip(t *testing.T) {
	m := New()
	mustApply(t, m, EventRegistered)
	mustApply(t, m, EventLoggedIn, testUser())
	mustApply(t, m, EventNavigateCashIn)
	mustApply(t, m, EventTransactionSaved)

	if _, ok := m.CurrentUser(); !ok {
		t.Error("Expected user to survive the recording round trip")
	}
}

func TestLogoutDiscardsUser(t *testing.T) {
	m := New()
	mustApply(t, m, EventRegistered)
	mustApply(t, m, EventLoggedIn, testUser())
	mustApply(t, m, EventLogout)

	if _, ok := m.CurrentUser(); ok {
		t.Error("Expected user to be discarded on logout")
	}
	if m.State() != StateAuthenticating {
		t.Errorf("Expected state %s after logout, got %s", StateAuthenticating, m.State())
	}
}

func TestSetUserUpdatesBalance(t *testing.T) {
	m := New()
	mustApply(t, m, EventRegistered)
	mustApply(t, m, EventLoggedIn, testUser())

	updated := testUser()
	updated.Balance = decimal.NewFromInt(250)
	m.SetUser(updated)

	user, ok := m.CurrentUser()
	if !ok {
		t.Fatal("Expected a current user")
	}
	if !user.Balance.Equal(decimal.NewFromInt(250)) {
		t.Errorf("Expected balance 250, got %s", user.Balance)
	}
}

func TestSetUserIsNoOpWhenLoggedOut(t *testing.T) {
	m := New()
	m.SetUser(testUser())

	if _, ok := m.CurrentUser(); ok {
		t.Error("SetUser must not attach a user while logged out")
	}
}

func mustApply(t *testing.T, m *Machine, event Event, user ...ledger.User) {
	t.Helper()

	if err := m.Apply(event, user...); err != nil {
		t.Fatalf("Apply(%s) failed: %v", event, err)
	}
}
