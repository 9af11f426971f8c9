// Package session implements the navigation state machine gating ledger
// operations. The machine owns the only reference to the current user:
// components reach the user through it or not at all.
package session

import (
	"fmt"

	"github.com/cashbook-app/cashbook/pkg/ledger"
)

// State identifies a screen in the session loop.
type State string

const (
	StateRegistering      State = "registering"
	StateAuthenticating   State = "authenticating"
	StateAuthenticated    State = "authenticated"
	StateRecordingCashIn  State = "recording_cash_in"
	StateRecordingCashOut State = "recording_cash_out"
)

// Event is a navigation trigger.
type Event string

const (
	EventRegistered       Event = "registered"
	EventNavigateLogin    Event = "navigate_login"
	EventLoggedIn         Event = "logged_in"
	EventNavigateCashIn   Event = "navigate_cash_in"
	EventNavigateCashOut  Event = "navigate_cash_out"
	EventTransactionSaved Event = "transaction_saved"
	EventBack             Event = "back"
	EventLogout           Event = "logout"
)

// transitions is the full navigation table. Pairs absent from the table are
// invalid and leave the machine unchanged.
var transitions = map[State]map[Event]State{
	StateRegistering: {
		EventRegistered:    StateAuthenticating,
		EventNavigateLogin: StateAuthenticating,
	},
	StateAuthenticating: {
		EventLoggedIn: StateAuthenticated,
	},
	StateAuthenticated: {
		EventNavigateCashIn:  StateRecordingCashIn,
		EventNavigateCashOut: StateRecordingCashOut,
		EventLogout:          StateAuthenticating,
	},
	StateRecordingCashIn: {
		EventTransactionSaved: StateAuthenticated,
		EventBack:             StateAuthenticated,
	},
	StateRecordingCashOut: {
		EventTransactionSaved: StateAuthenticated,
		EventBack:             StateAuthenticated,
	},
}

// InvalidTransitionError reports an event that is not defined for the
// machine's current state.
type InvalidTransitionError struct {
	State State
	Event Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("event %s is not valid in state %s", e.Event, e.State)
}

// Machine is the session state machine. The zero value is not usable; use New.
type Machine struct {
	state State
	user  *ledger.User
}

// New creates a machine in the initial Registering state.
func New() *Machine {
	return &Machine{state: StateRegistering}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// CurrentUser returns the logged-in user. ok is false outside the
// authenticated states.
func (m *Machine) CurrentUser() (ledger.User, bool) {
	if m.user == nil {
		return ledger.User{}, false
	}
	return *m.user, true
}

// SetUser replaces the held user value, e.g. after a balance refresh.
// It is a no-op when nobody is logged in.
func (m *Machine) SetUser(user ledger.User) {
	if m.user != nil {
		m.user = &user
	}
}

// Apply applies a navigation event. EventLoggedIn attaches the user carried
// by Login; EventLogout is the only transition that discards it. An invalid
// (state, event) pair returns InvalidTransitionError and changes nothing.
func (m *Machine) Apply(event Event, user ...ledger.User) error {
	next, ok := transitions[m.state][event]
	if !ok {
		return &InvalidTransitionError{State: m.state, Event: event}
	}

	switch event {
	case EventLoggedIn:
		if len(user) == 0 {
			return fmt.Errorf("event %s requires a user", event)
		}
		u := user[0]
		m.user = &u
	case EventLogout:
		m.user = nil
	}

	m.state = next
	return nil
}
