package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/cashbook-app/cashbook/pkg/capture"
	"github.com/cashbook-app/cashbook/pkg/coordinator"
	"github.com/cashbook-app/cashbook/pkg/ledger"
	"github.com/cashbook-app/cashbook/pkg/session"
)

// sessionCmd represents the session command.
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Run the interactive cashbook session",
	Long: `Run the long-running interactive session: register or log in, then
record cash movements and browse the dashboard until you quit.

Which operations are reachable is governed by the session state machine;
ledger operations are only available once logged in.

Example:
  cashbook session`,
	Run: runSession,
}

func runSession(cmd *cobra.Command, args []string) {
	app := setupApp()
	defer app.close()

	loop := &sessionLoop{
		app:     app,
		machine: session.New(),
		camera:  capture.New(app.paths.GetPhotosDir()),
		scanner: bufio.NewScanner(os.Stdin),
	}
	loop.run()
}

// sessionLoop drives the state machine from stdin. One screen per state.
type sessionLoop struct {
	app     *appContext
	machine *session.Machine
	camera  *capture.Camera
	scanner *bufio.Scanner
}

func (l *sessionLoop) run() {
	for {
		var done bool
		switch l.machine.State() {
		case session.StateRegistering:
			done = l.registerScreen()
		case session.StateAuthenticating:
			done = l.loginScreen()
		case session.StateAuthenticated:
			done = l.dashboardScreen()
		case session.StateRecordingCashIn:
			done = l.recordScreen(ledger.KindCashIn)
		case session.StateRecordingCashOut:
			done = l.recordScreen(ledger.KindCashOut)
		}
		if done {
			fmt.Println("Bye.")
			return
		}
	}
}

// prompt reads one input line. ok is false when stdin is closed.
func (l *sessionLoop) prompt(label string) (value string, ok bool) {
	fmt.Print(label)
	if !l.scanner.Scan() {
		return "", false
	}
	return l.scanner.Text(), true
}

func (l *sessionLoop) apply(event session.Event, user ...ledger.User) {
	// Screens only emit events their state defines, so this cannot fail.
	if err := l.machine.Apply(event, user...); err != nil {
		panic(err)
	}
}

func (l *sessionLoop) registerScreen() bool {
	fmt.Println("\n=== Register ===")
	fmt.Println("(leave username empty to log in with an existing account)")

	username, ok := l.prompt("Username: ")
	if !ok {
		return true
	}
	if username == "" {
		l.apply(session.EventNavigateLogin)
		return false
	}

	password, ok := l.prompt("Password: ")
	if !ok {
		return true
	}

	if _, err := l.app.client.Register(username, password); err != nil {
		fmt.Printf("Registration failed: %v\n", err)
		return false
	}

	fmt.Println("Registered successfully.")
	l.apply(session.EventRegistered)
	return false
}

func (l *sessionLoop) loginScreen() bool {
	fmt.Println("\n=== Login ===")

	username, ok := l.prompt("Username: ")
	if !ok {
		return true
	}
	password, ok := l.prompt("Password: ")
	if !ok {
		return true
	}

	user, err := l.app.client.Login(username, password)
	if err != nil {
		fmt.Printf("Login failed: %v\n", err)
		return false
	}

	l.apply(session.EventLoggedIn, user)
	return false
}

func (l *sessionLoop) dashboardScreen() bool {
	user, _ := l.machine.CurrentUser()

	snapshot, err := l.app.coord.Refresh(user.ID)
	if err != nil {
		fmt.Printf("Refresh failed: %v\n", err)
		snapshot = &coordinator.Snapshot{Balance: user.Balance}
	} else {
		user.Balance = snapshot.Balance
		l.machine.SetUser(user)
	}

	fmt.Printf("\n=== Dashboard — %s ===\n", user.Username)
	fmt.Printf("Balance: %s\n\n", snapshot.Balance.StringFixed(2))
	printTransactions(snapshot)

	choice, ok := l.prompt("\n[i]n, [o]ut, [e]dit, [d]elete, [r]efresh, [l]ogout, [q]uit: ")
	if !ok {
		return true
	}

	switch choice {
	case "i":
		l.apply(session.EventNavigateCashIn)
	case "o":
		l.apply(session.EventNavigateCashOut)
	case "e":
		l.editTransaction(snapshot)
	case "d":
		l.deleteTransaction()
	case "r":
		// Loop re-enters the dashboard and refreshes.
	case "l":
		l.apply(session.EventLogout)
	case "q":
		return true
	default:
		fmt.Println("Unknown choice.")
	}
	return false
}

func (l *sessionLoop) recordScreen(kind ledger.Kind) bool {
	user, _ := l.machine.CurrentUser()

	clk := startClock()
	defer clk.Stop()

	fmt.Printf("\n=== %s ===\n", kind.Label())
	fmt.Printf("Current time: %s\n", clk.Now())
	fmt.Println("(leave amount empty to go back)")

	amountStr, ok := l.prompt("Amount: ")
	if !ok {
		return true
	}
	if amountStr == "" {
		l.apply(session.EventBack)
		return false
	}

	amount, err := ledger.ParseAmount(amountStr)
	if err != nil {
		fmt.Printf("Invalid amount: %v\n", err)
		return false
	}

	notes, ok := l.prompt("Notes (optional): ")
	if !ok {
		return true
	}

	photoPath, ok := l.prompt("Photo path (optional): ")
	if !ok {
		return true
	}

	artifactRef := ""
	if photoPath != "" {
		artifactRef, err = l.camera.Capture(photoPath)
		if err != nil {
			// A failed capture only loses the photo, never the entry.
			fmt.Printf("Photo capture failed, continuing without: %v\n", err)
			artifactRef = ""
		}
	}

	result, err := l.app.coord.Record(user.ID, kind, amount, notes, artifactRef)
	if err != nil {
		fmt.Printf("Failed to save transaction: %v\n", err)
		return false
	}

	fmt.Printf("Saved transaction #%d.\n", result.Transaction.ID)
	if result.BindWarning != nil {
		fmt.Printf("Warning: %v\n", result.BindWarning)
	}

	l.apply(session.EventTransactionSaved)
	return false
}

func (l *sessionLoop) editTransaction(snapshot *coordinator.Snapshot) {
	idStr, ok := l.prompt("Transaction ID to edit: ")
	if !ok {
		return
	}
	existing, found := findTransaction(snapshot, idStr)
	if !found {
		fmt.Println("No such transaction in the current list.")
		return
	}

	amountStr, ok := l.prompt("New amount: ")
	if !ok {
		return
	}
	amount, err := ledger.ParseAmount(amountStr)
	if err != nil {
		fmt.Printf("Invalid amount: %v\n", err)
		return
	}

	notes, ok := l.prompt("New notes: ")
	if !ok {
		return
	}

	if _, err := l.app.coord.Edit(existing, amount, notes); err != nil {
		fmt.Printf("Failed to update transaction: %v\n", err)
		return
	}
	fmt.Println("Transaction updated.")
}

func (l *sessionLoop) deleteTransaction() {
	idStr, ok := l.prompt("Transaction ID to delete: ")
	if !ok {
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		fmt.Println("Invalid transaction ID.")
		return
	}

	if err := l.app.coord.Delete(id); err != nil {
		fmt.Printf("Failed to delete transaction: %v\n", err)
		return
	}
	fmt.Println("Transaction deleted.")
}

func findTransaction(snapshot *coordinator.Snapshot, idStr string) (ledger.Transaction, bool) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return ledger.Transaction{}, false
	}
	for _, tx := range snapshot.Transactions {
		if tx.ID == id {
			return tx, true
		}
	}
	return ledger.Transaction{}, false
}

// clock is the once-per-second screen clock shown while recording. Purely
// cosmetic; stopped when the screen is torn down.
type clock struct {
	now  atomic.Value // string
	stop chan struct{}
}

func startClock() *clock {
	c := &clock{stop: make(chan struct{})}
	c.now.Store(time.Now().Format("2006-01-02 15:04:05"))

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case t := <-ticker.C:
				c.now.Store(t.Format("2006-01-02 15:04:05"))
			case <-c.stop:
				return
			}
		}
	}()

	return c
}

func (c *clock) Now() string {
	return c.now.Load().(string)
}

func (c *clock) Stop() {
	close(c.stop)
}
