package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cashbook-app/cashbook/pkg/capture"
	"github.com/cashbook-app/cashbook/pkg/ledger"
)

var (
	recordUsername string
	recordPassword string
	recordKind     string
	recordAmount   string
	recordNotes    string
	recordPhoto    string
)

// recordCmd represents the record command.
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a cash-in or cash-out transaction",
	Long: `Record a single transaction against the ledger service.

The transaction write is the commit point: if it fails nothing is stored.
A photo, when given, is filed locally and bound to the server-assigned
transaction ID afterwards; a failed bind leaves the ledger entry intact.

Example:
  cashbook record --username alice --password pw --kind in --amount 100.00
  cashbook record --username alice --password pw --kind out --amount 40 --photo ./receipt.jpg`,
	Run: runRecord,
}

func init() {
	recordCmd.Flags().StringVar(&recordUsername, "username", "", "Account username (required)")
	recordCmd.Flags().StringVar(&recordPassword, "password", "", "Account password (required)")
	recordCmd.Flags().StringVar(&recordKind, "kind", "", "Transaction kind: in or out (required)")
	recordCmd.Flags().StringVar(&recordAmount, "amount", "", "Amount (required)")
	recordCmd.Flags().StringVar(&recordNotes, "notes", "", "Notes (defaults to an auto-generated label)")
	recordCmd.Flags().StringVar(&recordPhoto, "photo", "", "Path to a receipt photo to attach")

	recordCmd.MarkFlagRequired("username")
	recordCmd.MarkFlagRequired("password")
	recordCmd.MarkFlagRequired("kind")
	recordCmd.MarkFlagRequired("amount")
}

func runRecord(cmd *cobra.Command, args []string) {
	kind, err := parseKind(recordKind)
	exitOnError(err, "invalid --kind")

	// Validated before login so bad input costs no network round-trip.
	amount, err := ledger.ParseAmount(recordAmount)
	exitOnError(err, "invalid --amount")

	app := setupApp()
	defer app.close()

	user, err := app.client.Login(recordUsername, recordPassword)
	exitOnError(err, "login failed")

	artifactRef := ""
	if recordPhoto != "" {
		camera := capture.New(app.paths.GetPhotosDir())
		artifactRef, err = camera.Capture(recordPhoto)
		exitOnError(err, "failed to capture photo")
		slog.Debug("photo captured", "ref", artifactRef)
	}

	result, err := app.coord.Record(user.ID, kind, amount, recordNotes, artifactRef)
	exitOnError(err, "failed to record transaction")

	fmt.Printf("Recorded %s of %s (transaction #%d)\n",
		kind.Label(), amount.StringFixed(2), result.Transaction.ID)
	if result.BindWarning != nil {
		fmt.Printf("Warning: %v\n", result.BindWarning)
	}

	snapshot, err := app.coord.Refresh(user.ID)
	exitOnError(err, "failed to refresh balance")
	fmt.Printf("Balance: %s\n", snapshot.Balance.StringFixed(2))
}

func parseKind(s string) (ledger.Kind, error) {
	switch s {
	case "in":
		return ledger.KindCashIn, nil
	case "out":
		return ledger.KindCashOut, nil
	default:
		return "", fmt.Errorf("must be %q or %q, got %q", "in", "out", s)
	}
}
