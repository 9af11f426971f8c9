package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cashbook-app/cashbook/pkg/coordinator"
	"github.com/cashbook-app/cashbook/pkg/ledger"
)

var (
	listUsername string
	listPassword string
)

// listCmd represents the list command.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the balance and transaction history",
	Long: `Fetch the balance and transaction list from the ledger service,
newest first, with a marker for transactions that have a locally stored
receipt photo.

When the service is unreachable the last cached dashboard snapshot is
shown instead, clearly marked as stale.

Example:
  cashbook list --username alice --password pw`,
	Run: runList,
}

func init() {
	listCmd.Flags().StringVar(&listUsername, "username", "", "Account username (required)")
	listCmd.Flags().StringVar(&listPassword, "password", "", "Account password (required)")

	listCmd.MarkFlagRequired("username")
	listCmd.MarkFlagRequired("password")
}

func runList(cmd *cobra.Command, args []string) {
	app := setupApp()
	defer app.close()

	user, err := app.client.Login(listUsername, listPassword)
	exitOnError(err, "login failed")

	snapshot, err := app.coord.Refresh(user.ID)
	if err != nil {
		if !ledger.IsNetwork(err) {
			exitOnError(err, "failed to fetch transactions")
		}

		// Service unreachable: fall back to the last cached view.
		slog.Warn("service unreachable, using cached snapshot", "error", err)
		cached, ok, cacheErr := app.snapshots.Load(user.ID)
		exitOnError(cacheErr, "failed to load cached snapshot")
		if !ok {
			exitOnError(err, "service unreachable and no cached snapshot")
		}

		fmt.Printf("(offline: showing snapshot from %s)\n", cached.RefreshedAt.Format("2006-01-02 15:04:05"))
		snapshot = &coordinator.Snapshot{
			Balance:      cached.Balance,
			Transactions: cached.Transactions,
			Attachments:  app.coord.HydrateAttachments(cached.Transactions),
			RefreshedAt:  cached.RefreshedAt,
		}
	}

	fmt.Printf("%s — balance %s\n\n", user.Username, snapshot.Balance.StringFixed(2))
	printTransactions(snapshot)
}

func printTransactions(snapshot *coordinator.Snapshot) {
	if len(snapshot.Transactions) == 0 {
		fmt.Println("No transactions yet.")
		return
	}

	for _, tx := range snapshot.Transactions {
		marker := " "
		if _, ok := snapshot.Attachments[tx.ID]; ok {
			marker = "*" // has a receipt photo
		}
		fmt.Printf("%s #%-4d %s %10s  %s  %s\n",
			marker, tx.ID, tx.TransactionDate.Format("2006-01-02 15:04"),
			tx.Amount().StringFixed(2), tx.Type.Label(), tx.Notes)
	}
}
