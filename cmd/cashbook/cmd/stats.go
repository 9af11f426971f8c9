package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display local store statistics",
	Long: `Display statistics about the local stores.

Shows:
- Number of transactions with a bound receipt photo
- Number of cached users and transactions
- Last dashboard refresh timestamp

Example:
  cashbook stats`,
	Run: runStats,
}

func runStats(cmd *cobra.Command, args []string) {
	app := setupApp()
	defer app.close()

	attachmentCount, err := app.attachments.Count()
	exitOnError(err, "failed to read attachment store")

	cacheStats, err := app.snapshots.GetStats()
	exitOnError(err, "failed to read dashboard cache")

	fmt.Println("\n=== Local Store Statistics ===")
	fmt.Printf("Bound receipt photos:  %d\n", attachmentCount)
	fmt.Printf("Cached users:          %d\n", cacheStats.Users)
	fmt.Printf("Cached transactions:   %d\n", cacheStats.Transactions)

	if cacheStats.LastRefresh.Valid {
		fmt.Printf("Last refresh:          %s\n", cacheStats.LastRefresh.String)
	} else {
		fmt.Printf("Last refresh:          (never)\n")
	}

	fmt.Println()

	slog.Info("statistics displayed successfully")
}
