// Package cmd provides CLI commands for cashbook.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cashbook-app/cashbook/pkg/attachment"
	"github.com/cashbook-app/cashbook/pkg/cache"
	"github.com/cashbook-app/cashbook/pkg/config"
	"github.com/cashbook-app/cashbook/pkg/coordinator"
	"github.com/cashbook-app/cashbook/pkg/ledger"
	"github.com/cashbook-app/cashbook/pkg/pathutil"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cashbook",
	Short: "Personal cash ledger with photo receipts",
	Long: `cashbook is a client for a personal cash-ledger service.

It records cash-in/cash-out events against the remote transaction
service, keeps captured receipt photos bound to their transactions in a
local store, and shows a running balance derived from server state.

Example:
  cashbook session
  cashbook record --username alice --password pw --kind in --amount 100
  cashbook list --username alice --password pw
  cashbook stats`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup logging
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
}

// Helper function to get config file path.
func getConfigFile() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "" // Will use default .env loading
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}

// appContext bundles the wired client-side components.
type appContext struct {
	cfg         *config.Config
	paths       *pathutil.PathResolver
	client      *ledger.Client
	attachments *attachment.Store
	snapshots   *cache.Store
	cacheConn   *cache.Connection
	coord       *coordinator.Coordinator
}

// setupApp loads configuration and opens the local stores.
func setupApp() *appContext {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	if err := cfg.Validate("api.url", "dataDir"); err != nil {
		exitOnError(err, "invalid configuration")
	}

	paths := pathutil.New(pathutil.Config{DataDir: cfg.DataDir})
	exitOnError(paths.EnsureDataDirs(), "failed to create data directory")

	client := ledger.NewClient(ledger.ClientConfig{
		BaseURL: cfg.API.URL,
		Timeout: cfg.API.Timeout,
	})

	slog.Debug("opening attachment store", "path", paths.GetAttachmentsDBPath())
	attachments, err := attachment.Open(paths.GetAttachmentsDBPath())
	exitOnError(err, "failed to open attachment store")

	slog.Debug("opening dashboard cache", "path", paths.GetCacheDBPath())
	cacheConn, err := cache.Open(paths.GetCacheDBPath())
	exitOnError(err, "failed to open dashboard cache")

	snapshots := cache.NewStore(cacheConn)

	return &appContext{
		cfg:         cfg,
		paths:       paths,
		client:      client,
		attachments: attachments,
		snapshots:   snapshots,
		cacheConn:   cacheConn,
		coord:       coordinator.New(client, attachments, snapshots),
	}
}

// close releases the local stores.
func (a *appContext) close() {
	if err := a.attachments.Close(); err != nil {
		slog.Error("failed to close attachment store", "error", err)
	}
	if err := a.cacheConn.Close(); err != nil {
		slog.Error("failed to close dashboard cache", "error", err)
	}
}
