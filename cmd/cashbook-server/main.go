// Command cashbook-server runs a local stand-in for the remote cashbook
// transaction service, for development and testing.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cashbook-app/cashbook/internal/server"
	"github.com/cashbook-app/cashbook/internal/server/auth"
	"github.com/cashbook-app/cashbook/internal/server/store"
)

const (
	defaultPort   = "8080"
	defaultDBPath = "./data/cashbook.db"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	st, err := store.New(dbPath)
	if err != nil {
		slog.Error("failed to initialize store", "error", err, "db_path", dbPath)
		os.Exit(1)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	slog.Info("database initialized", "db_path", dbPath)

	if seedFile := os.Getenv("SEED_FILE"); seedFile != "" {
		if err := server.Seed(st, seedFile); err != nil {
			slog.Error("failed to load seed file", "error", err, "seed_file", seedFile)
			os.Exit(1)
		}
		slog.Info("seed data loaded", "seed_file", seedFile)
	}

	tokens := auth.NewManager(st)
	r := server.NewRouter(st, tokens)

	addr := fmt.Sprintf(":%s", port)
	slog.Info("starting cashbook service emulator", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		slog.Info("shutting down server")
		if err := srv.Close(); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
