package integration

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/cashbook-app/cashbook/internal/server"
	"github.com/cashbook-app/cashbook/internal/server/auth"
	"github.com/cashbook-app/cashbook/internal/server/store"
	"github.com/cashbook-app/cashbook/pkg/attachment"
	"github.com/cashbook-app/cashbook/pkg/cache"
	"github.com/cashbook-app/cashbook/pkg/capture"
	"github.com/cashbook-app/cashbook/pkg/coordinator"
	"github.com/cashbook-app/cashbook/pkg/ledger"
)

// testEnv wires the full client stack against an in-process service emulator.
type testEnv struct {
	st          *store.Store
	serverURL   string
	client      *ledger.Client
	attachments *attachment.Store
	snapshots   *cache.Store
	coord       *coordinator.Coordinator
	dataDir     string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dataDir := t.TempDir()

	st, err := store.New(filepath.Join(dataDir, "server.db"))
	if err != nil {
		t.Fatalf("Failed to initialize server store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	tokens := auth.NewManager(st)
	srv := httptest.NewServer(server.NewRouter(st, tokens))
	t.Cleanup(srv.Close)

	attachments, err := attachment.Open(filepath.Join(dataDir, "attachments.db"))
	if err != nil {
		t.Fatalf("Failed to open attachment store: %v", err)
	}
	t.Cleanup(func() {
		_ = attachments.Close()
	})

	conn, err := cache.Open(filepath.Join(dataDir, "cache.db"))
	if err != nil {
		t.Fatalf("Failed to open cache: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	snapshots := cache.NewStore(conn)

	client := ledger.NewClient(ledger.ClientConfig{BaseURL: srv.URL})

	return &testEnv{
		st:          st,
		serverURL:   srv.URL,
		client:      client,
		attachments: attachments,
		snapshots:   snapshots,
		coord:       coordinator.New(client, attachments, snapshots),
		dataDir:     dataDir,
	}
}

// registerAndLogin creates an account and logs in, leaving the session token
// on the client.
func (e *testEnv) registerAndLogin(t *testing.T, username, password string) ledger.User {
	t.Helper()

	if _, err := e.client.Register(username, password); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	user, err := e.client.Login(username, password)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return user
}

// capturePhoto writes a source image and runs it through the capture flow,
// returning the artifact reference.
func (e *testEnv) capturePhoto(t *testing.T, content string) string {
	t.Helper()

	source := filepath.Join(e.dataDir, "source.jpg")
	if err := os.WriteFile(source, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write source image: %v", err)
	}

	camera := capture.New(filepath.Join(e.dataDir, "photos"))
	ref, err := camera.Capture(source)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	return ref
}

// writeSeedFile writes a YAML fixture and loads it into the server store.
func (e *testEnv) seed(t *testing.T, yaml string) {
	t.Helper()

	path := filepath.Join(e.dataDir, "seed.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}
	if err := server.Seed(e.st, path); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
}

// assertServerMessage checks that err is a rejected-request error carrying
// the exact server-supplied message.
func assertServerMessage(t *testing.T, err error, want string) {
	t.Helper()

	if err == nil {
		t.Fatalf("Expected error %q, got nil", want)
	}
	le, ok := err.(*ledger.Error)
	if !ok {
		t.Fatalf("Expected *ledger.Error, got %T: %v", err, err)
	}
	if le.Message != want {
		t.Errorf("Expected message %q, got %q", want, le.Message)
	}
}
