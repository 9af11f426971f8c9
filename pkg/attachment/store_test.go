package attachment

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "attachments.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store, path
}

func TestPutGetRoundTrip(t *testing.T) {
	store, _ := openTestStore(t)

	if err := store.Put(42, "file:///photos/a.jpg"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	ref, ok, err := store.Get(42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected binding to exist")
	}
	if ref != "file:///photos/a.jpg" {
		t.Errorf("Expected ref file:///photos/a.jpg, got %s", ref)
	}
}

func TestGetMissingIsNotAnError(t *testing.T) {
	store, _ := openTestStore(t)

	ref, ok, err := store.Get(999)
	if err != nil {
		t.Fatalf("Get of missing key must not error, got: %v", err)
	}
	if ok || ref != "" {
		t.Errorf("Expected no binding, got ok=%v ref=%q", ok, ref)
	}
}

func TestPutOverwritesLastWriteWins(t *testing.T) {
	store, _ := openTestStore(t)

	if err := store.Put(7, "file:///photos/old.jpg"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(7, "file:///photos/new.jpg"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	ref, ok, err := store.Get(7)
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if ref != "file:///photos/new.jpg" {
		t.Errorf("Expected last write to win, got %s", ref)
	}
}

func TestPutIsIdempotent(t *testing.T) {
	store, _ := openTestStore(t)

	for i := 0; i < 2; i++ {
		if err := store.Put(5, "file:///photos/r.jpg"); err != nil {
			t.Fatalf("Put #%d failed: %v", i+1, err)
		}
	}

	ref, ok, err := store.Get(5)
	if err != nil || !ok || ref != "file:///photos/r.jpg" {
		t.Errorf("Unexpected state after repeated Put: ref=%q ok=%v err=%v", ref, ok, err)
	}

	keys, err := store.ListKeys()
	if err != nil {
		t.Fatalf("ListKeys failed: %v", err)
	}
	if len(keys) != 1 {
		t.Errorf("Expected 1 key, got %d", len(keys))
	}
}

func TestDeleteThenGet(t *testing.T) {
	store, _ := openTestStore(t)

	if err := store.Put(3, "file:///photos/x.jpg"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Delete(3); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, ok, err := store.Get(3)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("Expected binding to be gone after delete")
	}
}

func TestDeleteAbsentKeySucceeds(t *testing.T) {
	store, _ := openTestStore(t)

	if err := store.Delete(12345); err != nil {
		t.Errorf("Delete of absent key must succeed, got: %v", err)
	}
}

func TestListKeys(t *testing.T) {
	store, _ := openTestStore(t)

	ids := []int64{1, 2, 30}
	for _, id := range ids {
		if err := store.Put(id, "file:///photos/p.jpg"); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	keys, err := store.ListKeys()
	if err != nil {
		t.Fatalf("ListKeys failed: %v", err)
	}
	if len(keys) != len(ids) {
		t.Fatalf("Expected %d keys, got %d", len(ids), len(keys))
	}

	seen := make(map[int64]bool)
	for _, k := range keys {
		seen[k] = true
	}
	for _, id := range ids {
		if !seen[id] {
			t.Errorf("Expected key %d in listing", id)
		}
	}
}

func TestBindingsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attachments.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := store.Put(9, "file:///photos/keep.jpg"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	ref, ok, err := reopened.Get(9)
	if err != nil || !ok {
		t.Fatalf("Get after reopen failed: ok=%v err=%v", ok, err)
	}
	if ref != "file:///photos/keep.jpg" {
		t.Errorf("Expected binding to survive reopen, got %s", ref)
	}
}

func TestCount(t *testing.T) {
	store, _ := openTestStore(t)

	for id := int64(1); id <= 3; id++ {
		if err := store.Put(id, "file:///photos/p.jpg"); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	n, err := store.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected count 3, got %d", n)
	}
}
