package capture

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCaptureFilesImageUnderPhotosDir(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "receipt.jpg")
	if err := os.WriteFile(source, []byte("jpeg-bytes"), 0o644); err != nil {
		t.Fatalf("Failed to write source file: %v", err)
	}

	photosDir := filepath.Join(dir, "photos")
	camera := New(photosDir)

	ref, err := camera.Capture(source)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	if !strings.HasPrefix(ref, "file://") {
		t.Errorf("Expected a file URI, got %q", ref)
	}
	if !strings.HasSuffix(ref, ".jpg") {
		t.Errorf("Expected extension preserved, got %q", ref)
	}

	path := strings.TrimPrefix(ref, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read captured file: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("Captured content differs from source")
	}
	if filepath.Dir(path) != photosDir {
		t.Errorf("Expected photo filed under %s, got %s", photosDir, filepath.Dir(path))
	}
}

func TestCaptureGeneratesFreshNames(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "receipt.png")
	if err := os.WriteFile(source, []byte("png"), 0o644); err != nil {
		t.Fatalf("Failed to write source file: %v", err)
	}

	camera := New(filepath.Join(dir, "photos"))

	first, err := camera.Capture(source)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	second, err := camera.Capture(source)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if first == second {
		t.Error("Capturing the same source twice must not collide")
	}
}

func TestCaptureMissingSource(t *testing.T) {
	camera := New(filepath.Join(t.TempDir(), "photos"))

	if _, err := camera.Capture("/no/such/file.jpg"); err == nil {
		t.Error("Expected error for missing source image")
	}
}
