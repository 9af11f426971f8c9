// Package capture models the photo-capture collaborator at its interface:
// it takes a source image, files it under the managed photos directory, and
// returns an opaque artifact URI for later binding.
package capture

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Camera files captured images under a managed directory.
type Camera struct {
	photosDir string
}

// New creates a Camera writing into photosDir.
func New(photosDir string) *Camera {
	return &Camera{photosDir: photosDir}
}

// Capture copies the image at sourcePath into the photos directory under a
// fresh name and returns its artifact URI. The returned reference has no
// transaction identifier yet; binding happens only after the transaction
// write succeeds.
func (c *Camera) Capture(sourcePath string) (string, error) {
	src, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to open source image: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(c.photosDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create photos directory: %w", err)
	}

	name := uuid.NewString() + filepath.Ext(sourcePath)
	destPath := filepath.Join(c.photosDir, name)

	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create photo file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, src); err != nil {
		_ = os.Remove(destPath)
		return "", fmt.Errorf("failed to copy image: %w", err)
	}

	abs, err := filepath.Abs(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve photo path: %w", err)
	}

	return "file://" + abs, nil
}
