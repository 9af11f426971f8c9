// Package pathutil provides centralized path management for the cashbook
// data directory: local databases and captured photos.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathResolver manages paths under the cashbook data directory.
type PathResolver struct {
	dataDir           string
	attachmentsDBPath string
	cacheDBPath       string
	photosDir         string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// DataDir is the root directory for all local state (e.g., ~/.cashbook)
	DataDir string
	// AttachmentsDBPath overrides the attachment store location
	AttachmentsDBPath string
	// CacheDBPath overrides the dashboard cache location
	CacheDBPath string
	// PhotosDir overrides the captured-photo directory
	PhotosDir string
}

// New creates a new PathResolver with the given configuration.
// If AttachmentsDBPath is empty, it defaults to {DataDir}/attachments.db
// If CacheDBPath is empty, it defaults to {DataDir}/cache.db
// If PhotosDir is empty, it defaults to {DataDir}/photos
func New(config Config) *PathResolver {
	attachmentsDB := config.AttachmentsDBPath
	if attachmentsDB == "" {
		attachmentsDB = filepath.Join(config.DataDir, "attachments.db")
	}

	cacheDB := config.CacheDBPath
	if cacheDB == "" {
		cacheDB = filepath.Join(config.DataDir, "cache.db")
	}

	photosDir := config.PhotosDir
	if photosDir == "" {
		photosDir = filepath.Join(config.DataDir, "photos")
	}

	return &PathResolver{
		dataDir:           config.DataDir,
		attachmentsDBPath: attachmentsDB,
		cacheDBPath:       cacheDB,
		photosDir:         photosDir,
	}
}

// GetDataDir returns the data root directory.
func (p *PathResolver) GetDataDir() string {
	return p.dataDir
}

// GetAttachmentsDBPath returns the attachment store file path.
func (p *PathResolver) GetAttachmentsDBPath() string {
	return p.attachmentsDBPath
}

// GetCacheDBPath returns the dashboard cache file path.
func (p *PathResolver) GetCacheDBPath() string {
	return p.cacheDBPath
}

// GetPhotosDir returns the captured-photo directory.
func (p *PathResolver) GetPhotosDir() string {
	return p.photosDir
}

// EnsureDataDirs creates the data directory tree if it doesn't exist.
func (p *PathResolver) EnsureDataDirs() error {
	for _, dir := range []string{p.dataDir, p.photosDir, filepath.Dir(p.attachmentsDBPath), filepath.Dir(p.cacheDBPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}
