package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
	APIBind string `toml:"api_bind"`
}

// Catalog describes where the species catalog is read from and how it is
// refreshed.
type Catalog struct {
	Path            string `toml:"path"`
	DownloadURL     string `toml:"download_url"`
	DownloadTimeout int    `toml:"download_timeout"`
	// MaxAgeHours triggers a background re-download once the local file is
	// older than this. Zero disables age-based refresh.
	MaxAgeHours   int  `toml:"max_age_hours"`
	SkipMalformed bool `toml:"skip_malformed"`
}

// Classifier contains connection settings for the image classification service.
type Classifier struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxImageMB     int    `toml:"max_image_mb"`
}

// History contains configuration for the prediction history database.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for pokedex.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories, API bind address
//   - Catalog: species catalog location and download settings
//   - Classifier: image classification service endpoint
//   - History: SQLite prediction history
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Catalog    Catalog    `toml:"catalog"`
	Classifier Classifier `toml:"classifier"`
	History    History    `toml:"history"`
	Logging    Logging    `toml:"logging"`
}

// EnsureDirectories creates the data and log directories plus the parent
// directories of the catalog and history files.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogDir, filepath.Dir(c.Catalog.Path)}
	if c.History.Enabled {
		dirs = append(dirs, filepath.Dir(c.History.Path))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CatalogDownloadTimeout returns the catalog download timeout as a duration.
func (c *Config) CatalogDownloadTimeout() time.Duration {
	return time.Duration(c.Catalog.DownloadTimeout) * time.Second
}

// CatalogMaxAge returns the age after which the catalog is re-downloaded, or
// zero when age-based refresh is disabled.
func (c *Config) CatalogMaxAge() time.Duration {
	return time.Duration(c.Catalog.MaxAgeHours) * time.Hour
}

// ClassifierTimeout returns the per-request classifier timeout.
func (c *Config) ClassifierTimeout() time.Duration {
	return time.Duration(c.Classifier.TimeoutSeconds) * time.Second
}

// MaxImageBytes returns the upload size limit in bytes.
func (c *Config) MaxImageBytes() int64 {
	return int64(c.Classifier.MaxImageMB) << 20
}
