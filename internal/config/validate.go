package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind must be host:port: %w", err)
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.Path == "" {
		return errors.New("catalog.path must be set")
	}
	if c.Catalog.DownloadURL != "" {
		if err := validateHTTPURL(c.Catalog.DownloadURL); err != nil {
			return fmt.Errorf("catalog.download_url %w", err)
		}
	}
	if c.Catalog.DownloadTimeout <= 0 {
		return errors.New("catalog.download_timeout must be positive")
	}
	if c.Catalog.MaxAgeHours < 0 {
		return errors.New("catalog.max_age_hours must be zero or positive")
	}
	if c.Catalog.MaxAgeHours > 0 && c.Catalog.DownloadURL == "" {
		return errors.New("catalog.download_url must be set when catalog.max_age_hours is positive")
	}
	return nil
}

func (c *Config) validateClassifier() error {
	if err := validateHTTPURL(c.Classifier.BaseURL); err != nil {
		return fmt.Errorf("classifier.base_url %w", err)
	}
	if c.Classifier.TimeoutSeconds <= 0 {
		return errors.New("classifier.timeout_seconds must be positive")
	}
	if c.Classifier.MaxImageMB <= 0 {
		return errors.New("classifier.max_image_mb must be positive")
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && c.History.Path == "" {
		return errors.New("history.path must be set when history.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}

func validateHTTPURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("must be a valid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("must use http or https (got %q)", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("must include a host (got %q)", raw)
	}
	return nil
}
