package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"pokedex/internal/api"
	"pokedex/internal/catalog"
	"pokedex/internal/classifier"
	"pokedex/internal/config"
	"pokedex/internal/history"
	"pokedex/internal/identify"
	"pokedex/internal/logging"
	"pokedex/internal/metrics"
)

var errHistoryDisabled = errors.New("prediction history is disabled; set history.enabled = true in the config")

// commandContext lazily builds the shared components for a single CLI
// invocation. Every accessor is safe to call repeatedly.
type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	metricsOnce sync.Once
	metrics     *metrics.Metrics

	catalogOnce sync.Once
	catalog     *catalog.Store
	catalogErr  error

	historyOnce sync.Once
	history     *history.Store
	historyErr  error

	serviceOnce sync.Once
	service     *identify.Service
	serviceErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if level := c.logLevelOverride(); level != "" {
			switch level {
			case "debug", "info", "warn", "error":
				cfg.Logging.Level = level
			default:
				c.configErr = fmt.Errorf("invalid --log-level %q", level)
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) logLevelOverride() string {
	if c.logLevelFlag == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("setup logging: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) ensureMetrics() *metrics.Metrics {
	c.metricsOnce.Do(func() {
		c.metrics = metrics.New()
	})
	return c.metrics
}

func (c *commandContext) ensureCatalog() (*catalog.Store, error) {
	c.catalogOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.catalogErr = err
			return
		}
		logger, err := c.ensureLogger()
		if err != nil {
			c.catalogErr = err
			return
		}
		store, err := catalog.NewStore(catalog.Options{
			Path:            cfg.Catalog.Path,
			DownloadURL:     cfg.Catalog.DownloadURL,
			DownloadTimeout: cfg.CatalogDownloadTimeout(),
			MaxAge:          cfg.CatalogMaxAge(),
			Strict:          !cfg.Catalog.SkipMalformed,
			OnLoad:          c.ensureMetrics().ObserveCatalogLoad,
		}, logger)
		if err != nil {
			c.catalogErr = fmt.Errorf("open catalog: %w", err)
			return
		}
		c.catalog = store
	})
	return c.catalog, c.catalogErr
}

// ensureHistory returns nil without error when history is disabled.
func (c *commandContext) ensureHistory() (*history.Store, error) {
	c.historyOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.historyErr = err
			return
		}
		if !cfg.History.Enabled {
			return
		}
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			c.historyErr = fmt.Errorf("open history: %w", err)
			return
		}
		c.history = store
	})
	return c.history, c.historyErr
}

func (c *commandContext) requireHistory() (*history.Store, error) {
	store, err := c.ensureHistory()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errHistoryDisabled
	}
	return store, nil
}

func (c *commandContext) ensureService() (*identify.Service, error) {
	c.serviceOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.serviceErr = err
			return
		}
		logger, err := c.ensureLogger()
		if err != nil {
			c.serviceErr = err
			return
		}
		store, err := c.ensureCatalog()
		if err != nil {
			c.serviceErr = err
			return
		}
		client, err := classifier.New(cfg.Classifier.BaseURL,
			classifier.WithTimeout(cfg.ClassifierTimeout()),
			classifier.WithMaxImageBytes(cfg.MaxImageBytes()),
		)
		if err != nil {
			c.serviceErr = fmt.Errorf("create classifier client: %w", err)
			return
		}
		hist, err := c.ensureHistory()
		if err != nil {
			c.serviceErr = err
			return
		}
		opts := identify.Options{
			Catalog:    store,
			Classifier: client,
			Metrics:    c.ensureMetrics(),
			Logger:     logger,
		}
		if hist != nil {
			opts.History = hist
		}
		svc, err := identify.New(opts)
		if err != nil {
			c.serviceErr = err
			return
		}
		c.service = svc
	})
	return c.service, c.serviceErr
}

func (c *commandContext) newAPIServer(bind string) (*api.Server, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	svc, err := c.ensureService()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	hist, err := c.ensureHistory()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(bind) == "" {
		bind = cfg.Paths.APIBind
	}
	opts := api.Options{
		Bind:           bind,
		Identify:       svc,
		Catalog:        c.catalog,
		Metrics:        c.ensureMetrics(),
		Logger:         logger,
		MaxUploadBytes: cfg.MaxImageBytes(),
	}
	if hist != nil {
		opts.History = hist
	}
	return api.New(opts)
}

// close releases resources opened during the invocation.
func (c *commandContext) close() {
	if c.history != nil {
		_ = c.history.Close()
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
