package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"pokedex/internal/logging"
)

const (
	defaultDownloadTimeout = 2 * time.Minute
	lockRetryDelay         = 250 * time.Millisecond
)

// Options configures a Store.
type Options struct {
	// Path is the local catalog document.
	Path string
	// DownloadURL, when set, is fetched whenever Path is missing or older
	// than MaxAge.
	DownloadURL     string
	DownloadTimeout time.Duration
	// MaxAge of zero disables age-based refreshes.
	MaxAge time.Duration
	// Strict rejects a catalog containing malformed records instead of
	// skipping them with a warning.
	Strict bool
	// HTTPClient overrides the download client.
	HTTPClient *http.Client
	// OnLoad, when set, is called after every load attempt that read the
	// file, successful or not.
	OnLoad func(records, skipped int, err error)
}

// Status summarizes the currently published index.
type Status struct {
	Path     string    `json:"path"`
	Source   string    `json:"source,omitempty"`
	Records  int       `json:"records"`
	Skipped  int       `json:"skipped"`
	ModTime  time.Time `json:"mod_time"`
	LoadedAt time.Time `json:"loaded_at"`
}

type snapshot struct {
	index    *Index
	skipped  int
	modTime  time.Time
	loadedAt time.Time
}

// Store publishes the current catalog Index. Readers call Index or Current and
// never observe a partially built index: reloads build a fresh Index and swap
// it in with one atomic store.
type Store struct {
	opts   Options
	logger *slog.Logger
	client *http.Client

	current    atomic.Pointer[snapshot]
	reload     sync.Mutex
	// failedMod and failedErr remember the last file version that failed to
	// load so it is not parsed again until it changes. Guarded by reload.
	failedMod  time.Time
	failedErr  error
	refresh    sync.Mutex
	refreshing atomic.Bool
}

// NewStore creates a store for opts.Path. Nothing is read until Load or
// Current is called.
func NewStore(opts Options, logger *slog.Logger) (*Store, error) {
	opts.Path = strings.TrimSpace(opts.Path)
	if opts.Path == "" {
		return nil, errors.New("catalog path required")
	}
	opts.DownloadURL = strings.TrimSpace(opts.DownloadURL)
	if opts.DownloadTimeout <= 0 {
		opts.DownloadTimeout = defaultDownloadTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.DownloadTimeout}
	}
	return &Store{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "catalog"),
		client: client,
	}, nil
}

// Index returns the most recently published index, or nil before the first
// successful load. A nil *Index behaves as an empty catalog.
func (s *Store) Index() *Index {
	if s == nil {
		return nil
	}
	if snap := s.current.Load(); snap != nil {
		return snap.index
	}
	return nil
}

// Current returns an index that reflects the catalog file on disk, loading or
// reloading it when the file changed since the last load. If the file is
// missing and a download URL is configured the catalog is fetched first.
func (s *Store) Current(ctx context.Context) (*Index, error) {
	info, err := s.ensureFile(ctx)
	if err != nil {
		if idx := s.Index(); idx != nil {
			logging.WarnWithContext(s.logger, "catalog unavailable; serving previous index", "catalog_reload_failed",
				logging.Error(err),
				logging.String("path", s.opts.Path),
				logging.String(logging.FieldErrorHint, "check catalog.path or catalog.download_url"),
				logging.String(logging.FieldImpact, "lookups use the last loaded catalog"),
			)
			return idx, nil
		}
		return nil, err
	}
	if snap := s.current.Load(); snap != nil && snap.modTime.Equal(info.ModTime()) {
		s.refreshAsync()
		return snap.index, nil
	}
	idx, err := s.load(info, false)
	if err != nil {
		if prev := s.Index(); prev != nil {
			return prev, nil
		}
		return nil, err
	}
	s.refreshAsync()
	return idx, nil
}

// Load reads the catalog file unconditionally and publishes a new index.
func (s *Store) Load(ctx context.Context) (*Index, error) {
	info, err := s.ensureFile(ctx)
	if err != nil {
		return nil, err
	}
	return s.load(info, true)
}

// Status describes the published index. ok is false before the first load.
func (s *Store) Status() (Status, bool) {
	snap := s.current.Load()
	if snap == nil {
		return Status{Path: s.opts.Path, Source: s.opts.DownloadURL}, false
	}
	return Status{
		Path:     s.opts.Path,
		Source:   s.opts.DownloadURL,
		Records:  snap.index.Len(),
		Skipped:  snap.skipped,
		ModTime:  snap.modTime,
		LoadedAt: snap.loadedAt,
	}, true
}

func (s *Store) ensureFile(ctx context.Context) (fs.FileInfo, error) {
	info, err := os.Stat(s.opts.Path)
	if err == nil {
		if info.IsDir() {
			return nil, fmt.Errorf("catalog path %s is a directory", s.opts.Path)
		}
		return info, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat catalog: %w", err)
	}
	if s.opts.DownloadURL == "" {
		return nil, fmt.Errorf("catalog %s not found and no download_url configured: %w", s.opts.Path, err)
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	info, err = os.Stat(s.opts.Path)
	if err != nil {
		return nil, fmt.Errorf("stat catalog: %w", err)
	}
	return info, nil
}

func (s *Store) load(info fs.FileInfo, force bool) (*Index, error) {
	s.reload.Lock()
	defer s.reload.Unlock()

	if snap := s.current.Load(); !force && snap != nil && snap.modTime.Equal(info.ModTime()) {
		return snap.index, nil
	}

	if !force && s.failedErr != nil && s.failedMod.Equal(info.ModTime()) {
		return nil, s.failedErr
	}

	idx, skipped, err := s.build()
	if s.opts.OnLoad != nil {
		s.opts.OnLoad(idx.Len(), skipped, err)
	}
	if err != nil {
		s.failedMod, s.failedErr = info.ModTime(), err
		if s.current.Load() != nil {
			logging.WarnWithContext(s.logger, "catalog reload failed; serving previous index", "catalog_reload_failed",
				logging.Error(err),
				logging.String("path", s.opts.Path),
				logging.String(logging.FieldErrorHint, "fix the catalog file; it is read again once modified"),
				logging.String(logging.FieldImpact, "lookups use the last loaded catalog"),
			)
		}
		return nil, err
	}
	s.failedMod, s.failedErr = time.Time{}, nil

	s.current.Store(&snapshot{
		index:    idx,
		skipped:  skipped,
		modTime:  info.ModTime(),
		loadedAt: time.Now(),
	})
	s.logger.Info("catalog loaded",
		logging.String("path", s.opts.Path),
		logging.Int("records", idx.Len()),
		logging.Int("skipped", skipped),
	)
	return idx, nil
}

func (s *Store) build() (*Index, int, error) {
	file, err := os.Open(s.opts.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("open catalog: %w", err)
	}
	records, err := Decode(file)
	file.Close()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", s.opts.Path, err)
	}

	var buildOpts []BuildOption
	skipped := 0
	if !s.opts.Strict {
		buildOpts = append(buildOpts, WithSkipMalformed(func(malformed *MalformedRecordError) {
			skipped++
			logging.WarnWithContext(s.logger, "skipping malformed catalog record", "catalog_record_skipped",
				logging.Int("position", malformed.Position),
				logging.String("name", malformed.Record.Name),
				logging.String("reason", malformed.Reason),
				logging.String(logging.FieldErrorHint, "add name_en to the catalog entry"),
				logging.String(logging.FieldImpact, "the entry cannot be matched"),
			)
		}))
	}
	idx, err := Build(records, buildOpts...)
	if err != nil {
		return nil, 0, fmt.Errorf("build catalog index: %w", err)
	}
	return idx, skipped, nil
}
