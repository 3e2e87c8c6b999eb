package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"pokedex/internal/logging"
)

// maxDocumentBytes bounds a downloaded catalog document.
const maxDocumentBytes = 64 << 20

// Refresh downloads the catalog document from the configured URL and replaces
// the local file. The new file is validated before it is moved into place and
// is picked up by the next Current call. Concurrent refreshes, including those
// from other processes sharing the file, are serialized.
func (s *Store) Refresh(ctx context.Context) error {
	if s.opts.DownloadURL == "" {
		return errors.New("catalog download_url not configured")
	}
	s.refresh.Lock()
	defer s.refresh.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.opts.Path), 0o755); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}
	lock := flock.New(s.opts.Path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock catalog: %w", err)
	}
	if !locked {
		return errors.New("lock catalog: not acquired")
	}
	defer lock.Unlock() //nolint:errcheck

	s.logger.Debug("downloading catalog", logging.String("url", s.opts.DownloadURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.DownloadURL, nil)
	if err != nil {
		return fmt.Errorf("download catalog: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("download catalog: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download catalog: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return fmt.Errorf("download catalog: %w", err)
	}
	if len(data) > maxDocumentBytes {
		return fmt.Errorf("download catalog: document exceeds %d bytes", maxDocumentBytes)
	}
	if _, err := decodeBytes(data); err != nil {
		return fmt.Errorf("downloaded catalog rejected: %w", err)
	}

	tempPath := s.opts.Path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("write catalog temp file: %w", err)
	}
	if err := os.Rename(tempPath, s.opts.Path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("replace catalog file: %w", err)
	}
	s.logger.Info("catalog downloaded",
		logging.String("path", s.opts.Path),
		logging.Int("bytes", len(data)),
	)
	return nil
}

func (s *Store) needsRefresh() bool {
	if s.opts.DownloadURL == "" || s.opts.MaxAge <= 0 {
		return false
	}
	info, err := os.Stat(s.opts.Path)
	if err != nil {
		return errors.Is(err, fs.ErrNotExist)
	}
	return time.Since(info.ModTime()) > s.opts.MaxAge
}

func (s *Store) refreshAsync() {
	if !s.needsRefresh() {
		return
	}
	if !s.refreshing.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer s.refreshing.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.DownloadTimeout)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			logging.WarnWithContext(s.logger, "catalog refresh failed; catalog may be stale", "catalog_refresh_failed",
				logging.Error(err),
				logging.String("url", s.opts.DownloadURL),
				logging.String(logging.FieldErrorHint, "check network access or catalog.download_url"),
				logging.String(logging.FieldImpact, "lookups use the existing catalog file"),
			)
		}
	}()
}
