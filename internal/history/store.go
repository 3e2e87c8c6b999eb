package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no entry matches the requested ID.
var ErrNotFound = errors.New("history: entry not found")

const (
	defaultListLimit = 50
	// Fixed-width so created_at sorts lexically.
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Entry is one recorded identification attempt.
type Entry struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Image          string    `json:"image,omitempty"`
	PredictedIndex int       `json:"predicted_index"`
	// RawLabel is nil when the classifier returned no usable label.
	RawLabel *string `json:"raw_label"`
	Name     string  `json:"name,omitempty"`
	Label    string  `json:"label,omitempty"`
	Resolved bool    `json:"resolved"`
	Rule     string  `json:"rule,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// ListOptions filters List results.
type ListOptions struct {
	// Limit caps the number of entries; zero means a default of 50.
	Limit int
	// UnresolvedOnly returns only completed entries whose label matched no
	// record. Failed attempts are excluded.
	UnresolvedOnly bool
}

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history: database path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts entry, assigning an ID and timestamp when they are unset,
// and returns the stored entry.
func (s *Store) Record(ctx context.Context, entry Entry) (Entry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO predictions (
            id, created_at, image, predicted_index, raw_label,
            name, label, resolved, rule, error
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.CreatedAt.Format(timestampLayout),
		entry.Image,
		entry.PredictedIndex,
		nullableString(entry.RawLabel),
		entry.Name,
		entry.Label,
		boolToInt(entry.Resolved),
		entry.Rule,
		entry.Error,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert prediction: %w", err)
	}
	return entry, nil
}

// Get returns the entry with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get prediction %s: %w", id, err)
	}
	return entry, nil
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query := selectColumns
	if opts.UnresolvedOnly {
		query += " WHERE resolved = 0 AND error = ''"
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate predictions: %w", err)
	}
	return entries, nil
}

// Clear deletes every entry and reports how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM predictions")
	if err != nil {
		return 0, fmt.Errorf("clear predictions: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}

const selectColumns = `SELECT id, created_at, image, predicted_index, raw_label,
        name, label, resolved, rule, error FROM predictions`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		entry     Entry
		createdAt string
		rawLabel  sql.NullString
		resolved  int
	)
	if err := row.Scan(
		&entry.ID,
		&createdAt,
		&entry.Image,
		&entry.PredictedIndex,
		&rawLabel,
		&entry.Name,
		&entry.Label,
		&resolved,
		&entry.Rule,
		&entry.Error,
	); err != nil {
		return Entry{}, err
	}
	parsed, err := time.Parse(timestampLayout, createdAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	entry.CreatedAt = parsed
	if rawLabel.Valid {
		label := rawLabel.String
		entry.RawLabel = &label
	}
	entry.Resolved = resolved != 0
	return entry, nil
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
