// Package journal records bulk transfers in a local SQLite state database.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	// sqlite driver for the state database.
	_ "modernc.org/sqlite"
)

// Kind names the operation a transfer performed.
type Kind string

// Transfer kinds.
const (
	KindExport Kind = "export"
	KindLoad   Kind = "load"
	KindCreate Kind = "create"
	KindSeed   Kind = "seed"
)

// Status is the outcome of a transfer.
type Status string

// Transfer statuses.
const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Transfer is one journal record.
type Transfer struct {
	ID         string    `json:"id" yaml:"id"`
	Kind       Kind      `json:"kind" yaml:"kind"`
	Target     string    `json:"target" yaml:"target"`
	Table      string    `json:"table" yaml:"table"`
	Path       string    `json:"path,omitempty" yaml:"path,omitempty"`
	Rows       int       `json:"rows" yaml:"rows"` // -1 when unknown
	Status     Status    `json:"status" yaml:"status"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}

// Duration is the wall time the transfer took.
func (t Transfer) Duration() time.Duration {
	return t.FinishedAt.Sub(t.StartedAt)
}

// Store is a SQLite-backed transfer journal.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the journal at path and migrates it.
// Use ":memory:" for an in-memory journal.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dsn := ":memory:"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if path == ":memory:" {
		// An in-memory database exists per connection.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping state database: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("journal opened", slog.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close closes the journal database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores t, assigning its ID when empty, and returns the stored record.
func (s *Store) Record(ctx context.Context, t Transfer) (Transfer, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.FinishedAt.IsZero() {
		t.FinishedAt = time.Now()
	}
	if t.StartedAt.IsZero() {
		t.StartedAt = t.FinishedAt
	}
	t.StartedAt = t.StartedAt.UTC()
	t.FinishedAt = t.FinishedAt.UTC()

	var errMsg sql.NullString
	if t.Error != "" {
		errMsg = sql.NullString{String: t.Error, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transfers (id, kind, target, table_name, path, rows, status, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.Kind), t.Target, t.Table, t.Path, t.Rows, string(t.Status), errMsg,
		t.StartedAt.Format(timeLayout), t.FinishedAt.Format(timeLayout),
	)
	if err != nil {
		return Transfer{}, fmt.Errorf("failed to record transfer: %w", err)
	}

	s.logger.Debug("transfer recorded",
		slog.String("id", t.ID),
		slog.String("kind", string(t.Kind)),
		slog.String("table", t.Table),
		slog.String("status", string(t.Status)))
	return t, nil
}

// ListOptions filters List.
type ListOptions struct {
	// Table restricts the result to one table.
	Table string
	// Limit caps the number of records. Zero means no limit.
	Limit int
}

// List returns transfers, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Transfer, error) {
	query := `SELECT id, kind, target, table_name, path, rows, status, error, started_at, finished_at FROM transfers`
	var args []any
	if opts.Table != "" {
		query += ` WHERE table_name = ?`
		args = append(args, opts.Table)
	}
	query += ` ORDER BY started_at DESC, id`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	transfers := []Transfer{}
	for rows.Next() {
		var (
			t                 Transfer
			kind, status      string
			errMsg            sql.NullString
			started, finished string
		)
		if err := rows.Scan(&t.ID, &kind, &t.Target, &t.Table, &t.Path, &t.Rows, &status, &errMsg, &started, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		t.Kind = Kind(kind)
		t.Status = Status(status)
		t.Error = errMsg.String
		if t.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("invalid started_at %q: %w", started, err)
		}
		if t.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("invalid finished_at %q: %w", finished, err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, nil
}
