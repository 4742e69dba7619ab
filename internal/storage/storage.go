// Package storage persists the clipboard history to a SQLite database
// shared by all clipvault processes of the same user. The full list is the
// unit of persistence: Save replaces every row in one transaction, Load
// returns the rows newest first and skips anything malformed.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"go.klb.dev/clipvault/internal/item"
)

// DBFileName is the history database file inside the data directory.
const DBFileName = "history.db"

// historyRow is the bun model for one persisted history entry.
type historyRow struct {
	bun.BaseModel `bun:"table:history_items"`

	ID        string    `bun:"id,pk"`
	Kind      string    `bun:"kind,notnull"`
	Text      string    `bun:"text"`
	Image     []byte    `bun:"image"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// Store loads and saves the clipboard history list.
type Store struct {
	db *bun.DB
}

// Open opens (creating if necessary) the history database at path.
func Open(path string) (*Store, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// OpenShared opens the history database inside dir, the namespace shared
// across clipvault processes. When dir cannot be created or the database
// cannot be opened there, it degrades to a process-local database under a
// fresh temp directory — history then survives the process but is no
// longer visible to siblings.
func OpenShared(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		slog.Warn("shared data dir unavailable", "dir", dir, "err", err)
	} else {
		s, err := Open(filepath.Join(dir, DBFileName))
		if err == nil {
			return s, nil
		}
		slog.Warn("shared history database unavailable", "dir", dir, "err", err)
	}

	local, err := os.MkdirTemp("", "clipvault-*")
	if err != nil {
		return nil, fmt.Errorf("local fallback: %w", err)
	}
	slog.Warn("falling back to process-local history store", "dir", local)
	return Open(filepath.Join(local, DBFileName))
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*historyRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create history table: %w", err)
	}
	if _, err := s.db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_history_created_at ON history_items(created_at DESC)",
	); err != nil {
		return fmt.Errorf("create history index: %w", err)
	}
	return nil
}

// Load returns every valid history entry, newest first. Malformed rows are
// skipped with a warning instead of failing the whole load.
func (s *Store) Load(ctx context.Context) ([]item.Item, error) {
	var rows []historyRow
	if err := s.db.NewSelect().
		Model(&rows).
		Order("created_at DESC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	items := make([]item.Item, 0, len(rows))
	for _, r := range rows {
		it, err := r.item()
		if err != nil {
			slog.Warn("skipping malformed history row", "id", r.ID, "err", err)
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// Save replaces the persisted history with items in one transaction.
func (s *Store) Save(ctx context.Context, items []item.Item) error {
	rows := make([]historyRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, rowOf(it))
	}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*historyRow)(nil)).
			Where("1 = 1").
			Exec(ctx); err != nil {
			return fmt.Errorf("clear rows: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func rowOf(it item.Item) historyRow {
	r := historyRow{
		ID:        it.ID,
		Kind:      string(it.Content.Kind),
		CreatedAt: it.CreatedAt,
	}
	switch it.Content.Kind {
	case item.KindText:
		r.Text = it.Content.Text
	case item.KindImage:
		r.Image = it.Content.Image
	}
	return r
}

func (r historyRow) item() (item.Item, error) {
	rec := item.Record{ID: r.ID, CreatedAt: r.CreatedAt}
	switch item.Kind(r.Kind) {
	case item.KindText:
		rec.Text = r.Text
	case item.KindImage:
		rec.Image = r.Image
	default:
		return item.Item{}, fmt.Errorf("%w: unknown kind %q", item.ErrMalformedRecord, r.Kind)
	}
	return rec.Item()
}
