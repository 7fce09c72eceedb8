package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Store owns every persisted row of the championship. All access goes
// through a Tx obtained from Update or View.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and applies Schema.
// Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	// One connection: a single writer, and an in-memory database stays the
	// same database across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

// Init performs first-run initialization. It is idempotent: the week
// counter starts at 1, missing assets are inserted at their starting price
// and, while the history table is empty, every asset gets a week 1 point.
func (s *Store) Init(ctx context.Context, assets []Asset) error {
	return s.Update(ctx, func(tx *Tx) error {
		if _, err := tx.tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO app_state (key, value) VALUES (?, '1')`, currentWeekKey); err != nil {
			return fmt.Errorf("init week: %w", err)
		}

		for _, a := range assets {
			if err := a.Validate(); err != nil {
				return err
			}
			if _, err := tx.tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO prices (symbol, name, price) VALUES (?, ?, ?)`,
				a.Symbol, a.Name, a.Price); err != nil {
				return fmt.Errorf("init asset %s: %w", a.Symbol, err)
			}
		}

		var n int
		if err := tx.tx.QueryRowContext(ctx, `SELECT count(*) FROM price_history`).Scan(&n); err != nil {
			return fmt.Errorf("count history: %w", err)
		}
		if n > 0 {
			return nil
		}

		all, err := tx.ListAssets(ctx)
		if err != nil {
			return err
		}
		for _, a := range all {
			if _, err := tx.AppendPricePoint(ctx, PricePoint{Symbol: a.Symbol, Week: 1, Price: a.Price}); err != nil {
				return err
			}
		}
		return nil
	})
}

// Update runs fn inside one read-write transaction. Every mutation made by
// fn is committed together, or none is when fn returns an error.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	return s.run(ctx, true, fn)
}

// View runs fn inside one transaction so that related tables are read
// from the same database state. The transaction is always rolled back:
// anything fn writes is discarded.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	return s.run(ctx, false, fn)
}

func (s *Store) run(ctx context.Context, commit bool, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Tx{tx: sqlTx}); err != nil {
		return err
	}
	if !commit {
		return nil
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
