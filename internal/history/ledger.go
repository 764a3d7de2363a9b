// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Ledger persists generated identifiers in a SQLite database so history
// survives between runs.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens or creates the ledger database at path, creating parent
// directories and the schema as needed.
func OpenLedger(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	_, err := l.db.Exec(`CREATE TABLE IF NOT EXISTS identifiers (
		rowid INTEGER PRIMARY KEY AUTOINCREMENT,
		value TEXT NOT NULL UNIQUE,
		producer TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Load returns all recorded identifiers in insertion order.
func (l *Ledger) Load(ctx context.Context) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT value FROM identifiers ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning ledger row: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Append records identifiers for a producer. Values already present are
// ignored, mirroring Tracker.Add's idempotence.
func (l *Ledger) Append(ctx context.Context, producer string, values []string) error {
	if len(values) == 0 {
		return nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO identifiers (value, producer, created_at) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, v := range values {
		if _, err := stmt.ExecContext(ctx, v, producer, now); err != nil {
			return fmt.Errorf("inserting identifier %q: %w", v, err)
		}
	}

	return tx.Commit()
}

// Clear deletes all recorded identifiers.
func (l *Ledger) Clear(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM identifiers`); err != nil {
		return fmt.Errorf("clearing ledger: %w", err)
	}
	return nil
}
