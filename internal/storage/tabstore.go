package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vidyasagar/tabnav/internal/tabhistory"
)

// TabHistoryStore persists the tab history stack in SQLite. The sequence is
// stored one row per slot, the cursor in a single-row table whose presence
// marks that a stack has been saved.
type TabHistoryStore struct {
	db *DB
}

// NewTabHistoryStore creates a tab history store using the given database.
func NewTabHistoryStore(db *DB) *TabHistoryStore {
	return &TabHistoryStore{db: db}
}

// Load reads the saved stack. It reports false if nothing was saved yet.
func (s *TabHistoryStore) Load(ctx context.Context) (tabhistory.State, bool, error) {
	var st tabhistory.State

	err := s.db.conn.QueryRowContext(ctx, `SELECT cursor FROM tab_history_cursor WHERE id = 1`).Scan(&st.Cursor)
	if errors.Is(err, sql.ErrNoRows) {
		return tabhistory.State{Cursor: -1}, false, nil
	}
	if err != nil {
		return st, false, fmt.Errorf("reading cursor: %w", err)
	}

	rows, err := s.db.conn.QueryContext(ctx, `SELECT tab_id FROM tab_history ORDER BY position`)
	if err != nil {
		return st, false, fmt.Errorf("reading entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return st, false, fmt.Errorf("scanning entry: %w", err)
		}
		st.Entries = append(st.Entries, tabhistory.TabID(id))
	}
	if err := rows.Err(); err != nil {
		return st, false, fmt.Errorf("reading entries: %w", err)
	}

	return st, true, nil
}

// Save replaces the stored stack with st.
func (s *TabHistoryStore) Save(ctx context.Context, st tabhistory.State) error {
	return s.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tab_history`); err != nil {
			return fmt.Errorf("clearing entries: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO tab_history (position, tab_id) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for i, id := range st.Entries {
			if _, err := stmt.ExecContext(ctx, i, int64(id)); err != nil {
				return fmt.Errorf("inserting entry %d: %w", i, err)
			}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO tab_history_cursor (id, cursor, updated_at) VALUES (1, ?, datetime('now'))
			 ON CONFLICT(id) DO UPDATE SET cursor = excluded.cursor, updated_at = excluded.updated_at`,
			st.Cursor,
		)
		if err != nil {
			return fmt.Errorf("writing cursor: %w", err)
		}
		return nil
	})
}
