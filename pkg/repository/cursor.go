package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
)

// cursorSQL represents a cursor row for SQL operations
type cursorSQL struct {
	Feed        string    `db:"feed"`
	LastEntryID string    `db:"last_entry_id"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// GetCursor returns the id of the last delivered entry for the feed.
// ok is false for a feed never delivered from.
func (s *Store) GetCursor(ctx context.Context, feed string) (id string, ok bool, err error) {
	var row cursorSQL
	err = s.db.GetContext(ctx, &row, "SELECT * FROM cursors WHERE feed = ?", feed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get cursor for %s: %w", feed, err)
	}
	return row.LastEntryID, true, nil
}

// SetCursor durably records the last delivered entry id for the feed.
// The write is retried on SQLite lock contention, any other failure is
// reported to the caller. A successful return means the row reached the
// database, the caller treats it as irrevocable.
func (s *Store) SetCursor(ctx context.Context, feed, id string) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		query := `
			INSERT INTO cursors (feed, last_entry_id, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(feed) DO UPDATE SET
				last_entry_id = excluded.last_entry_id,
				updated_at = excluded.updated_at
		`
		if _, err := s.db.ExecContext(ctx, query, feed, id); err != nil {
			if isLockError(err) {
				return err // retry
			}
			return &criticalError{err: fmt.Errorf("set cursor for %s: %w", feed, err)}
		}
		return nil
	})
}

// Cursors returns all persisted cursors keyed by feed name
func (s *Store) Cursors(ctx context.Context) (map[string]string, error) {
	var rows []cursorSQL
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM cursors ORDER BY feed"); err != nil {
		return nil, fmt.Errorf("get cursors: %w", err)
	}

	res := make(map[string]string, len(rows))
	for _, row := range rows {
		res[row.Feed] = row.LastEntryID
	}
	return res, nil
}
