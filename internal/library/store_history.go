package library

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const defaultHistoryLimit = 50

// AppendHistory writes one audit row for an item.
func (s *Store) AppendHistory(ctx context.Context, entry *HistoryEntry) error {
	if entry == nil {
		return errors.New("history entry is nil")
	}
	if entry.Action == "" {
		return errors.New("history entry requires an action")
	}

	created := entry.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	if _, err := s.execRetry(
		ctx,
		`INSERT INTO history (
            item_id, action, provider, language, message, created_at
        ) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ItemID,
		entry.Action,
		nullableString(entry.Provider),
		nullableString(entry.Language),
		nullableString(entry.Message),
		created.Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (s *Store) queryHistory(ctx context.Context, query string, args ...any) ([]*HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*HistoryEntry
	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// History returns the most recent audit rows, newest first. A non-positive
// limit falls back to the default page size.
func (s *Store) History(ctx context.Context, limit int) ([]*HistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	entries, err := s.queryHistory(
		ctx,
		`SELECT `+historyColumns+` FROM history ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return entries, nil
}

// HistoryForItem returns the most recent audit rows for one item, newest first.
func (s *Store) HistoryForItem(ctx context.Context, itemID int64, limit int) ([]*HistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	entries, err := s.queryHistory(
		ctx,
		`SELECT `+historyColumns+` FROM history WHERE item_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		itemID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query item history: %w", err)
	}
	return entries, nil
}
