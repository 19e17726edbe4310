package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Add inserts a new library item. Monitored defaults to true.
func (s *Store) Add(ctx context.Context, title string, year int, kind Kind, path, missing string) (*Item, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("title is required")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path is required")
	}
	if _, ok := ParseKind(string(kind)); !ok {
		return nil, fmt.Errorf("unknown media kind %q", kind)
	}

	stamp := nowStamp()
	res, err := s.execRetry(
		ctx,
		`INSERT INTO library_items (
            title, year, kind, path, monitored, missing_subtitles, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		title,
		nullableInt(year),
		kind,
		path,
		1,
		nullableString(missing),
		stamp,
		stamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *Store) getItem(ctx context.Context, query string, args ...any) (*Item, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return item, err
}

// GetByID fetches a library item by identifier. A missing row reports
// nil, nil so callers can distinguish absence from storage failures.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	item, err := s.getItem(ctx, `SELECT `+itemColumns+` FROM library_items WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// GetByPath returns the first item whose stored container path matches.
func (s *Store) GetByPath(ctx context.Context, path string) (*Item, error) {
	item, err := s.getItem(ctx, `SELECT `+itemColumns+` FROM library_items WHERE path = ? ORDER BY id LIMIT 1`, path)
	if err != nil {
		return nil, fmt.Errorf("get item by path: %w", err)
	}
	return item, nil
}

// Update persists changes to an existing library item.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	if _, err := s.execRetry(
		ctx,
		`UPDATE library_items
         SET title = ?, year = ?, kind = ?, path = ?, monitored = ?,
             missing_subtitles = ?, updated_at = ?
         WHERE id = ?`,
		item.Title,
		nullableInt(item.Year),
		item.Kind,
		item.Path,
		boolToInt(item.Monitored),
		nullableString(item.MissingSubtitles),
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	); err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// UpdateMissing rewrites only the missing-languages state for an item.
func (s *Store) UpdateMissing(ctx context.Context, id int64, missing string) error {
	if _, err := s.execRetry(
		ctx,
		`UPDATE library_items SET missing_subtitles = ?, updated_at = ? WHERE id = ?`,
		nullableString(missing),
		nowStamp(),
		id,
	); err != nil {
		return fmt.Errorf("update missing state: %w", err)
	}
	return nil
}

// SetMonitored toggles the monitored flag for an item.
func (s *Store) SetMonitored(ctx context.Context, id int64, monitored bool) error {
	if _, err := s.execRetry(
		ctx,
		`UPDATE library_items SET monitored = ?, updated_at = ? WHERE id = ?`,
		boolToInt(monitored),
		nowStamp(),
		id,
	); err != nil {
		return fmt.Errorf("set monitored: %w", err)
	}
	return nil
}

// List returns library items, narrowed to the given kinds when any are
// provided, in creation order.
func (s *Store) List(ctx context.Context, kinds ...Kind) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM library_items`
	args := make([]any, 0, len(kinds))
	if len(kinds) > 0 {
		query += ` WHERE kind IN (` + makePlaceholders(len(kinds)) + `)`
		for _, kind := range kinds {
			args = append(args, kind)
		}
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list library items: %w", err)
	}
	return collectItems(rows)
}

// ListWanted returns monitored items whose missing-languages state is
// non-empty, in creation order.
func (s *Store) ListWanted(ctx context.Context) ([]*Item, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+itemColumns+` FROM library_items
         WHERE monitored = 1 AND COALESCE(missing_subtitles, '') != ''
         ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list wanted items: %w", err)
	}
	items, err := collectItems(rows)
	if err != nil {
		return nil, err
	}
	wanted := items[:0]
	for _, item := range items {
		if item.WantsSubtitles() {
			wanted = append(wanted, item)
		}
	}
	return wanted, nil
}

// Remove deletes an item and reports whether a row actually went away.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execRetry(ctx, `DELETE FROM library_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
