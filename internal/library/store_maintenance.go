package library

import (
	"context"
	"fmt"
)

// Stats returns a count of items grouped by kind.
func (s *Store) Stats(ctx context.Context) (map[Kind]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(1) FROM library_items GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("library stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Kind]int)
	for rows.Next() {
		var kind Kind
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		stats[kind] = count
	}
	return stats, rows.Err()
}

// Summarize aggregates library counts for diagnostic output.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	summary := Summary{}

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM library_items`)
	if err := row.Scan(&summary.Items); err != nil {
		return Summary{}, fmt.Errorf("count items: %w", err)
	}

	row = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM library_items WHERE monitored = 1`)
	if err := row.Scan(&summary.Monitored); err != nil {
		return Summary{}, fmt.Errorf("count monitored: %w", err)
	}

	wanted, err := s.ListWanted(ctx)
	if err != nil {
		return Summary{}, err
	}
	summary.Wanted = len(wanted)

	row = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM subtitles`)
	if err := row.Scan(&summary.Subtitles); err != nil {
		return Summary{}, fmt.Errorf("count subtitles: %w", err)
	}

	return summary, nil
}
