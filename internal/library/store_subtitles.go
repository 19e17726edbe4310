package library

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// InsertSubtitle records an acquired subtitle for an item.
func (s *Store) InsertSubtitle(ctx context.Context, rec *SubtitleRecord) (*SubtitleRecord, error) {
	if rec == nil {
		return nil, errors.New("subtitle record is nil")
	}
	if rec.ItemID == 0 {
		return nil, errors.New("subtitle record requires an item id")
	}
	if rec.Language == "" {
		return nil, errors.New("subtitle record requires a language")
	}

	acquired := rec.AcquiredAt
	if acquired.IsZero() {
		acquired = time.Now().UTC()
	}

	res, err := s.execRetry(
		ctx,
		`INSERT INTO subtitles (
            item_id, language, hearing_impaired, forced, provider, file_path, acquired_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ItemID,
		rec.Language,
		boolToInt(rec.HearingImpaired),
		boolToInt(rec.Forced),
		rec.Provider,
		rec.FilePath,
		acquired.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert subtitle: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	stored := *rec
	stored.ID = id
	stored.AcquiredAt = acquired
	return &stored, nil
}

// SubtitlesForItem returns the subtitles recorded for an item, oldest first.
func (s *Store) SubtitlesForItem(ctx context.Context, itemID int64) ([]*SubtitleRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+subtitleColumns+` FROM subtitles WHERE item_id = ? ORDER BY acquired_at, id`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("query subtitles: %w", err)
	}
	defer rows.Close()

	var records []*SubtitleRecord
	for rows.Next() {
		rec, err := scanSubtitle(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
