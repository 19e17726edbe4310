package library

import (
	"database/sql"
	"strings"
	"time"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const itemColumns = "id, title, year, kind, path, monitored, missing_subtitles, created_at, updated_at"

func scanItem(row rowScanner) (*Item, error) {
	var (
		item      Item
		kind      string
		year      sql.NullInt64
		monitored sql.NullInt64
		missing   sql.NullString
		created   sql.NullString
		updated   sql.NullString
	)
	if err := row.Scan(&item.ID, &item.Title, &year, &kind, &item.Path, &monitored, &missing, &created, &updated); err != nil {
		return nil, err
	}
	item.Kind = Kind(kind)
	item.MissingSubtitles = missing.String
	if year.Valid {
		item.Year = int(year.Int64)
	}
	item.Monitored = monitored.Valid && monitored.Int64 != 0
	item.CreatedAt = parseTime(created.String)
	item.UpdatedAt = parseTime(updated.String)
	return &item, nil
}

func collectItems(rows *sql.Rows) ([]*Item, error) {
	defer rows.Close()
	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const subtitleColumns = "id, item_id, language, hearing_impaired, forced, provider, file_path, acquired_at"

func scanSubtitle(row rowScanner) (*SubtitleRecord, error) {
	var (
		rec      SubtitleRecord
		hi       sql.NullInt64
		forced   sql.NullInt64
		acquired sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.ItemID, &rec.Language, &hi, &forced, &rec.Provider, &rec.FilePath, &acquired); err != nil {
		return nil, err
	}
	rec.HearingImpaired = hi.Valid && hi.Int64 != 0
	rec.Forced = forced.Valid && forced.Int64 != 0
	rec.AcquiredAt = parseTime(acquired.String)
	return &rec, nil
}

const historyColumns = "id, item_id, action, provider, language, message, created_at"

func scanHistory(row rowScanner) (*HistoryEntry, error) {
	var (
		entry    HistoryEntry
		provider sql.NullString
		lang     sql.NullString
		message  sql.NullString
		created  sql.NullString
	)
	if err := row.Scan(&entry.ID, &entry.ItemID, &entry.Action, &provider, &lang, &message, &created); err != nil {
		return nil, err
	}
	entry.Provider = provider.String
	entry.Language = lang.String
	entry.Message = message.String
	entry.CreatedAt = parseTime(created.String)
	return &entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// parseTime reads the timestamp formats the store writes. Unparseable
// values come back as the zero time rather than failing the row.
func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	t, _ := time.Parse("2006-01-02 15:04:05", value)
	return t
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}
