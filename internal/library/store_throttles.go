package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SaveThrottle upserts a provider ban window.
func (s *Store) SaveThrottle(ctx context.Context, provider string, until time.Time, reason string) error {
	if strings.TrimSpace(provider) == "" {
		return errors.New("provider name is required")
	}
	if _, err := s.execRetry(
		ctx,
		`INSERT INTO provider_throttles (provider, until, reason) VALUES (?, ?, ?)
         ON CONFLICT(provider) DO UPDATE SET until = excluded.until, reason = excluded.reason`,
		provider,
		until.UTC().Format(time.RFC3339Nano),
		nullableString(reason),
	); err != nil {
		return fmt.Errorf("save throttle: %w", err)
	}
	return nil
}

// ClearThrottle removes a provider's ban window.
func (s *Store) ClearThrottle(ctx context.Context, provider string) error {
	if _, err := s.execRetry(
		ctx,
		`DELETE FROM provider_throttles WHERE provider = ?`,
		provider,
	); err != nil {
		return fmt.Errorf("clear throttle: %w", err)
	}
	return nil
}

// Throttles returns all persisted ban windows ordered by provider name.
func (s *Store) Throttles(ctx context.Context) ([]ProviderThrottle, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT provider, until, reason FROM provider_throttles ORDER BY provider`,
	)
	if err != nil {
		return nil, fmt.Errorf("query throttles: %w", err)
	}
	defer rows.Close()

	var throttles []ProviderThrottle
	for rows.Next() {
		var (
			provider string
			untilRaw string
			reason   sql.NullString
		)
		if err := rows.Scan(&provider, &untilRaw, &reason); err != nil {
			return nil, err
		}
		throttles = append(throttles, ProviderThrottle{
			Provider: provider,
			Until:    parseTime(untilRaw),
			Reason:   reason.String,
		})
	}
	return throttles, rows.Err()
}

// PruneThrottles deletes ban windows that expired before the given instant.
func (s *Store) PruneThrottles(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.execRetry(
		ctx,
		`DELETE FROM provider_throttles WHERE until <= ?`,
		now.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("prune throttles: %w", err)
	}
	return res.RowsAffected()
}
