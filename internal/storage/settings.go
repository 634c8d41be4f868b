package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Setting keys seeded by migrations.
const (
	SettingPixKey          = "pix_key"
	SettingPixName         = "pix_name"
	SettingTestDuration    = "test_duration_hours"
	SettingMonthlyPrice    = "monthly_plan_price"
	SettingQuarterlyPrice  = "quarterly_plan_price"
	SettingSemiannualPrice = "semiannual_plan_price"
	SettingAnnualPrice     = "annual_plan_price"
	SettingServerURL       = "iptv_server_url"
	SettingBusinessHours   = "business_hours"
)

// Settings loads the whole settings table into a map.
func (s *Storage) Settings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryxContext(ctx, `SELECT key_name, key_value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("settings scan: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("settings rows: %w", err)
	}
	return out, nil
}

// Setting returns one setting value.
func (s *Storage) Setting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value,
		`SELECT key_value FROM settings WHERE key_name = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("setting %s: %w", key, err)
	}
	return value, nil
}

// UpdateSetting upserts one setting value.
func (s *Storage) UpdateSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key_name, key_value) VALUES ($1, $2)
		ON CONFLICT (key_name) DO UPDATE SET key_value = EXCLUDED.key_value`,
		key, value)
	if err != nil {
		return fmt.Errorf("update setting %s: %w", key, err)
	}
	return nil
}
