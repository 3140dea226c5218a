// appsetting.go implements the AppSetting key/value table, grounded directly
// on original_source/src-tauri/src/commands/settings.rs's JSON-blob get/set
// ("ON CONFLICT(key) DO UPDATE").
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// AppSettingGet returns the raw JSON value stored for key, or ("", false) if
// unset.
func (s *SQLiteStore) AppSettingGet(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM app_setting WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("app setting get: %w", err)
	}
	return value, true, nil
}

// AppSettingSet upserts a raw JSON value for key.
func (s *SQLiteStore) AppSettingSet(ctx context.Context, key, valueJSON string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_setting (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, valueJSON, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("app setting set: %w", err)
	}
	return nil
}
