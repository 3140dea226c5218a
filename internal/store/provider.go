// provider.go implements the Provider descriptor table (spec.md §3), seeded
// at schema init with network providers disabled (privacy invariant, §4.1).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// queryRower is satisfied by both *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ProviderByName loads a provider row.
func (s *SQLiteStore) ProviderByName(ctx context.Context, name string) (*Provider, error) {
	return ProviderByNameTx(ctx, s.db, name)
}

// ProviderByNameTx loads a provider row using any queryRower (the ambient
// *sql.DB or a transaction already held by an in-flight Tx call) — callers
// already inside Store.Tx must pass their *sql.Tx here rather than calling
// the *SQLiteStore method, which would open a second connection outside the
// transaction's lock scope (spec.md §5 single-connection model).
func ProviderByNameTx(ctx context.Context, q queryRower, name string) (*Provider, error) {
	var p Provider
	var enabled int
	err := q.QueryRowContext(ctx, `
		SELECT name, kind, enabled, config, created_at, updated_at FROM provider WHERE name = ?`, name).
		Scan(&p.Name, &p.Kind, &enabled, &p.Config, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("provider by name: %w", err)
	}
	p.Enabled = enabled != 0
	return &p, nil
}

// SetProviderEnabled toggles a provider's enabled flag.
func (s *SQLiteStore) SetProviderEnabled(ctx context.Context, name string, enabled bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE provider SET enabled = ?, updated_at = ? WHERE name = ?`, enabled, time.Now().Unix(), name)
	if err != nil {
		return fmt.Errorf("set provider enabled: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkProviderKeySet flags that a secret key has been stored for a remote
// provider, mirroring original_source/src-tauri/src/secrets.rs's DB-fallback
// path (the flag, never the key material, is the only thing persisted here).
func (s *SQLiteStore) MarkProviderKeySet(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE provider SET config = json_set(config, '$.key_set', 1), updated_at = ? WHERE name = ?`,
		time.Now().Unix(), name)
	if err != nil {
		return fmt.Errorf("mark provider key set: %w", err)
	}
	return nil
}

// ProviderKeyFlagSet reports whether MarkProviderKeySet has been called for
// this provider (fallback existence check when no OS keyring is available).
func (s *SQLiteStore) ProviderKeyFlagSet(ctx context.Context, name string) (bool, error) {
	var flag int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(json_extract(config, '$.key_set'), 0) FROM provider WHERE name = ?`, name).Scan(&flag)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("provider key flag: %w", err)
	}
	return flag != 0, nil
}
