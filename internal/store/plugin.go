// plugin.go implements the Plugin descriptor table — the DB-backed half of
// the capability gate in spec.md §4.7 step 1 and 3. The in-memory process
// registry (child handles, restart counters) lives in internal/plugin,
// which is a distinct concern from this row's enabled/permissions state.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PluginByName loads a plugin descriptor.
func (s *SQLiteStore) PluginByName(ctx context.Context, name string) (*Plugin, error) {
	var p Plugin
	var enabled int
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, version, kind, manifest, permissions, enabled, created_at, updated_at
		FROM plugin WHERE name = ?`, name).
		Scan(&p.ID, &p.Name, &p.Version, &p.Kind, &p.Manifest, &p.Permissions, &enabled, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("plugin by name: %w", err)
	}
	p.Enabled = enabled != 0
	return &p, nil
}

// RegisterPlugin inserts or updates a plugin descriptor (manifest/permissions
// registration step, prior to spawn).
func (s *SQLiteStore) RegisterPlugin(ctx context.Context, name, version, kind, manifest, permissions string, enabled bool) error {
	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO plugin (name, version, kind, manifest, permissions, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			version = excluded.version, kind = excluded.kind, manifest = excluded.manifest,
			permissions = excluded.permissions, enabled = excluded.enabled, updated_at = excluded.updated_at`,
		name, version, kind, manifest, permissions, enabled, now, now)
	if err != nil {
		return fmt.Errorf("register plugin: %w", err)
	}
	return nil
}

// ListPlugins returns all registered plugin descriptors.
func (s *SQLiteStore) ListPlugins(ctx context.Context) ([]Plugin, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, version, kind, manifest, permissions, enabled, created_at, updated_at FROM plugin ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list plugins: %w", err)
	}
	defer rows.Close()

	var out []Plugin
	for rows.Next() {
		var p Plugin
		var enabled int
		if err := rows.Scan(&p.ID, &p.Name, &p.Version, &p.Kind, &p.Manifest, &p.Permissions, &enabled, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan plugin: %w", err)
		}
		p.Enabled = enabled != 0
		out = append(out, p)
	}
	return out, rows.Err()
}
