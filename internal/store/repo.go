// repo.go implements repo row CRUD: add/list/info/remove and the
// insert-if-missing helper doc upsert relies on (spec.md §4.3 step 1).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// EnsureRepo inserts a repo row keyed by path if one does not already exist,
// and returns its id either way. Must be called inside the upsert
// transaction (spec.md §4.3 step 1).
func EnsureRepo(ctx context.Context, tx *sql.Tx, path, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM repo WHERE path = ?`, path).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup repo: %w", err)
	}

	now := time.Now().Unix()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO repo (name, path, settings, created_at, updated_at)
		VALUES (?, ?, '{}', ?, ?)`, name, path, now, now)
	if err != nil {
		return 0, fmt.Errorf("insert repo: %w", err)
	}
	return res.LastInsertId()
}

// AddRepo is the RPC-facing repos_add operation: it always inserts (the
// caller is explicitly registering a new root), returning ErrAlreadyExists
// if the path is already registered.
func (s *SQLiteStore) AddRepo(ctx context.Context, path, name string) (int64, error) {
	var id int64
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		var exists int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM repo WHERE path = ?`, path).Scan(&exists)
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lookup repo: %w", err)
		}
		now := time.Now().Unix()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO repo (name, path, settings, created_at, updated_at)
			VALUES (?, ?, '{}', ?, ?)`, name, path, now, now)
		if err != nil {
			return fmt.Errorf("insert repo: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// ListRepos returns all registered repos.
func (s *SQLiteStore) ListRepos(ctx context.Context) ([]Repo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, path, settings, created_at, updated_at FROM repo ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list repos: %w", err)
	}
	defer rows.Close()

	var out []Repo
	for rows.Next() {
		var r Repo
		if err := rows.Scan(&r.ID, &r.Name, &r.Path, &r.Settings, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan repo: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RepoInfo resolves a repo by numeric id (as a decimal string) or by exact
// name, matching the RPC contract's `id_or_name` parameter.
func (s *SQLiteStore) RepoInfo(ctx context.Context, idOrName string) (*Repo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, path, settings, created_at, updated_at FROM repo
		WHERE CAST(id AS TEXT) = ? OR name = ?`, idOrName, idOrName)

	var r Repo
	err := row.Scan(&r.ID, &r.Name, &r.Path, &r.Settings, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repo info: %w", err)
	}
	return &r, nil
}

// RemoveRepo deletes a repo row. It does not cascade-delete docs; callers
// that want a full teardown should vacuum separately. Kept deliberately
// shallow: removing a repo registration is distinct from destroying its
// document history.
func (s *SQLiteStore) RemoveRepo(ctx context.Context, idOrName string) (bool, error) {
	repo, err := s.RepoInfo(ctx, idOrName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM repo WHERE id = ?`, repo.ID)
	if err != nil {
		return false, fmt.Errorf("remove repo: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
