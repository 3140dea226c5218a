// folder.go implements the materialized-path folder tree.
//
// EnsureFolder is the fix for the original source's docs_create bug (spec.md
// §9 OQ3 / SPEC_FULL.md §D.3): original_source/src-tauri/src/commands.rs reads
// `tx.last_insert_rowid()` straight after the folder INSERT and uses it as
// the doc's folder_id, which silently returns a stale/unrelated id whenever
// the folder already existed (no INSERT occurred). EnsureFolder always
// returns the folder's real, stable id regardless of whether it inserted.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// EnsureFolder inserts a folder row keyed by (repo_id, path) if missing, and
// returns its stable id either way. Parent folders are created recursively
// so that every ancestor directory has a row.
func EnsureFolder(ctx context.Context, tx *sql.Tx, repoID int64, folderPath string) (int64, error) {
	folderPath = strings.Trim(folderPath, "/")
	if folderPath == "" {
		return ensureFolderRow(ctx, tx, repoID, nil, "", "")
	}

	var parentID *int64
	segments := strings.Split(folderPath, "/")
	built := ""
	for _, seg := range segments {
		if built == "" {
			built = seg
		} else {
			built = built + "/" + seg
		}
		id, err := ensureFolderRow(ctx, tx, repoID, parentID, built, slugifyFolder(seg))
		if err != nil {
			return 0, err
		}
		pid := id
		parentID = &pid
	}
	return *parentID, nil
}

func ensureFolderRow(ctx context.Context, tx *sql.Tx, repoID int64, parentID *int64, path, slug string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM folder WHERE repo_id = ? AND path = ?`, repoID, path).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup folder: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO folder (repo_id, parent_id, path, slug) VALUES (?, ?, ?, ?)`,
		repoID, parentID, path, slug)
	if err != nil {
		return 0, fmt.Errorf("insert folder: %w", err)
	}
	return res.LastInsertId()
}

// slugifyFolder derives a folder's slug component from a single path
// segment, grounded on original_source/src-tauri/src/scan/mod.rs's
// folder_slug (spaces -> '-', rest left intact per component).
func slugifyFolder(segment string) string {
	return strings.ReplaceAll(segment, " ", "-")
}
