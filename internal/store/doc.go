// doc.go implements Doc row CRUD, the load-bearing table for ingestion,
// search, and graph queries alike.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DocBySlug looks up a doc by its (repo_id, slug) unique key within a
// transaction, used by upsert (spec.md §4.3 step 3) and link resolution
// (spec.md §4.4).
func DocBySlug(ctx context.Context, tx *sql.Tx, repoID int64, slug string) (*Doc, error) {
	var d Doc
	var cur sql.NullInt64
	err := tx.QueryRowContext(ctx, `
		SELECT id, repo_id, folder_id, slug, title, current_version_id, is_deleted, size_bytes, line_count, created_at, updated_at
		FROM doc WHERE repo_id = ? AND slug = ?`, repoID, slug).
		Scan(&d.ID, &d.RepoID, &d.FolderID, &d.Slug, &d.Title, &cur, &d.IsDeleted, &d.SizeBytes, &d.LineCount, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup doc: %w", err)
	}
	if cur.Valid {
		d.CurrentVersionID = &cur.Int64
	}
	return &d, nil
}

// InsertProvisionalDoc inserts a new Doc row with no current version yet
// (spec.md §4.3 step 3, "insert Doc with provisional metadata").
func InsertProvisionalDoc(ctx context.Context, tx *sql.Tx, repoID, folderID int64, slug, title string, now int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO doc (repo_id, folder_id, slug, title, current_version_id, is_deleted, size_bytes, line_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, NULL, 0, 0, 0, ?, ?)`, repoID, folderID, slug, title, now, now)
	if err != nil {
		return 0, fmt.Errorf("insert doc: %w", err)
	}
	return res.LastInsertId()
}

// SetDocVersion updates a doc's current_version_id and derived metadata
// after a new version is committed (spec.md §4.3 step 4).
func SetDocVersion(ctx context.Context, tx *sql.Tx, docID, versionID int64, title string, sizeBytes, lineCount, now int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE doc SET current_version_id = ?, title = ?, size_bytes = ?, line_count = ?, updated_at = ?
		WHERE id = ?`, versionID, title, sizeBytes, lineCount, now, docID)
	if err != nil {
		return fmt.Errorf("update doc version: %w", err)
	}
	return nil
}

// DocByID loads a doc row by its primary key.
func (s *SQLiteStore) DocByID(ctx context.Context, id int64) (*Doc, error) {
	var d Doc
	var cur sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, repo_id, folder_id, slug, title, current_version_id, is_deleted, size_bytes, line_count, created_at, updated_at
		FROM doc WHERE id = ?`, id).
		Scan(&d.ID, &d.RepoID, &d.FolderID, &d.Slug, &d.Title, &cur, &d.IsDeleted, &d.SizeBytes, &d.LineCount, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("doc by id: %w", err)
	}
	if cur.Valid {
		d.CurrentVersionID = &cur.Int64
	}
	return &d, nil
}

// DocBody loads the current body of a doc via its current version's blob.
func (s *SQLiteStore) DocBody(ctx context.Context, id int64) (string, error) {
	d, err := s.DocByID(ctx, id)
	if err != nil {
		return "", err
	}
	if d.CurrentVersionID == nil {
		return "", nil
	}
	var blobID int64
	err = s.db.QueryRowContext(ctx, `SELECT blob_id FROM doc_version WHERE id = ?`, *d.CurrentVersionID).Scan(&blobID)
	if err != nil {
		return "", fmt.Errorf("resolve current version blob: %w", err)
	}
	return BlobContent(ctx, s.db, blobID)
}

// CreateDoc is the RPC-facing docs_create operation: it is a thin synchronous
// insert (title + body as version 1), distinct from the scanner's upsert
// path which also maintains FTS/links. Callers that want the full upsert
// semantics should go through internal/ingest.
func (s *SQLiteStore) CreateDoc(ctx context.Context, repoID int64, slug, title, body string) (int64, error) {
	var docID int64
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		folderID, err := EnsureFolder(ctx, tx, repoID, parentOfSlug(slug))
		if err != nil {
			return err
		}
		now := time.Now().Unix()
		id, err := InsertProvisionalDoc(ctx, tx, repoID, folderID, slug, title, now)
		if err != nil {
			return err
		}
		blobID, err := InsertBlob(ctx, tx, []byte(body), "text/markdown")
		if err != nil {
			return err
		}
		hash := VersionHash(id, body)
		versionID, err := InsertVersion(ctx, tx, id, blobID, hash, "", now)
		if err != nil {
			return err
		}
		if err := SetDocVersion(ctx, tx, id, versionID, title, int64(len(body)), int64(lineCount(body)), now); err != nil {
			return err
		}
		if err := UpsertFTS(ctx, tx, id, title, body, slug, repoID); err != nil {
			return err
		}
		docID = id
		return nil
	})
	return docID, err
}

// ListDocs enumerates docs for a repo (or all repos when repoID is nil),
// optionally including soft-deleted rows, ordered by id — the enumeration
// export_docs walks (spec.md §4.6).
func (s *SQLiteStore) ListDocs(ctx context.Context, repoID *int64, includeDeleted bool) ([]Doc, error) {
	query := `
		SELECT id, repo_id, folder_id, slug, title, current_version_id, is_deleted, size_bytes, line_count, created_at, updated_at
		FROM doc WHERE (? IS NULL OR repo_id = ?) AND (? OR is_deleted = 0) ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, repoID, repoID, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("list docs: %w", err)
	}
	defer rows.Close()

	var out []Doc
	for rows.Next() {
		var d Doc
		var cur sql.NullInt64
		if err := rows.Scan(&d.ID, &d.RepoID, &d.FolderID, &d.Slug, &d.Title, &cur, &d.IsDeleted, &d.SizeBytes, &d.LineCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan doc: %w", err)
		}
		if cur.Valid {
			d.CurrentVersionID = &cur.Int64
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDoc soft-deletes a doc by id.
func (s *SQLiteStore) DeleteDoc(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE doc SET is_deleted = 1, updated_at = ? WHERE id = ?`, time.Now().Unix(), id)
	if err != nil {
		return false, fmt.Errorf("delete doc: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func lineCount(body string) int {
	if body == "" {
		return 0
	}
	n := 1
	for _, r := range body {
		if r == '\n' {
			n++
		}
	}
	return n
}

// parentOfSlug derives the folder path component of a slug for the direct
// docs_create path, where the caller supplies a slug rather than a
// filesystem path. Slugs use "__" as the path separator (spec.md §3).
func parentOfSlug(slug string) string {
	idx := -1
	for i := len(slug) - 1; i >= 1; i-- {
		if slug[i-1] == '_' && slug[i] == '_' {
			idx = i - 1
			break
		}
	}
	if idx <= 0 {
		return ""
	}
	return slug[:idx]
}
