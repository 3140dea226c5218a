// blob.go implements the immutable content-addressed blob chain: DocBlob and
// DocVersion. Dedup is by version hash (spec.md §3), not by blob table, so
// blob inserts are unconditional — duplicate blob rows are tolerated.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strconv"
)

// VersionHash computes H(doc_id || ":" || H(body)) per spec.md §3, using
// SHA-256 for H (crypto/sha256 is stdlib, applied here rather than pulling in
// a hashing library: the example pack's golang.org/x/crypto dependency
// targets bcrypt/ssh concerns, not generic content hashing, so stdlib is the
// correct fit — see DESIGN.md).
func VersionHash(docID int64, body string) string {
	bodyHash := sha256.Sum256([]byte(body))
	full := strconv.FormatInt(docID, 10) + ":" + hex.EncodeToString(bodyHash[:])
	outer := sha256.Sum256([]byte(full))
	return hex.EncodeToString(outer[:])
}

// InsertBlob inserts an immutable content blob and returns its id.
func InsertBlob(ctx context.Context, tx *sql.Tx, content []byte, mime string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO doc_blob (content, size_bytes, encoding, mime) VALUES (?, ?, 'utf-8', ?)`,
		content, len(content), mime)
	if err != nil {
		return 0, fmt.Errorf("insert blob: %w", err)
	}
	return res.LastInsertId()
}

// InsertVersion inserts a new DocVersion row and returns its id.
func InsertVersion(ctx context.Context, tx *sql.Tx, docID, blobID int64, hash, message string, createdAt int64) (int64, error) {
	var msg any
	if message != "" {
		msg = message
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO doc_version (doc_id, blob_id, hash, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		docID, blobID, hash, msg, createdAt)
	if err != nil {
		return 0, fmt.Errorf("insert version: %w", err)
	}
	return res.LastInsertId()
}

// VersionByID loads a version row (used for dedup-check and history).
func VersionByID(ctx context.Context, tx *sql.Tx, id int64) (*DocVersion, error) {
	var v DocVersion
	var msg sql.NullString
	err := tx.QueryRowContext(ctx, `
		SELECT id, doc_id, blob_id, hash, message, created_at FROM doc_version WHERE id = ?`, id).
		Scan(&v.ID, &v.DocID, &v.BlobID, &v.Hash, &msg, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	v.Message = msg.String
	return &v, nil
}

// BlobContent loads a blob's body as a string.
func BlobContent(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, blobID int64) (string, error) {
	var content []byte
	err := q.QueryRowContext(ctx, `SELECT content FROM doc_blob WHERE id = ?`, blobID).Scan(&content)
	if err != nil {
		return "", fmt.Errorf("load blob: %w", err)
	}
	return string(content), nil
}

// History returns the version list for a doc, most recent first, bounded by
// limit (0 = unbounded).
func (s *SQLiteStore) History(ctx context.Context, docID int64, limit int) ([]DocVersion, error) {
	q := `SELECT id, doc_id, blob_id, hash, message, created_at FROM doc_version WHERE doc_id = ? ORDER BY id DESC`
	args := []any{docID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	var out []DocVersion
	for rows.Next() {
		var v DocVersion
		var msg sql.NullString
		if err := rows.Scan(&v.ID, &v.DocID, &v.BlobID, &v.Hash, &msg, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		v.Message = msg.String
		out = append(out, v)
	}
	return out, rows.Err()
}
