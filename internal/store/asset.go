// asset.go implements DocAsset CRUD: the binary attachments a doc can carry
// (images, etc., spec.md §3), stored content-addressed in doc_blob like any
// other version body.
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// InsertAsset inserts a DocAsset row referencing an already-written blob and
// returns its id.
func InsertAsset(ctx context.Context, tx *sql.Tx, docID int64, filename, mime string, sizeBytes, blobID, now int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO doc_asset (doc_id, filename, mime, size_bytes, blob_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`, docID, filename, mime, sizeBytes, blobID, now)
	if err != nil {
		return 0, fmt.Errorf("insert asset: %w", err)
	}
	return res.LastInsertId()
}

// AssetsByDoc lists a doc's attachments, oldest first.
func AssetsByDoc(ctx context.Context, q interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}, docID int64) ([]DocAsset, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, doc_id, filename, mime, size_bytes, blob_id, created_at
		FROM doc_asset WHERE doc_id = ? ORDER BY id`, docID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var out []DocAsset
	for rows.Next() {
		var a DocAsset
		if err := rows.Scan(&a.ID, &a.DocID, &a.Filename, &a.Mime, &a.SizeBytes, &a.BlobID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AssetBlob loads one attachment's binary content by asset id, scoped to docID.
func AssetBlob(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, docID, assetID int64) (DocAsset, []byte, error) {
	var a DocAsset
	var content []byte
	err := q.QueryRowContext(ctx, `
		SELECT a.id, a.doc_id, a.filename, a.mime, a.size_bytes, a.blob_id, a.created_at, b.content
		FROM doc_asset a JOIN doc_blob b ON b.id = a.blob_id
		WHERE a.id = ? AND a.doc_id = ?`, assetID, docID).
		Scan(&a.ID, &a.DocID, &a.Filename, &a.Mime, &a.SizeBytes, &a.BlobID, &a.CreatedAt, &content)
	if err != nil {
		return DocAsset{}, nil, fmt.Errorf("load asset: %w", err)
	}
	return a, content, nil
}
