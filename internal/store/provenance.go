// provenance.go implements the provenance sidecar table and the anchor
// operations built on top of it (spec.md §3 "Anchor", §6 anchors_*).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// InsertProvenance records a sidecar row, e.g. {entity_type:'anchor'} or
// {entity_type:'doc', source:'import'} for import round-trip provenance
// (spec.md S6).
func InsertProvenance(ctx context.Context, tx *sql.Tx, entityType string, entityID int64, source, metaJSON string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO provenance (entity_type, entity_id, source, meta, created_at)
		VALUES (?, ?, ?, ?, ?)`, entityType, entityID, source, metaJSON, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("insert provenance: %w", err)
	}
	return res.LastInsertId()
}

// Anchor is a pinned editor position, stored as a provenance record with
// entity_type='anchor' (spec.md §3).
type Anchor struct {
	ID        int64  `json:"id"`
	DocID     int64  `json:"doc_id"`
	Line      int    `json:"line"`
	VersionID *int64 `json:"version_id,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// UpsertAnchor inserts an anchor provenance row and returns its id.
func (s *SQLiteStore) UpsertAnchor(ctx context.Context, docID int64, line int, versionID *int64) (int64, error) {
	meta := fmt.Sprintf(`{"doc_id":%d,"line":%d`, docID, line)
	if versionID != nil {
		meta += fmt.Sprintf(`,"version_id":%d`, *versionID)
	}
	meta += "}"

	var id int64
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		newID, err := InsertProvenance(ctx, tx, "anchor", docID, "anchor", meta)
		id = newID
		return err
	})
	return id, err
}

// ListAnchors returns anchor provenance rows for a doc.
func (s *SQLiteStore) ListAnchors(ctx context.Context, docID int64) ([]Anchor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, meta, created_at FROM provenance
		WHERE entity_type = 'anchor' AND entity_id = ? ORDER BY id`, docID)
	if err != nil {
		return nil, fmt.Errorf("list anchors: %w", err)
	}
	defer rows.Close()

	var out []Anchor
	for rows.Next() {
		var id int64
		var meta string
		var createdAt int64
		if err := rows.Scan(&id, &meta, &createdAt); err != nil {
			return nil, fmt.Errorf("scan anchor: %w", err)
		}
		a := Anchor{ID: id, DocID: docID, CreatedAt: createdAt}
		var parsed struct {
			Line      int    `json:"line"`
			VersionID *int64 `json:"version_id"`
		}
		if err := json.Unmarshal([]byte(meta), &parsed); err == nil {
			a.Line = parsed.Line
			a.VersionID = parsed.VersionID
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteAnchor removes an anchor provenance row by id.
func (s *SQLiteStore) DeleteAnchor(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM provenance WHERE id = ? AND entity_type = 'anchor'`, id)
	if err != nil {
		return false, fmt.Errorf("delete anchor: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ErrProvenanceNotFound mirrors ErrNotFound for anchor-specific call sites
// that want a distinct sentinel in logs.
var ErrProvenanceNotFound = errors.New("provenance not found")
