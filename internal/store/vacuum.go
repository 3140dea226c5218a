// vacuum.go implements permanent purge of soft-deleted docs, adapting the
// teacher's internal/vacuum (which purged path-addressed documents) to the
// content-addressed doc/blob/version model: a purge must also remove the
// version, asset, and link rows a doc leaves behind, since there is no
// ON DELETE CASCADE in the schema (spec.md §3's tables are plain FK
// references, not cascading ones).
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// PurgeResult reports what PurgeDeleted removed.
type PurgeResult struct {
	DocsPurged     int
	VersionsPurged int
	AssetsPurged   int
}

// PurgeDeleted permanently removes docs with is_deleted = 1 and
// updated_at <= cutoff (cutoff = 0 means "no age filter, purge all").
// When dryRun is true, it reports what would be purged without writing.
func (s *SQLiteStore) PurgeDeleted(ctx context.Context, cutoff int64, dryRun bool) (PurgeResult, error) {
	var result PurgeResult

	ids, err := s.deletedDocIDs(ctx, cutoff)
	if err != nil {
		return result, err
	}
	if len(ids) == 0 {
		return result, nil
	}
	if dryRun {
		result.DocsPurged = len(ids)
		return result, nil
	}

	err = s.Tx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			nv, na, err := purgeDocRows(ctx, tx, id)
			if err != nil {
				return fmt.Errorf("purge doc %d: %w", id, err)
			}
			result.VersionsPurged += nv
			result.AssetsPurged += na
		}
		result.DocsPurged = len(ids)
		return nil
	})
	return result, err
}

func (s *SQLiteStore) deletedDocIDs(ctx context.Context, cutoff int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM doc WHERE is_deleted = 1 AND (? = 0 OR updated_at <= ?)`, cutoff, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list deleted docs: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan deleted doc id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// purgeDocRows deletes one doc's asset, version, FTS, link, and doc rows in
// dependency order and returns the number of versions and assets removed.
func purgeDocRows(ctx context.Context, tx *sql.Tx, docID int64) (versions int, assets int, err error) {
	ares, err := tx.ExecContext(ctx, `DELETE FROM doc_asset WHERE doc_id = ?`, docID)
	if err != nil {
		return 0, 0, fmt.Errorf("delete assets: %w", err)
	}
	na, _ := ares.RowsAffected()

	res, err := tx.ExecContext(ctx, `DELETE FROM doc_version WHERE doc_id = ?`, docID)
	if err != nil {
		return 0, 0, fmt.Errorf("delete versions: %w", err)
	}
	n, _ := res.RowsAffected()

	if err := DeleteFTS(ctx, tx, docID); err != nil {
		return 0, 0, fmt.Errorf("delete fts row: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM link WHERE from_doc_id = ? OR to_doc_id = ?`, docID, docID); err != nil {
		return 0, 0, fmt.Errorf("delete links: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM doc WHERE id = ?`, docID); err != nil {
		return 0, 0, fmt.Errorf("delete doc: %w", err)
	}
	return int(n), int(na), nil
}
