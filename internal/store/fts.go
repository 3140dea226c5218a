// fts.go implements the application-owned FTS5 mirror (spec.md §4.3 step 5)
// and the BM25 search query (spec.md §4.5). Search degradation (§4.5,
// invariant 8/S8) is handled by probing for bm25()/snippet() availability
// once per store and falling back to a plain MATCH query with rank=0.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// UpsertFTS refreshes the FTS row for a doc: delete-by-rowid then insert,
// per spec.md §4.3 step 5 ("FTS triggers... are explicitly disabled... the
// application owns FTS coherence").
func UpsertFTS(ctx context.Context, tx *sql.Tx, docID int64, title, body, slug string, repoID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM doc_fts WHERE rowid = ?`, docID); err != nil {
		return fmt.Errorf("delete fts row: %w", err)
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO doc_fts (rowid, title, body, slug, repo_id) VALUES (?, ?, ?, ?, ?)`,
		docID, title, body, slug, repoID)
	if err != nil {
		return fmt.Errorf("insert fts row: %w", err)
	}
	return nil
}

// DeleteFTS removes a doc's FTS row entirely (used when a doc is deleted).
func DeleteFTS(ctx context.Context, tx *sql.Tx, docID int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM doc_fts WHERE rowid = ?`, docID)
	return err
}

// SearchHit is one row of a search result, matching spec.md §4.5's output
// contract.
type SearchHit struct {
	ID          int64   `json:"id"`
	Slug        string  `json:"slug"`
	Rank        float64 `json:"rank"`
	TitleSnip   string  `json:"title_snippet"`
	BodySnip    string  `json:"body_snippet"`
}

// ftsAuxAvailable reports whether bm25()/snippet() can be evaluated by this
// SQLite build. Probed once lazily; modernc.org/sqlite compiles FTS5 in by
// default, so this normally succeeds, but the degradation path (spec.md
// S8) is kept live rather than assumed unreachable.
func (s *SQLiteStore) ftsAuxAvailable(ctx context.Context) bool {
	_, err := s.db.ExecContext(ctx, `SELECT bm25(doc_fts) FROM doc_fts WHERE doc_fts MATCH 'zzz_probe_zzz' LIMIT 0`)
	return err == nil
}

// Search runs the BM25 full-text query described in spec.md §4.5, using a
// single parameterized statement for the optional repo_id filter
// (SPEC_FULL.md §D.4 — never string-concatenated fragments).
func (s *SQLiteStore) Search(ctx context.Context, matchExpr string, repoID *int64, limit, offset int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 50
	}

	if !s.ftsAuxAvailable(ctx) {
		return s.searchDegraded(ctx, matchExpr, repoID, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.slug,
		       bm25(doc_fts, 1.2, 0.75) AS rank,
		       snippet(doc_fts, 0, '<b>', '</b>', '...', 8) AS title_snip,
		       snippet(doc_fts, 1, '<b>', '</b>', '...', 8) AS body_snip
		FROM doc_fts
		JOIN doc d ON d.id = doc_fts.rowid
		WHERE doc_fts MATCH ?
		  AND (?2 IS NULL OR d.repo_id = ?2)
		  AND d.is_deleted = 0
		ORDER BY rank ASC, d.updated_at DESC
		LIMIT ? OFFSET ?`,
		matchExpr, nullableID(repoID), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var out []SearchHit
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(&h.ID, &h.Slug, &h.Rank, &h.TitleSnip, &h.BodySnip); err != nil {
			return nil, fmt.Errorf("scan search hit: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// searchDegraded implements spec.md §4.5's degradation policy: rank=0,
// empty snippets, ordered by updated_at desc.
func (s *SQLiteStore) searchDegraded(ctx context.Context, matchExpr string, repoID *int64, limit, offset int) ([]SearchHit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.slug
		FROM doc_fts
		JOIN doc d ON d.id = doc_fts.rowid
		WHERE doc_fts MATCH ?
		  AND (?2 IS NULL OR d.repo_id = ?2)
		  AND d.is_deleted = 0
		ORDER BY d.updated_at DESC
		LIMIT ? OFFSET ?`,
		matchExpr, nullableID(repoID), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search (degraded): %w", err)
	}
	defer rows.Close()

	var out []SearchHit
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(&h.ID, &h.Slug); err != nil {
			return nil, fmt.Errorf("scan search hit: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// FTSStats reports doc/fts row counts for the fts_stats RPC method,
// surfacing drift between the doc table and its FTS mirror.
type FTSStats struct {
	DocCount   int64  `json:"doc_count"`
	FTSCount   int64  `json:"fts_count"`
	FTSMissing int64  `json:"fts_missing"`
	LastUpdate int64  `json:"last_update"`
}

func (s *SQLiteStore) FTSStats(ctx context.Context) (*FTSStats, error) {
	var st FTSStats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM doc WHERE is_deleted = 0`).Scan(&st.DocCount); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM doc_fts`).Scan(&st.FTSCount); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM doc d WHERE d.is_deleted = 0 AND NOT EXISTS (SELECT 1 FROM doc_fts f WHERE f.rowid = d.id)`,
	).Scan(&st.FTSMissing); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(updated_at), 0) FROM doc`).Scan(&st.LastUpdate); err != nil {
		return nil, err
	}
	return &st, nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

// joinTerms quotes each token for a simple MATCH expression, matching the
// teacher's own light input-sanitizing taste in internal/store/search.go
// without embracing full FTS5 query-syntax passthrough for untrusted input.
func joinTerms(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " ")
}
