// link.go implements link row CRUD and the graph queries of spec.md §4.4:
// backlinks, neighbors (1-hop despite accepting depth, per SPEC_FULL.md
// §D.2), related (co-citation), and path (bounded recursive search).
//
// Grounded on original_source/src-tauri/src/graph/mod.rs (update_links_for_doc)
// and original_source/src-tauri/src/commands.rs (graph_backlinks/_neighbors/_related/_path),
// preferring commands.rs's single-parameterized-query idiom throughout.
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ReplaceLinks deletes all links for from_doc_id and re-inserts the given
// set, resolving each target slug to a doc id where possible (spec.md §4.3
// step 6, §4.4 "Link resolution"). Called inside the upsert transaction so
// link idempotence (spec.md §8 invariant 3) holds at commit boundaries.
func ReplaceLinks(ctx context.Context, tx *sql.Tx, repoID, fromDocID int64, links []ExtractedLink) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM link WHERE from_doc_id = ?`, fromDocID); err != nil {
		return fmt.Errorf("clear links: %w", err)
	}

	for _, l := range links {
		var toDocID sql.NullInt64
		var id int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM doc WHERE repo_id = ? AND slug = ?`, repoID, l.Slug).Scan(&id)
		if err == nil {
			toDocID = sql.NullInt64{Int64: id, Valid: true}
		} else if err != sql.ErrNoRows {
			return fmt.Errorf("resolve link target %s: %w", l.Slug, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO link (repo_id, from_doc_id, to_doc_id, to_slug, type, line_start, line_end)
			VALUES (?, ?, ?, ?, 'wiki', ?, ?)`,
			repoID, fromDocID, toDocID, l.Slug, l.LineStart, l.LineEnd)
		if err != nil {
			return fmt.Errorf("insert link: %w", err)
		}
	}
	return nil
}

// ExtractedLink is the extractor's output shape (internal/linkgraph), kept
// here too so ReplaceLinks has no import-cycle back onto the extractor.
type ExtractedLink struct {
	Slug      string
	LineStart int
	LineEnd   int
}

// GraphDoc is the slim doc projection returned by graph queries (spec.md §6).
type GraphDoc struct {
	ID    int64  `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// Backlinks returns docs with any link whose to_doc_id = docID, ordered by
// the target's updated_at desc (spec.md §4.4).
func (s *SQLiteStore) Backlinks(ctx context.Context, docID int64) ([]GraphDoc, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT d.id, d.slug, d.title
		FROM link l
		JOIN doc d ON d.id = l.from_doc_id
		WHERE l.to_doc_id = ? AND d.is_deleted = 0
		ORDER BY d.updated_at DESC`, docID)
	if err != nil {
		return nil, fmt.Errorf("backlinks: %w", err)
	}
	defer rows.Close()
	return scanGraphDocs(rows)
}

// Neighbors returns the union of co-citing docs and direct (resolved)
// targets of docID. depth is accepted but ignored (SPEC_FULL.md §D.2).
func (s *SQLiteStore) Neighbors(ctx context.Context, docID int64, depth int) ([]GraphDoc, error) {
	_ = depth // accepted-but-ignored: neighbors is always 1-hop (spec.md §9 OQ2)
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT d.id, d.slug, d.title FROM doc d
		WHERE d.is_deleted = 0 AND d.id IN (
			SELECT l2.from_doc_id FROM link l1
			JOIN link l2 ON l2.to_doc_id = l1.to_doc_id AND l2.from_doc_id != l1.from_doc_id
			WHERE l1.from_doc_id = ? AND l1.to_doc_id IS NOT NULL
			UNION
			SELECT l.to_doc_id FROM link l WHERE l.from_doc_id = ? AND l.to_doc_id IS NOT NULL
		)`, docID, docID)
	if err != nil {
		return nil, fmt.Errorf("neighbors: %w", err)
	}
	defer rows.Close()
	return scanGraphDocs(rows)
}

// RelatedDoc is a co-citation result with its co-citation score.
type RelatedDoc struct {
	GraphDoc
	Score int64 `json:"score"`
}

// Related returns the co-citation set aggregated by COUNT(*), top 20,
// ordered by score desc then updated_at desc (spec.md §4.4).
func (s *SQLiteStore) Related(ctx context.Context, docID int64) ([]RelatedDoc, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.slug, d.title, COUNT(*) AS score
		FROM link l1
		JOIN link l2 ON l2.to_doc_id = l1.to_doc_id AND l2.from_doc_id != l1.from_doc_id
		JOIN doc d ON d.id = l2.from_doc_id
		WHERE l1.from_doc_id = ? AND l1.to_doc_id IS NOT NULL AND d.is_deleted = 0
		GROUP BY d.id
		ORDER BY score DESC, d.updated_at DESC
		LIMIT 20`, docID)
	if err != nil {
		return nil, fmt.Errorf("related: %w", err)
	}
	defer rows.Close()

	var out []RelatedDoc
	for rows.Next() {
		var r RelatedDoc
		if err := rows.Scan(&r.ID, &r.Slug, &r.Title, &r.Score); err != nil {
			return nil, fmt.Errorf("scan related: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Path finds the first bounded (max depth 12, no revisits) path of resolved
// edges from start to end, via a recursive CTE tracking the visited set as a
// comma-delimited string (modernc.org/sqlite ships without the json1
// extension's json_each, so the path/visited tracking avoided here is
// expressed with simple string containment instead of JSON arrays — see
// DESIGN.md for the json1-availability note).
func (s *SQLiteStore) Path(ctx context.Context, start, end int64) ([]int64, error) {
	if start == end {
		return []int64{start}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		WITH RECURSIVE walk(cur, path, depth) AS (
			SELECT ?, CAST(? AS TEXT), 0
			UNION ALL
			SELECT l.to_doc_id, walk.path || ',' || l.to_doc_id, walk.depth + 1
			FROM link l
			JOIN walk ON l.from_doc_id = walk.cur
			WHERE l.to_doc_id IS NOT NULL
			  AND walk.depth < 12
			  AND (',' || walk.path || ',') NOT LIKE ('%,' || l.to_doc_id || ',%')
		)
		SELECT path FROM walk WHERE cur = ? ORDER BY depth ASC LIMIT 1`,
		start, start, end)
	if err != nil {
		return nil, fmt.Errorf("path query: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var pathStr string
	if err := rows.Scan(&pathStr); err != nil {
		return nil, fmt.Errorf("scan path: %w", err)
	}
	return parseIDList(pathStr), nil
}

func parseIDList(s string) []int64 {
	var out []int64
	var cur int64
	has := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			cur = cur*10 + int64(r-'0')
			has = true
		case r == ',':
			if has {
				out = append(out, cur)
			}
			cur = 0
			has = false
		}
	}
	if has {
		out = append(out, cur)
	}
	return out
}

func scanGraphDocs(rows *sql.Rows) ([]GraphDoc, error) {
	var out []GraphDoc
	for rows.Next() {
		var d GraphDoc
		if err := rows.Scan(&d.ID, &d.Slug, &d.Title); err != nil {
			return nil, fmt.Errorf("scan graph doc: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
