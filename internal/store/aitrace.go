// aitrace.go persists AiTrace rows for ai_run (spec.md §4.8 step 8).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InsertAiTrace records one ai_run invocation and returns its trace id.
func (s *SQLiteStore) InsertAiTrace(ctx context.Context, repoID, docID int64, anchorID, provider, requestJSON, responseJSON string, inputTokens, outputTokens int64, costUSD float64) (int64, error) {
	return InsertAiTraceTx(ctx, s.db, repoID, docID, anchorID, provider, requestJSON, responseJSON, inputTokens, outputTokens, costUSD)
}

// InsertAiTraceTx is the transaction-scoped variant ai_run's dispatcher uses
// so the trace insert shares the same transaction as the rest of the call.
func InsertAiTraceTx(ctx context.Context, e execer, repoID, docID int64, anchorID, provider, requestJSON, responseJSON string, inputTokens, outputTokens int64, costUSD float64) (int64, error) {
	res, err := e.ExecContext(ctx, `
		INSERT INTO ai_trace (repo_id, doc_id, anchor_id, provider, request, response, input_tokens, output_tokens, cost_usd, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		repoID, docID, nullableString(anchorID), provider, requestJSON, responseJSON, inputTokens, outputTokens, costUSD, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("insert ai trace: %w", err)
	}
	return res.LastInsertId()
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
