// scanjob.go tracks scan_repo invocations (spec.md §3 ScanJob, §6 scan_repo
// result's job_id).
package store

import (
	"context"
	"fmt"
	"time"
)

// StartScanJob inserts a running scan_job row.
func (s *SQLiteStore) StartScanJob(ctx context.Context, repoID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO scan_job (repo_id, status, stats, started_at) VALUES (?, 'running', '{}', ?)`,
		repoID, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("start scan job: %w", err)
	}
	return res.LastInsertId()
}

// FinishScanJob marks a scan_job complete with its final stats payload.
func (s *SQLiteStore) FinishScanJob(ctx context.Context, jobID int64, status, statsJSON string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE scan_job SET status = ?, stats = ?, finished_at = ? WHERE id = ?`,
		status, statsJSON, time.Now().Unix(), jobID)
	if err != nil {
		return fmt.Errorf("finish scan job: %w", err)
	}
	return nil
}
