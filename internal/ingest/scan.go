// scan.go implements scan-once and scan-one-file (spec.md §4.2), grounded on
// original_source/src-tauri/src/scan/mod.rs's scan_once/scan_one_file: count
// files scanned, docs changed, and errors; per-file errors are counted, not
// thrown (spec.md §7 "Per-file scan errors are counted, not thrown").
package ingest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mtreilly/mdkb/internal/ignore"
)

// ScanStats is the scan-once result contract (spec.md §4.2 step 4).
type ScanStats struct {
	FilesScanned int `json:"files_scanned"`
	DocsAdded    int `json:"docs_added"`
	Errors       int `json:"errors"`
}

// ScanOnce walks repoRoot, considering only .md files not excluded by the
// override matcher, and upserts each one.
func (s *Service) ScanOnce(ctx context.Context, repoRoot, repoName string, include, exclude []string) (ScanStats, error) {
	var stats ScanStats
	matcher := ignore.New(repoRoot, include, exclude)

	root, err := filepath.Abs(repoRoot)
	if err != nil {
		return stats, err
	}

	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			stats.Errors++
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			stats.Errors++
			return nil
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if matcher.Skip(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		if matcher.Skip(rel) {
			return nil
		}

		changed, fileErr := s.upsertFile(ctx, root, repoName, p, rel)
		stats.FilesScanned++
		if fileErr != nil {
			stats.Errors++
			return nil
		}
		if changed {
			stats.DocsAdded++
		}
		return nil
	})
	if walkErr != nil {
		return stats, walkErr
	}
	return stats, nil
}

// ScanOneFile upserts a single absolute file path against repoRoot, used by
// the watcher and by the scan_file RPC method.
func (s *Service) ScanOneFile(ctx context.Context, repoRoot, repoName, absPath string) (bool, error) {
	root, err := filepath.Abs(repoRoot)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return false, err
	}
	changed, err := s.upsertFile(ctx, root, repoName, absPath, filepath.ToSlash(rel))
	return changed, err
}

func (s *Service) upsertFile(ctx context.Context, repoRoot, repoName, absPath, relPath string) (bool, error) {
	content, err := os.ReadFile(absPath)
	if err != nil {
		return false, err
	}
	result, err := s.Upsert(ctx, repoRoot, repoName, relPath, string(content))
	if err != nil {
		return false, err
	}
	return result.Changed, nil
}
