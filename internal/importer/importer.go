// Package importer implements import_docs (spec.md §4.6): the same three
// wire formats exporter.Export produces, merged into the store per doc
// using the (repo_id, slug) merge policy table, with dry-run and
// progress-tick support.
//
// Grounded on the teacher's internal/importer (os.Root-based safe
// traversal, progress ticks) generalized to the new doc model, and on
// spec.md §4.6's merge table directly (original_source's export.rs import
// surface only shows format imports, not merge-policy logic).
package importer

import (
	"archive/tar"
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/mtreilly/mdkb/internal/docdiff"
	"github.com/mtreilly/mdkb/internal/exporter"
	"github.com/mtreilly/mdkb/internal/linkgraph"
	"github.com/mtreilly/mdkb/internal/store"
)

// assetFile is one attachment pulled from a tar archive's attachments/
// directory, keyed to a doc by its export-time id (spec.md §4.6's "second
// pass" attachment hydration).
type assetFile struct {
	Filename string
	Content  []byte
}

// MergeStrategy is one of the two accepted merge policies (spec.md §4.6).
type MergeStrategy string

const (
	MergeKeep      MergeStrategy = "keep"
	MergeOverwrite MergeStrategy = "overwrite"
)

// ErrInvalidMergeStrategy mirrors spec.md §7's validation error for a
// merge_strategy other than keep/overwrite.
var ErrInvalidMergeStrategy = fmt.Errorf("merge_strategy must be keep or overwrite")

// ErrRepoTargetAmbiguous mirrors spec.md §7's "mutually exclusive" /
// "specify repo_id or new_repo_name" validation errors.
var ErrRepoTargetAmbiguous = fmt.Errorf("repo_id and new_repo_name are mutually exclusive")

// Options configures one import_docs call.
type Options struct {
	RepoID        *int64
	NewRepoName   string
	RepoPath      string // used only when NewRepoName creates the repo row
	MergeStrategy MergeStrategy
	DryRun        bool
	ProgressPath  string
}

// Result is the import_docs response (spec.md §4.6 and §8 invariant 8).
type Result struct {
	Status    string `json:"status"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Inserted  int    `json:"inserted"`
	Updated   int    `json:"updated"`
	Skipped   int    `json:"skipped"`

	// Diffs carries a unified-style diff for every doc the overwrite merge
	// strategy actually changed, so a caller can see what an import rewrote
	// without re-reading history (SPEC_FULL.md's grounding note for
	// github.com/sergi/go-diff: "import merge diagnostics").
	Diffs []MergeDiff `json:"diffs,omitempty"`
}

// MergeDiff is one doc's before/after diff produced during an overwrite
// merge.
type MergeDiff struct {
	Slug string `json:"slug"`
	Diff string `json:"diff"`
}

// progressTick is one line of the optional progress_path stream.
type progressTick struct {
	Status    string `json:"status"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Inserted  int    `json:"inserted"`
	Updated   int    `json:"updated"`
	Skipped   int    `json:"skipped"`
}

// Import reads r in the given format and merges its docs into the store.
func Import(ctx context.Context, s *store.SQLiteStore, r io.Reader, format exporter.Format, opts Options) (Result, error) {
	if opts.MergeStrategy != MergeKeep && opts.MergeStrategy != MergeOverwrite {
		return Result{}, ErrInvalidMergeStrategy
	}
	if (opts.RepoID != nil) == (opts.NewRepoName != "") {
		return Result{}, ErrRepoTargetAmbiguous
	}

	records, bodies, attachments, err := decode(r, format)
	if err != nil {
		return Result{}, err
	}

	var progress *progressWriter
	if opts.ProgressPath != "" {
		pw, err := newProgressWriter(opts.ProgressPath)
		if err != nil {
			return Result{}, err
		}
		defer pw.Close()
		progress = pw
	}

	result := Result{Total: len(records)}
	status := "processing"
	if opts.DryRun {
		status = "processing_dry_run"
	}

	for i, rec := range records {
		body := bodies[rec.ID]

		action, diff, err := mergeOne(ctx, s, opts, rec, body, attachments[rec.ID])
		if err != nil {
			return result, err
		}
		switch action {
		case actionInsert:
			result.Inserted++
		case actionUpdate:
			result.Updated++
			if diff != "" {
				result.Diffs = append(result.Diffs, MergeDiff{Slug: rec.Slug, Diff: diff})
			}
		case actionSkip:
			result.Skipped++
		}
		result.Processed = i + 1

		if progress != nil && (result.Processed%25 == 0 || result.Processed == result.Total) {
			progress.Write(progressTick{
				Status: status, Processed: result.Processed, Total: result.Total,
				Inserted: result.Inserted, Updated: result.Updated, Skipped: result.Skipped,
			})
		}
	}

	if opts.DryRun {
		result.Status = "dry_run"
	} else {
		result.Status = "imported"
	}
	if progress != nil {
		progress.Write(progressTick{
			Status: result.Status, Processed: result.Processed, Total: result.Total,
			Inserted: result.Inserted, Updated: result.Updated, Skipped: result.Skipped,
		})
	}
	return result, nil
}

type mergeAction int

const (
	actionSkip mergeAction = iota
	actionInsert
	actionUpdate
)

// mergeOne implements the per-doc merge table of spec.md §4.6. The returned
// diff is only non-empty for an overwrite update (import merge diagnostics,
// see Result.Diffs).
func mergeOne(ctx context.Context, s *store.SQLiteStore, opts Options, rec exporter.DocRecord, body string, assets []assetFile) (mergeAction, string, error) {
	now := time.Now().Unix()
	action := actionSkip
	var diff string

	err := s.Tx(ctx, func(tx *sql.Tx) error {
		repoID, err := resolveTargetRepo(ctx, tx, opts)
		if err != nil {
			return err
		}

		existing, err := store.DocBySlug(ctx, tx, repoID, rec.Slug)
		if err != nil && err != store.ErrNotFound {
			return err
		}

		if existing == nil {
			if opts.DryRun {
				action = actionInsert
				return nil
			}
			return insertImportedDoc(ctx, tx, repoID, rec, body, assets, now, &action)
		}

		if opts.MergeStrategy == MergeKeep {
			action = actionSkip
			return nil
		}

		// overwrite: compare hash against current version.
		hash := store.VersionHash(existing.ID, body)
		var oldBody string
		if existing.CurrentVersionID != nil {
			cur, err := store.VersionByID(ctx, tx, *existing.CurrentVersionID)
			if err == nil {
				if cur.Hash == hash {
					action = actionSkip
					return nil
				}
				oldBody, _ = store.BlobContent(ctx, tx, cur.BlobID)
			}
		}
		if opts.DryRun {
			action = actionUpdate
			diff = docdiff.Compute(oldBody, body)
			return nil
		}
		diff = docdiff.Compute(oldBody, body)
		return updateImportedDoc(ctx, tx, repoID, existing, rec, body, hash, assets, now, &action)
	})
	return action, diff, err
}

func resolveTargetRepo(ctx context.Context, tx *sql.Tx, opts Options) (int64, error) {
	if opts.RepoID != nil {
		return *opts.RepoID, nil
	}
	path := opts.RepoPath
	if path == "" {
		path = "imported:" + opts.NewRepoName
	}
	return store.EnsureRepo(ctx, tx, path, opts.NewRepoName)
}

func insertImportedDoc(ctx context.Context, tx *sql.Tx, repoID int64, rec exporter.DocRecord, body string, assets []assetFile, now int64, action *mergeAction) error {
	folderID, err := store.EnsureFolder(ctx, tx, repoID, parentOfSlug(rec.Slug))
	if err != nil {
		return err
	}
	docID, err := store.InsertProvisionalDoc(ctx, tx, repoID, folderID, rec.Slug, rec.Title, now)
	if err != nil {
		return err
	}
	if err := writeVersion(ctx, tx, repoID, docID, rec.Title, rec.Slug, body, now); err != nil {
		return err
	}
	if _, err := store.InsertProvenance(ctx, tx, "doc", docID, "import", `{}`); err != nil {
		return err
	}
	if err := attachAssets(ctx, tx, docID, assets, now); err != nil {
		return err
	}
	*action = actionInsert
	return nil
}

func updateImportedDoc(ctx context.Context, tx *sql.Tx, repoID int64, existing *store.Doc, rec exporter.DocRecord, body, hash string, assets []assetFile, now int64, action *mergeAction) error {
	if err := writeVersion(ctx, tx, repoID, existing.ID, rec.Title, rec.Slug, body, now); err != nil {
		return err
	}
	if _, err := store.InsertProvenance(ctx, tx, "doc", existing.ID, "import", `{}`); err != nil {
		return err
	}
	if err := attachAssets(ctx, tx, existing.ID, assets, now); err != nil {
		return err
	}
	_ = hash
	*action = actionUpdate
	return nil
}

// attachAssets writes each attachment's blob and doc_asset row for docID.
// Re-imports duplicate assets rather than deduping against existing rows:
// attachment identity is the filename, not a content hash, so an overwrite
// import simply grows the attachment list (mirrors how docs_update never
// deletes old DocVersion rows either).
func attachAssets(ctx context.Context, tx *sql.Tx, docID int64, assets []assetFile, now int64) error {
	for _, a := range assets {
		m := mimeForFilename(a.Filename)
		blobID, err := store.InsertBlob(ctx, tx, a.Content, m)
		if err != nil {
			return err
		}
		if _, err := store.InsertAsset(ctx, tx, docID, a.Filename, m, int64(len(a.Content)), blobID, now); err != nil {
			return err
		}
	}
	return nil
}

func mimeForFilename(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func writeVersion(ctx context.Context, tx *sql.Tx, repoID, docID int64, title, slug, body string, now int64) error {
	blobID, err := store.InsertBlob(ctx, tx, []byte(body), "text/markdown")
	if err != nil {
		return err
	}
	hash := store.VersionHash(docID, body)
	versionID, err := store.InsertVersion(ctx, tx, docID, blobID, hash, "import", now)
	if err != nil {
		return err
	}
	if err := store.SetDocVersion(ctx, tx, docID, versionID, title, int64(len(body)), int64(countLines(body)), now); err != nil {
		return err
	}
	if err := store.UpsertFTS(ctx, tx, docID, title, body, slug, repoID); err != nil {
		return err
	}
	links := linkgraph.Extract(body)
	return store.ReplaceLinks(ctx, tx, repoID, docID, links)
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := 1
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}

func parentOfSlug(slug string) string {
	idx := strings.LastIndex(slug, "__")
	if idx <= 0 {
		return ""
	}
	return slug[:idx]
}

// decode parses r into doc records, their bodies, and their attachments,
// dispatching on format.
func decode(r io.Reader, format exporter.Format) ([]exporter.DocRecord, map[int64]string, map[int64][]assetFile, error) {
	switch format {
	case exporter.FormatNDJSON:
		records, bodies, err := decodeNDJSON(r)
		return records, bodies, nil, err
	case exporter.FormatTar:
		return decodeTar(r)
	default:
		records, bodies, err := decodeJSON(r)
		return records, bodies, nil, err
	}
}

func decodeJSON(r io.Reader) ([]exporter.DocRecord, map[int64]string, error) {
	var records []exporter.DocRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, nil, err
	}
	bodies := make(map[int64]string, len(records))
	for _, rec := range records {
		bodies[rec.ID] = rec.Body
	}
	return records, bodies, nil
}

func decodeNDJSON(r io.Reader) ([]exporter.DocRecord, map[int64]string, error) {
	var records []exporter.DocRecord
	bodies := make(map[int64]string)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var rec exporter.DocRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, nil, err
		}
		records = append(records, rec)
		bodies[rec.ID] = rec.Body
	}
	return records, bodies, sc.Err()
}

// decodeTar hydrates missing bodies from docs/*.md (matched by the doc id
// suffix in the filename) and attachments from attachments/<slug>-<id>/*
// (matched by the same id-suffixed directory name), per spec.md §4.6's tar
// import second pass.
func decodeTar(r io.Reader) ([]exporter.DocRecord, map[int64]string, map[int64][]assetFile, error) {
	var records []exporter.DocRecord
	bodies := make(map[int64]string)
	mdFiles := make(map[string][]byte)
	attachmentDirs := make(map[string][]assetFile)

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, nil, err
		}
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, tr); err != nil {
			return nil, nil, nil, err
		}

		switch {
		case hdr.Name == "docs.json":
			if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
				return nil, nil, nil, fmt.Errorf("docs.json missing from archive: %w", err)
			}
		case strings.HasPrefix(hdr.Name, "docs/") && strings.HasSuffix(hdr.Name, ".md"):
			mdFiles[path.Base(hdr.Name)] = buf.Bytes()
		case strings.HasPrefix(hdr.Name, "attachments/"):
			rest := strings.TrimPrefix(hdr.Name, "attachments/")
			parts := strings.SplitN(rest, "/", 2)
			if len(parts) != 2 || parts[1] == "" {
				continue
			}
			dirKey, filename := parts[0], parts[1]
			attachmentDirs[dirKey] = append(attachmentDirs[dirKey], assetFile{
				Filename: filename, Content: buf.Bytes(),
			})
		}
	}
	if records == nil {
		return nil, nil, nil, fmt.Errorf("docs.json missing from archive")
	}

	for _, rec := range records {
		if rec.Body != "" {
			bodies[rec.ID] = rec.Body
			continue
		}
		matched := false
		for name, content := range mdFiles {
			if strings.HasSuffix(strings.TrimSuffix(name, ".md"), fmt.Sprintf("-%d", rec.ID)) {
				bodies[rec.ID] = string(content)
				matched = true
				break
			}
		}
		if !matched {
			return nil, nil, nil, fmt.Errorf("doc %s missing body in docs.json and docs/*.md", rec.Slug)
		}
	}

	attachments := make(map[int64][]assetFile, len(attachmentDirs))
	for dirKey, files := range attachmentDirs {
		docID, ok := matchAttachmentDir(records, dirKey)
		if !ok {
			return nil, nil, nil, fmt.Errorf("attachment for key %s not matched to doc", dirKey)
		}
		attachments[docID] = append(attachments[docID], files...)
	}
	return records, bodies, attachments, nil
}

// matchAttachmentDir finds the doc whose id suffixes dirKey (the same
// "<sanitized-slug>-<id>" naming exportTar uses).
func matchAttachmentDir(records []exporter.DocRecord, dirKey string) (int64, bool) {
	for _, rec := range records {
		if strings.HasSuffix(dirKey, fmt.Sprintf("-%d", rec.ID)) {
			return rec.ID, true
		}
	}
	return 0, false
}
