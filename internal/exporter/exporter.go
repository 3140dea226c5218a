// Package exporter implements export_docs (spec.md §4.6): serializing docs
// to a JSON array, newline-delimited JSON, or a tar archive bundling
// docs.json, an optional versions.json, and per-doc markdown files so a
// body can be hydrated from markdown rather than JSON on import.
//
// Grounded on the teacher's internal/exporter (os.Root-based safe path
// writes, progress reporting) generalized from single-file/prefix
// filesystem export to the new doc-model's three wire formats, and on
// original_source/src-tauri/src/commands/export.rs's import surface (base64
// + tar::Archive + rusqlite::backup::Backup), whose bodies weren't captured
// in original_source but whose format choice is preserved here.
package exporter

import (
	"archive/tar"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mtreilly/mdkb/internal/store"
)

// Format enumerates the three accepted export shapes (spec.md §4.6).
type Format string

const (
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatTar    Format = "tar"
)

// Options filters which docs are exported and what accompanies them.
type Options struct {
	RepoID             *int64
	IncludeDeleted     bool
	IncludeVersions    bool
	IncludeAttachments bool
}

// DocRecord is one doc's wire representation — the docs.json/NDJSON shape,
// and the JSON sidecar embedded alongside markdown bodies in a tar archive.
type DocRecord struct {
	ID          int64         `json:"id"`
	RepoID      int64         `json:"repo_id"`
	Slug        string        `json:"slug"`
	Title       string        `json:"title"`
	Body        string        `json:"body,omitempty"`
	IsDeleted   bool          `json:"is_deleted"`
	CreatedAt   int64         `json:"created_at"`
	UpdatedAt   int64         `json:"updated_at"`
	Attachments []AssetRecord `json:"attachments,omitempty"`
}

// AssetRecord is one doc_asset's wire representation, embedded in a doc's
// docs.json entry and backed by a binary under attachments/<slug>-<id>/ in
// the tar format (spec.md §6's export tar layout).
type AssetRecord struct {
	ID        int64  `json:"id"`
	Filename  string `json:"filename"`
	Mime      string `json:"mime"`
	SizeBytes int64  `json:"size_bytes"`
}

// VersionRecord is one doc_version's wire representation, nested under its
// doc in versions.json.
type VersionRecord struct {
	ID        int64  `json:"id"`
	Hash      string `json:"hash"`
	Message   string `json:"message,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// DocVersions groups one doc's version history for versions.json
// (spec.md §6: `[{doc_id, versions:[...]}]`).
type DocVersions struct {
	DocID    int64           `json:"doc_id"`
	Versions []VersionRecord `json:"versions"`
}

// metaSummary is the tar archive's meta.json (spec.md §6: `{doc_count, format}`).
type metaSummary struct {
	DocCount int    `json:"doc_count"`
	Format   Format `json:"format"`
}

// Export writes docs matching opts to w in the requested format.
func Export(ctx context.Context, s *store.SQLiteStore, w io.Writer, format Format, opts Options) error {
	docs, err := s.ListDocs(ctx, opts.RepoID, opts.IncludeDeleted)
	if err != nil {
		return err
	}

	records := make([]DocRecord, 0, len(docs))
	bodies := make(map[int64]string, len(docs))
	for _, d := range docs {
		body, err := s.DocBody(ctx, d.ID)
		if err != nil {
			return fmt.Errorf("load body for doc %d: %w", d.ID, err)
		}
		bodies[d.ID] = body
		records = append(records, DocRecord{
			ID: d.ID, RepoID: d.RepoID, Slug: d.Slug, Title: d.Title,
			IsDeleted: d.IsDeleted, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
		})
	}

	switch format {
	case FormatNDJSON:
		return exportNDJSON(w, records, bodies)
	case FormatTar:
		var versions []DocVersions
		if opts.IncludeVersions {
			versions, err = loadVersions(ctx, s, docs)
			if err != nil {
				return err
			}
		}
		var assets map[int64][]store.DocAsset
		if opts.IncludeAttachments {
			assets, err = loadAssets(ctx, s, docs)
			if err != nil {
				return err
			}
			for i := range records {
				for _, a := range assets[records[i].ID] {
					records[i].Attachments = append(records[i].Attachments, AssetRecord{
						ID: a.ID, Filename: a.Filename, Mime: a.Mime, SizeBytes: a.SizeBytes,
					})
				}
			}
		}
		return exportTar(ctx, s, w, records, bodies, versions, assets)
	default:
		return exportJSON(w, records, bodies)
	}
}

func exportJSON(w io.Writer, records []DocRecord, bodies map[int64]string) error {
	out := make([]DocRecord, len(records))
	for i, r := range records {
		r.Body = bodies[r.ID]
		out[i] = r
	}
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

func exportNDJSON(w io.Writer, records []DocRecord, bodies map[int64]string) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		r.Body = bodies[r.ID]
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// exportTar writes docs.json (without body — hydrated from docs/*.md
// instead), an optional versions.json, docs/<sanitized-slug>-<id>.md per
// doc, attachments/<sanitized-slug>-<id>/<filename> per attachment when
// requested, and a meta.json summary (spec.md §4.6, §6's tar layout).
func exportTar(ctx context.Context, s *store.SQLiteStore, w io.Writer, records []DocRecord, bodies map[int64]string, versions []DocVersions, assets map[int64][]store.DocAsset) error {
	tw := tar.NewWriter(w)
	defer tw.Close()

	docsJSON, err := json.Marshal(records)
	if err != nil {
		return err
	}
	if err := writeTarEntry(tw, "docs.json", docsJSON); err != nil {
		return err
	}

	if versions != nil {
		versionsJSON, err := json.Marshal(versions)
		if err != nil {
			return err
		}
		if err := writeTarEntry(tw, "versions.json", versionsJSON); err != nil {
			return err
		}
	}

	for _, r := range records {
		name := fmt.Sprintf("docs/%s-%d.md", sanitizeSlug(r.Slug), r.ID)
		if err := writeTarEntry(tw, name, []byte(bodies[r.ID])); err != nil {
			return err
		}
	}

	for docID, docAssets := range assets {
		rec := recordByID(records, docID)
		if rec == nil {
			continue
		}
		dirName := fmt.Sprintf("%s-%d", sanitizeSlug(rec.Slug), docID)
		for _, a := range docAssets {
			_, content, err := store.AssetBlob(ctx, s.DB(), docID, a.ID)
			if err != nil {
				return fmt.Errorf("load attachment %d for doc %d: %w", a.ID, docID, err)
			}
			name := fmt.Sprintf("attachments/%s/%s", dirName, a.Filename)
			if err := writeTarEntry(tw, name, content); err != nil {
				return err
			}
		}
	}

	meta := metaSummary{DocCount: len(records), Format: FormatTar}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return writeTarEntry(tw, "meta.json", metaJSON)
}

func recordByID(records []DocRecord, id int64) *DocRecord {
	for i := range records {
		if records[i].ID == id {
			return &records[i]
		}
	}
	return nil
}

func writeTarEntry(tw *tar.Writer, name string, content []byte) error {
	hdr := &tar.Header{
		Name:    name,
		Size:    int64(len(content)),
		Mode:    0644,
		ModTime: time.Unix(0, 0),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := tw.Write(content)
	return err
}

func loadVersions(ctx context.Context, s *store.SQLiteStore, docs []store.Doc) ([]DocVersions, error) {
	var out []DocVersions
	for _, d := range docs {
		history, err := s.History(ctx, d.ID, 0)
		if err != nil {
			return nil, fmt.Errorf("history for doc %d: %w", d.ID, err)
		}
		dv := DocVersions{DocID: d.ID}
		for _, v := range history {
			dv.Versions = append(dv.Versions, VersionRecord{ID: v.ID, Hash: v.Hash, Message: v.Message, CreatedAt: v.CreatedAt})
		}
		out = append(out, dv)
	}
	return out, nil
}

func loadAssets(ctx context.Context, s *store.SQLiteStore, docs []store.Doc) (map[int64][]store.DocAsset, error) {
	out := make(map[int64][]store.DocAsset, len(docs))
	for _, d := range docs {
		assets, err := store.AssetsByDoc(ctx, s.DB(), d.ID)
		if err != nil {
			return nil, fmt.Errorf("assets for doc %d: %w", d.ID, err)
		}
		if len(assets) > 0 {
			out[d.ID] = assets
		}
	}
	return out, nil
}

// sanitizeSlug implements spec.md §6's filename sanitization: lowercase,
// non-alphanumeric/-/_ -> "-", empty -> "doc", truncated to 40 chars.
func sanitizeSlug(slug string) string {
	lower := strings.ToLower(slug)
	var b strings.Builder
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	out := b.String()
	if out == "" {
		out = "doc"
	}
	if len(out) > 40 {
		out = out[:40]
	}
	return out
}
