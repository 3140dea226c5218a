package rpcsurface

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mtreilly/mdkb/internal/linkgraph"
	"github.com/mtreilly/mdkb/internal/store"
)

type docsCreateParams struct {
	RepoID int64  `json:"repo_id"`
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

func handleDocsCreate(ctx context.Context, sf *Surface, raw json.RawMessage) (interface{}, error) {
	var p docsCreateParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	id, err := sf.Store.CreateDoc(ctx, p.RepoID, p.Slug, p.Title, p.Body)
	if err != nil {
		return nil, err
	}
	return map[string]int64{"doc_id": id}, nil
}

type docsUpdateParams struct {
	DocID   int64  `json:"doc_id"`
	Body    string `json:"body"`
	Message string `json:"message,omitempty"`
}

type docsUpdateResult struct {
	VersionID int64 `json:"version_id"`
	Skipped   bool  `json:"skipped,omitempty"`
}

// handleDocsUpdate implements docs_update's dedup invariant (spec.md §8
// invariant 4): a body identical to the doc's current version produces no
// new version row and returns skipped=true.
func handleDocsUpdate(ctx context.Context, sf *Surface, raw json.RawMessage) (interface{}, error) {
	var p docsUpdateParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	var result docsUpdateResult
	err := sf.Store.Tx(ctx, func(tx *sql.Tx) error {
		doc, err := docByIDTx(ctx, tx, p.DocID)
		if err != nil {
			return err
		}

		hash := store.VersionHash(p.DocID, p.Body)
		if doc.CurrentVersionID != nil {
			cur, err := store.VersionByID(ctx, tx, *doc.CurrentVersionID)
			if err == nil && cur.Hash == hash {
				result = docsUpdateResult{VersionID: *doc.CurrentVersionID, Skipped: true}
				return nil
			}
		}

		blobID, err := store.InsertBlob(ctx, tx, []byte(p.Body), "text/markdown")
		if err != nil {
			return err
		}
		versionID, err := store.InsertVersion(ctx, tx, p.DocID, blobID, hash, p.Message, nowUnix())
		if err != nil {
			return err
		}
		if err := store.SetDocVersion(ctx, tx, p.DocID, versionID, doc.Title, int64(len(p.Body)), int64(countLines(p.Body)), nowUnix()); err != nil {
			return err
		}
		if err := store.UpsertFTS(ctx, tx, p.DocID, doc.Title, p.Body, doc.Slug, doc.RepoID); err != nil {
			return err
		}
		links := linkgraph.Extract(p.Body)
		if err := store.ReplaceLinks(ctx, tx, doc.RepoID, p.DocID, links); err != nil {
			return err
		}
		result = docsUpdateResult{VersionID: versionID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type docsGetParams struct {
	DocID   int64 `json:"doc_id"`
	Content bool  `json:"content,omitempty"`
}

type docsGetResult struct {
	ID               int64  `json:"id"`
	RepoID           int64  `json:"repo_id"`
	Slug             string `json:"slug"`
	Title            string `json:"title"`
	CurrentVersionID *int64 `json:"current_version_id"`
	Body             string `json:"body,omitempty"`
}

func handleDocsGet(ctx context.Context, sf *Surface, raw json.RawMessage) (interface{}, error) {
	var p docsGetParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	doc, err := sf.Store.DocByID(ctx, p.DocID)
	if err != nil {
		return nil, err
	}
	result := docsGetResult{
		ID: doc.ID, RepoID: doc.RepoID, Slug: doc.Slug, Title: doc.Title,
		CurrentVersionID: doc.CurrentVersionID,
	}
	if p.Content {
		body, err := sf.Store.DocBody(ctx, p.DocID)
		if err != nil {
			return nil, err
		}
		result.Body = body
	}
	return result, nil
}

type docsDeleteParams struct {
	DocID int64 `json:"doc_id"`
}

func handleDocsDelete(ctx context.Context, sf *Surface, raw json.RawMessage) (interface{}, error) {
	var p docsDeleteParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	deleted, err := sf.Store.DeleteDoc(ctx, p.DocID)
	if err != nil {
		return nil, err
	}
	return map[string]bool{"deleted": deleted}, nil
}

func docByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*store.Doc, error) {
	var d store.Doc
	var cur sql.NullInt64
	err := tx.QueryRowContext(ctx, `
		SELECT id, repo_id, folder_id, slug, title, current_version_id, is_deleted, size_bytes, line_count, created_at, updated_at
		FROM doc WHERE id = ?`, id).
		Scan(&d.ID, &d.RepoID, &d.FolderID, &d.Slug, &d.Title, &cur, &d.IsDeleted, &d.SizeBytes, &d.LineCount, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if cur.Valid {
		d.CurrentVersionID = &cur.Int64
	}
	return &d, nil
}
