package exporter

import (
	"archive/tar"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mtreilly/mdkb/internal/store"
)

func openTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestExportJSON(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	repoID, err := s.AddRepo(ctx, "/repo", "repo")
	require.NoError(t, err)
	_, err = s.CreateDoc(ctx, repoID, "notes__hello", "Hello", "# Hello\nbody")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Export(ctx, s, &buf, FormatJSON, Options{}))

	var records []DocRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 1)
	require.Equal(t, "notes__hello", records[0].Slug)
	require.Equal(t, "# Hello\nbody", records[0].Body)
}

func TestExportTar_DocsVersionsAttachments(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	repoID, err := s.AddRepo(ctx, "/repo", "repo")
	require.NoError(t, err)
	docID, err := s.CreateDoc(ctx, repoID, "notes__hello", "Hello", "# Hello\nbody")
	require.NoError(t, err)

	err = s.Tx(ctx, func(tx *sql.Tx) error {
		blobID, err := store.InsertBlob(ctx, tx, []byte("binary-data"), "image/png")
		if err != nil {
			return err
		}
		_, err = store.InsertAsset(ctx, tx, docID, "diagram.png", "image/png", 11, blobID, 1000)
		return err
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Export(ctx, s, &buf, FormatTar, Options{
		IncludeVersions:    true,
		IncludeAttachments: true,
	}))

	entries := readTar(t, buf.Bytes())

	var records []DocRecord
	require.NoError(t, json.Unmarshal(entries["docs.json"], &records))
	require.Len(t, records, 1)
	require.Empty(t, records[0].Body, "tar docs.json omits body, hydrated from docs/*.md instead")
	require.Len(t, records[0].Attachments, 1)
	require.Equal(t, "diagram.png", records[0].Attachments[0].Filename)

	var versions []DocVersions
	require.NoError(t, json.Unmarshal(entries["versions.json"], &versions))
	require.Len(t, versions, 1)
	require.Equal(t, docID, versions[0].DocID)
	require.Len(t, versions[0].Versions, 1)

	var meta metaSummary
	require.NoError(t, json.Unmarshal(entries["meta.json"], &meta))
	require.Equal(t, 1, meta.DocCount)
	require.Equal(t, FormatTar, meta.Format)

	dirName := sanitizeSlug(records[0].Slug) + "-" + strconv.FormatInt(docID, 10)
	assetBody, ok := entries["attachments/"+dirName+"/diagram.png"]
	require.True(t, ok, "expected attachment entry under attachments/%s/", dirName)
	require.Equal(t, "binary-data", string(assetBody))

	mdBody, ok := entries["docs/"+dirName+".md"]
	require.True(t, ok)
	require.Equal(t, "# Hello\nbody", string(mdBody))
}

func TestExportTar_NoAttachmentsWhenNotRequested(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	repoID, err := s.AddRepo(ctx, "/repo", "repo")
	require.NoError(t, err)
	docID, err := s.CreateDoc(ctx, repoID, "notes__hello", "Hello", "body")
	require.NoError(t, err)
	err = s.Tx(ctx, func(tx *sql.Tx) error {
		blobID, err := store.InsertBlob(ctx, tx, []byte("x"), "image/png")
		if err != nil {
			return err
		}
		_, err = store.InsertAsset(ctx, tx, docID, "a.png", "image/png", 1, blobID, 1000)
		return err
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Export(ctx, s, &buf, FormatTar, Options{}))

	entries := readTar(t, buf.Bytes())
	for name := range entries {
		require.NotContains(t, name, "attachments/", "attachments must be opt-in via IncludeAttachments")
	}
}

func TestSanitizeSlug(t *testing.T) {
	require.Equal(t, "doc", sanitizeSlug(""))
	require.Equal(t, "hello-world", sanitizeSlug("Hello World!"))
	require.Len(t, sanitizeSlug("abcdefghijklmnopqrstuvwxyz0123456789abcdefghij"), 40)
}

func readTar(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	out := make(map[string][]byte)
	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		var buf bytes.Buffer
		_, err = io.Copy(&buf, tr)
		require.NoError(t, err)
		out[hdr.Name] = buf.Bytes()
	}
	return out
}
