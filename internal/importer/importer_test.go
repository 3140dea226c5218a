package importer

import (
	"bytes"
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mtreilly/mdkb/internal/exporter"
	"github.com/mtreilly/mdkb/internal/store"
)

func openTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestImport_JSON_Insert(t *testing.T) {
	src := openTestStore(t)
	ctx := context.Background()
	repoID, err := src.AddRepo(ctx, "/repo", "repo")
	require.NoError(t, err)
	_, err = src.CreateDoc(ctx, repoID, "notes__hello", "Hello", "body")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(ctx, src, &buf, exporter.FormatJSON, exporter.Options{}))

	dst := openTestStore(t)
	dstRepoID, err := dst.AddRepo(ctx, "/dst", "dst")
	require.NoError(t, err)

	result, err := Import(ctx, dst, bytes.NewReader(buf.Bytes()), exporter.FormatJSON, Options{
		RepoID:        &dstRepoID,
		MergeStrategy: MergeKeep,
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Inserted)
	require.Equal(t, "imported", result.Status)

	docs, err := dst.ListDocs(ctx, &dstRepoID, false)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "notes__hello", docs[0].Slug)
}

func TestImport_MergeKeepSkipsExisting(t *testing.T) {
	src := openTestStore(t)
	ctx := context.Background()
	repoID, err := src.AddRepo(ctx, "/repo", "repo")
	require.NoError(t, err)
	_, err = src.CreateDoc(ctx, repoID, "notes__hello", "Hello", "body")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(ctx, src, &buf, exporter.FormatJSON, exporter.Options{}))

	dst := openTestStore(t)
	dstRepoID, err := dst.AddRepo(ctx, "/dst", "dst")
	require.NoError(t, err)
	_, err = dst.CreateDoc(ctx, dstRepoID, "notes__hello", "Existing", "existing body")
	require.NoError(t, err)

	result, err := Import(ctx, dst, bytes.NewReader(buf.Bytes()), exporter.FormatJSON, Options{
		RepoID:        &dstRepoID,
		MergeStrategy: MergeKeep,
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Skipped)

	docs, err := dst.ListDocs(ctx, &dstRepoID, false)
	require.NoError(t, err)
	require.Equal(t, "Existing", docs[0].Title)
}

func TestImport_MergeOverwriteUpdatesChangedBody(t *testing.T) {
	src := openTestStore(t)
	ctx := context.Background()
	repoID, err := src.AddRepo(ctx, "/repo", "repo")
	require.NoError(t, err)
	_, err = src.CreateDoc(ctx, repoID, "notes__hello", "Hello", "new body")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(ctx, src, &buf, exporter.FormatJSON, exporter.Options{}))

	dst := openTestStore(t)
	dstRepoID, err := dst.AddRepo(ctx, "/dst", "dst")
	require.NoError(t, err)
	docID, err := dst.CreateDoc(ctx, dstRepoID, "notes__hello", "Existing", "old body")
	require.NoError(t, err)

	result, err := Import(ctx, dst, bytes.NewReader(buf.Bytes()), exporter.FormatJSON, Options{
		RepoID:        &dstRepoID,
		MergeStrategy: MergeOverwrite,
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Updated)
	require.Len(t, result.Diffs, 1)
	require.Equal(t, "notes__hello", result.Diffs[0].Slug)
	require.Contains(t, result.Diffs[0].Diff, "- old")
	require.Contains(t, result.Diffs[0].Diff, "+ new")

	body, err := dst.DocBody(ctx, docID)
	require.NoError(t, err)
	require.Equal(t, "new body", body)
}

func TestImport_DryRunWritesNothing(t *testing.T) {
	src := openTestStore(t)
	ctx := context.Background()
	repoID, err := src.AddRepo(ctx, "/repo", "repo")
	require.NoError(t, err)
	_, err = src.CreateDoc(ctx, repoID, "notes__hello", "Hello", "body")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(ctx, src, &buf, exporter.FormatJSON, exporter.Options{}))

	dst := openTestStore(t)
	dstRepoID, err := dst.AddRepo(ctx, "/dst", "dst")
	require.NoError(t, err)

	result, err := Import(ctx, dst, bytes.NewReader(buf.Bytes()), exporter.FormatJSON, Options{
		RepoID:        &dstRepoID,
		MergeStrategy: MergeKeep,
		DryRun:        true,
	})
	require.NoError(t, err)
	require.Equal(t, "dry_run", result.Status)
	require.Equal(t, 1, result.Inserted)

	docs, err := dst.ListDocs(ctx, &dstRepoID, false)
	require.NoError(t, err)
	require.Empty(t, docs)
}

func TestImport_TarRoundTripWithAttachments(t *testing.T) {
	src := openTestStore(t)
	ctx := context.Background()
	repoID, err := src.AddRepo(ctx, "/repo", "repo")
	require.NoError(t, err)
	docID, err := src.CreateDoc(ctx, repoID, "notes__hello", "Hello", "# Hello\nbody")
	require.NoError(t, err)
	err = src.Tx(ctx, func(tx *sql.Tx) error {
		blobID, err := store.InsertBlob(ctx, tx, []byte("binary-data"), "image/png")
		if err != nil {
			return err
		}
		_, err = store.InsertAsset(ctx, tx, docID, "diagram.png", "image/png", 11, blobID, 1000)
		return err
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(ctx, src, &buf, exporter.FormatTar, exporter.Options{
		IncludeAttachments: true,
	}))

	dst := openTestStore(t)
	dstRepoID, err := dst.AddRepo(ctx, "/dst", "dst")
	require.NoError(t, err)

	result, err := Import(ctx, dst, bytes.NewReader(buf.Bytes()), exporter.FormatTar, Options{
		RepoID:        &dstRepoID,
		MergeStrategy: MergeKeep,
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Inserted)

	docs, err := dst.ListDocs(ctx, &dstRepoID, false)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	body, err := dst.DocBody(ctx, docs[0].ID)
	require.NoError(t, err)
	require.Equal(t, "# Hello\nbody", body)

	assets, err := store.AssetsByDoc(ctx, dst.DB(), docs[0].ID)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	require.Equal(t, "diagram.png", assets[0].Filename)

	_, content, err := store.AssetBlob(ctx, dst.DB(), docs[0].ID, assets[0].ID)
	require.NoError(t, err)
	require.Equal(t, "binary-data", string(content))
}

func TestImport_InvalidMergeStrategy(t *testing.T) {
	dst := openTestStore(t)
	ctx := context.Background()
	repoID, err := dst.AddRepo(ctx, "/dst", "dst")
	require.NoError(t, err)

	_, err = Import(ctx, dst, bytes.NewReader([]byte("[]")), exporter.FormatJSON, Options{
		RepoID:        &repoID,
		MergeStrategy: "bogus",
	})
	require.ErrorIs(t, err, ErrInvalidMergeStrategy)
}

func TestImport_AmbiguousRepoTarget(t *testing.T) {
	dst := openTestStore(t)
	ctx := context.Background()
	repoID, err := dst.AddRepo(ctx, "/dst", "dst")
	require.NoError(t, err)

	_, err = Import(ctx, dst, bytes.NewReader([]byte("[]")), exporter.FormatJSON, Options{
		RepoID:        &repoID,
		NewRepoName:   "also-set",
		MergeStrategy: MergeKeep,
	})
	require.ErrorIs(t, err, ErrRepoTargetAmbiguous)
}
