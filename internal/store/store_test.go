package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEnsureFolderIsStable(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	repoID, err := s.AddRepo(ctx, "/repo", "repo")
	require.NoError(t, err)

	var first, second int64
	err = s.Tx(ctx, func(tx *sql.Tx) error {
		var err error
		first, err = EnsureFolder(ctx, tx, repoID, "notes/deep")
		return err
	})
	require.NoError(t, err)

	// Calling EnsureFolder again for the same path must return the same
	// stable id, never a fresh last_insert_rowid() (SPEC_FULL.md §D.3).
	err = s.Tx(ctx, func(tx *sql.Tx) error {
		var err error
		second, err = EnsureFolder(ctx, tx, repoID, "notes/deep")
		return err
	})
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestVersionHashDeterministic(t *testing.T) {
	h1 := VersionHash(42, "hello")
	h2 := VersionHash(42, "hello")
	h3 := VersionHash(42, "world")
	require.Equal(t, h1, h2)
	require.NotEqual(t, h1, h3)
}

func TestFTSSearchRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	repoID, err := s.AddRepo(ctx, "/repo", "repo")
	require.NoError(t, err)

	docID, err := s.CreateDoc(ctx, repoID, "notes__hello", "Hello", "# Hello\nthis is a test document about whales")
	require.NoError(t, err)
	require.NotZero(t, docID)

	hits, err := s.Search(ctx, "whales", &repoID, 10, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "notes__hello", hits[0].Slug)
}

func TestGraphPathBounded(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	repoID, err := s.AddRepo(ctx, "/repo", "repo")
	require.NoError(t, err)

	a, err := s.CreateDoc(ctx, repoID, "a", "A", "body")
	require.NoError(t, err)
	b, err := s.CreateDoc(ctx, repoID, "b", "B", "body")
	require.NoError(t, err)
	c, err := s.CreateDoc(ctx, repoID, "c", "C", "body")
	require.NoError(t, err)

	err = s.Tx(ctx, func(tx *sql.Tx) error {
		if err := ReplaceLinks(ctx, tx, repoID, a, []ExtractedLink{{Slug: "b", LineStart: 1, LineEnd: 1}}); err != nil {
			return err
		}
		return ReplaceLinks(ctx, tx, repoID, b, []ExtractedLink{{Slug: "c", LineStart: 1, LineEnd: 1}})
	})
	require.NoError(t, err)

	path, err := s.Path(ctx, a, c)
	require.NoError(t, err)
	require.Equal(t, []int64{a, b, c}, path)
}

func TestAppSettingUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppSettingSet(ctx, "default_provider", `"local"`))
	val, ok, err := s.AppSettingGet(ctx, "default_provider")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `"local"`, val)

	require.NoError(t, s.AppSettingSet(ctx, "default_provider", `"openrouter"`))
	val, ok, err = s.AppSettingGet(ctx, "default_provider")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `"openrouter"`, val)
}

func TestProviderSeedDefaultsNetworkDisabled(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	local, err := s.ProviderByName(ctx, "local")
	require.NoError(t, err)
	require.True(t, local.Enabled)

	remote, err := s.ProviderByName(ctx, "openrouter")
	require.NoError(t, err)
	require.False(t, remote.Enabled)
}
