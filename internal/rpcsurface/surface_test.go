package rpcsurface

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mtreilly/mdkb/internal/ingest"
	"github.com/mtreilly/mdkb/internal/store"
	"github.com/stretchr/testify/require"
)

func testSurface(t *testing.T) *Surface {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s, ingest.New(s), nil, nil)
}

func call(t *testing.T, sf *Surface, method string, params interface{}) Response {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	req := Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: method, Params: raw}
	line, err := json.Marshal(req)
	require.NoError(t, err)
	return sf.Handle(context.Background(), line)
}

func TestUnknownMethodYieldsNotFound(t *testing.T) {
	sf := testSurface(t)
	resp := call(t, sf, "nope", map[string]string{})
	require.NotNil(t, resp.Error)
	require.Equal(t, "not_found", resp.Error.Message)
}

func TestReposAddThenList(t *testing.T) {
	sf := testSurface(t)

	resp := call(t, sf, "repos_add", reposAddParams{Path: "/repo", Name: "repo"})
	require.Nil(t, resp.Error)

	resp = call(t, sf, "repos_list", struct{}{})
	require.Nil(t, resp.Error)
	listed, ok := resp.Result.([]store.Repo)
	require.True(t, ok)
	require.Len(t, listed, 1)
	require.Equal(t, "repo", listed[0].Name)
}

func TestDocsCreateGetUpdateDedup(t *testing.T) {
	sf := testSurface(t)
	addResp := call(t, sf, "repos_add", reposAddParams{Path: "/repo", Name: "repo"})
	require.Nil(t, addResp.Error)
	repoID := addResp.Result.(map[string]int64)["repo_id"]

	createResp := call(t, sf, "docs_create", docsCreateParams{RepoID: repoID, Slug: "hello", Title: "Hello", Body: "line one"})
	require.Nil(t, createResp.Error)
	docID := createResp.Result.(map[string]int64)["doc_id"]

	getResp := call(t, sf, "docs_get", docsGetParams{DocID: docID, Content: true})
	require.Nil(t, getResp.Error)
	got := getResp.Result.(docsGetResult)
	require.Equal(t, "line one", got.Body)

	// docs_update with the same body must be a no-op skip (spec.md §8 invariant 4).
	updResp := call(t, sf, "docs_update", docsUpdateParams{DocID: docID, Body: "line one"})
	require.Nil(t, updResp.Error)
	upd := updResp.Result.(docsUpdateResult)
	require.True(t, upd.Skipped)

	// A changed body must produce a new version and Skipped=false.
	updResp2 := call(t, sf, "docs_update", docsUpdateParams{DocID: docID, Body: "line two"})
	require.Nil(t, updResp2.Error)
	upd2 := updResp2.Result.(docsUpdateResult)
	require.False(t, upd2.Skipped)
	require.NotEqual(t, upd.VersionID, upd2.VersionID)
}

func TestSearchFindsCreatedDoc(t *testing.T) {
	sf := testSurface(t)
	addResp := call(t, sf, "repos_add", reposAddParams{Path: "/repo", Name: "repo"})
	repoID := addResp.Result.(map[string]int64)["repo_id"]
	call(t, sf, "docs_create", docsCreateParams{RepoID: repoID, Slug: "alpha", Title: "Alpha", Body: "unique-search-token"})

	resp := call(t, sf, "search", searchParams{Query: "unique-search-token"})
	require.Nil(t, resp.Error)
	hits, ok := resp.Result.([]store.SearchHit)
	require.True(t, ok)
	require.Len(t, hits, 1)
	require.Equal(t, "alpha", hits[0].Slug)
}
