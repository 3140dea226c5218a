package rpcsurface

import (
	"context"
	"encoding/json"
)

type searchParams struct {
	RepoID *int64 `json:"repo_id,omitempty"`
	Query  string `json:"query"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

func handleSearch(ctx context.Context, sf *Surface, raw json.RawMessage) (interface{}, error) {
	var p searchParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	hits, err := sf.Store.Search(ctx, p.Query, p.RepoID, p.Limit, p.Offset)
	if err != nil {
		return nil, err
	}
	return hits, nil
}

func handleFTSStats(ctx context.Context, sf *Surface, _ json.RawMessage) (interface{}, error) {
	stats, err := sf.Store.FTSStats(ctx)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
