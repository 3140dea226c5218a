package rpcsurface

import (
	"context"
	"encoding/json"
)

type graphDocIDParams struct {
	DocID int64 `json:"doc_id"`
	Depth int   `json:"depth,omitempty"`
}

func handleGraphBacklinks(ctx context.Context, sf *Surface, raw json.RawMessage) (interface{}, error) {
	var p graphDocIDParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	docs, err := sf.Store.Backlinks(ctx, p.DocID)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// handleGraphNeighbors implements graph_neighbors. depth is accepted but
// ignored — Neighbors is always 1-hop (SPEC_FULL.md §D.2, spec.md §9 OQ2).
func handleGraphNeighbors(ctx context.Context, sf *Surface, raw json.RawMessage) (interface{}, error) {
	var p graphDocIDParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	docs, err := sf.Store.Neighbors(ctx, p.DocID, p.Depth)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func handleGraphRelated(ctx context.Context, sf *Surface, raw json.RawMessage) (interface{}, error) {
	var p graphDocIDParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	docs, err := sf.Store.Related(ctx, p.DocID)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

type graphPathParams struct {
	StartID int64 `json:"start_id"`
	EndID   int64 `json:"end_id"`
}

func handleGraphPath(ctx context.Context, sf *Surface, raw json.RawMessage) (interface{}, error) {
	var p graphPathParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	ids, err := sf.Store.Path(ctx, p.StartID, p.EndID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}
