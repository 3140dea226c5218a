package rpcsurface

import (
	"context"
	"encoding/json"
)

type anchorsListParams struct {
	DocID int64 `json:"doc_id"`
}

func handleAnchorsList(ctx context.Context, sf *Surface, raw json.RawMessage) (interface{}, error) {
	var p anchorsListParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	anchors, err := sf.Store.ListAnchors(ctx, p.DocID)
	if err != nil {
		return nil, err
	}
	return anchors, nil
}

type anchorsUpsertParams struct {
	DocID     int64  `json:"doc_id"`
	Line      int    `json:"line"`
	VersionID *int64 `json:"version_id,omitempty"`
}

func handleAnchorsUpsert(ctx context.Context, sf *Surface, raw json.RawMessage) (interface{}, error) {
	var p anchorsUpsertParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	id, err := sf.Store.UpsertAnchor(ctx, p.DocID, p.Line, p.VersionID)
	if err != nil {
		return nil, err
	}
	return map[string]int64{"id": id}, nil
}

type anchorsDeleteParams struct {
	ID int64 `json:"id"`
}

func handleAnchorsDelete(ctx context.Context, sf *Surface, raw json.RawMessage) (interface{}, error) {
	var p anchorsDeleteParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	deleted, err := sf.Store.DeleteAnchor(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return map[string]bool{"deleted": deleted}, nil
}
