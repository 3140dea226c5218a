package rpcsurface

import (
	"context"
	"encoding/json"

	"github.com/mtreilly/mdkb/internal/aidispatch"
)

type aiRunParams struct {
	Provider string `json:"provider,omitempty"`
	DocID    string `json:"doc_id"`
	AnchorID string `json:"anchor_id,omitempty"`
	Prompt   string `json:"prompt"`
}

func handleAIRun(ctx context.Context, sf *Surface, raw json.RawMessage) (interface{}, error) {
	var p aiRunParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	result, err := sf.AI.Run(ctx, aidispatch.Request{
		Provider: p.Provider,
		DocID:    p.DocID,
		AnchorID: p.AnchorID,
		Prompt:   p.Prompt,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
