package rpcsurface

import (
	"context"
	"encoding/json"
)

type reposAddParams struct {
	Path    string   `json:"path"`
	Name    string   `json:"name,omitempty"`
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

func handleReposAdd(ctx context.Context, sf *Surface, raw json.RawMessage) (interface{}, error) {
	var p reposAddParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	name := p.Name
	if name == "" {
		name = p.Path
	}
	id, err := sf.Store.AddRepo(ctx, p.Path, name)
	if err != nil {
		return nil, err
	}
	return map[string]int64{"repo_id": id}, nil
}

func handleReposList(ctx context.Context, sf *Surface, _ json.RawMessage) (interface{}, error) {
	repos, err := sf.Store.ListRepos(ctx)
	if err != nil {
		return nil, err
	}
	return repos, nil
}

type idOrNameParams struct {
	IDOrName string `json:"id_or_name"`
}

func handleReposInfo(ctx context.Context, sf *Surface, raw json.RawMessage) (interface{}, error) {
	var p idOrNameParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	repo, err := sf.Store.RepoInfo(ctx, p.IDOrName)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func handleReposRemove(ctx context.Context, sf *Surface, raw json.RawMessage) (interface{}, error) {
	var p idOrNameParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	removed, err := sf.Store.RemoveRepo(ctx, p.IDOrName)
	if err != nil {
		return nil, err
	}
	return map[string]bool{"removed": removed}, nil
}
