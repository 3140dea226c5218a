package rpcsurface

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mtreilly/mdkb/internal/aidispatch"
	"github.com/mtreilly/mdkb/internal/exporter"
	"github.com/mtreilly/mdkb/internal/importer"
	"github.com/mtreilly/mdkb/internal/ingest"
	"github.com/mtreilly/mdkb/internal/plugin"
	"github.com/mtreilly/mdkb/internal/store"
)

// Surface wires the store and every subsystem (ingest, AI dispatch, plugin
// host) into the method table spec.md §6 defines. It holds no state of its
// own beyond those collaborators, matching the teacher's handlers{} shape
// in internal/mcp/server.go (a thin struct gluing RPC verbs to services).
type Surface struct {
	Store   *store.SQLiteStore
	Ingest  *ingest.Service
	AI      *aidispatch.Dispatcher
	Plugins *plugin.Host
}

// New builds a Surface from its collaborators.
func New(s *store.SQLiteStore, ing *ingest.Service, ai *aidispatch.Dispatcher, plugins *plugin.Host) *Surface {
	return &Surface{Store: s, Ingest: ing, AI: ai, Plugins: plugins}
}

type handlerFunc func(ctx context.Context, sf *Surface, params json.RawMessage) (interface{}, error)

var methodTable = map[string]handlerFunc{
	"repos_add":       handleReposAdd,
	"repos_list":      handleReposList,
	"repos_info":      handleReposInfo,
	"repos_remove":    handleReposRemove,
	"scan_repo":       handleScanRepo,
	"scan_file":       handleScanFile,
	"docs_create":     handleDocsCreate,
	"docs_update":     handleDocsUpdate,
	"docs_get":        handleDocsGet,
	"docs_delete":     handleDocsDelete,
	"import_docs":     handleImportDocs,
	"export_docs":     handleExportDocs,
	"search":          handleSearch,
	"graph_backlinks": handleGraphBacklinks,
	"graph_neighbors": handleGraphNeighbors,
	"graph_related":   handleGraphRelated,
	"graph_path":      handleGraphPath,
	"ai_run":          handleAIRun,
	"anchors_list":    handleAnchorsList,
	"anchors_upsert":  handleAnchorsUpsert,
	"anchors_delete":  handleAnchorsDelete,
	"fts_stats":       handleFTSStats,
}

// Handle parses one JSON-RPC 2.0 request line and returns the response to
// write back. It never returns an error itself — malformed input and
// handler failures both become a Response with Error set, per spec.md §7
// ("every RPC failure path surfaces as {code,message}, never a bare
// connection close").
func (sf *Surface) Handle(ctx context.Context, line []byte) Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return errorResponse(nil, codeParseError, "invalid_request")
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		return errorResponse(req.ID, codeInvalidRequest, "invalid_request")
	}

	fn, ok := methodTable[req.Method]
	if !ok {
		return errorResponse(req.ID, codeMethodNotFound, "not_found")
	}

	result, err := fn(ctx, sf, req.Params)
	if err != nil {
		return errorResponse(req.ID, codeHandlerError, kind(err))
	}
	return resultResponse(req.ID, result)
}

func decodeParams(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing params")
	}
	return json.Unmarshal(raw, v)
}
