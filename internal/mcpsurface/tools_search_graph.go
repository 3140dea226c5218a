// tools_search_graph.go wraps search/fts_stats and graph_backlinks/
// _neighbors/_related/_path as MCP tools.
package mcpsurface

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerSearchGraphTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcp.NewTool("mdkb_search",
			mcp.WithDescription("Full-text search across documents"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
			mcp.WithNumber("repo_id", mcp.Description("Restrict search to one repo id")),
			mcp.WithNumber("limit", mcp.Description("Maximum results")),
			mcp.WithNumber("offset", mcp.Description("Result offset")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := map[string]any{
				"query":  getString(req, "query", ""),
				"limit":  getInt(req, "limit", 0),
				"offset": getInt(req, "offset", 0),
			}
			if id := getInt64Ptr(req, "repo_id"); id != nil {
				args["repo_id"] = *id
			}
			return h.call(ctx, "search", args)
		},
	)

	s.AddTool(
		mcp.NewTool("mdkb_fts_stats",
			mcp.WithDescription("Report full-text index coverage and staleness"),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.call(ctx, "fts_stats", map[string]any{})
		},
	)

	s.AddTool(
		mcp.NewTool("mdkb_graph_backlinks",
			mcp.WithDescription("List documents that link to the given document"),
			mcp.WithNumber("doc_id", mcp.Required(), mcp.Description("Document id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.call(ctx, "graph_backlinks", map[string]any{"doc_id": getInt(req, "doc_id", 0)})
		},
	)

	s.AddTool(
		mcp.NewTool("mdkb_graph_neighbors",
			mcp.WithDescription("List documents directly linked from the given document"),
			mcp.WithNumber("doc_id", mcp.Required(), mcp.Description("Document id")),
			mcp.WithNumber("depth", mcp.Description("Accepted but not currently enforced")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.call(ctx, "graph_neighbors", map[string]any{
				"doc_id": getInt(req, "doc_id", 0),
				"depth":  getInt(req, "depth", 0),
			})
		},
	)

	s.AddTool(
		mcp.NewTool("mdkb_graph_related",
			mcp.WithDescription("List documents related to the given document by shared links"),
			mcp.WithNumber("doc_id", mcp.Required(), mcp.Description("Document id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.call(ctx, "graph_related", map[string]any{"doc_id": getInt(req, "doc_id", 0)})
		},
	)

	s.AddTool(
		mcp.NewTool("mdkb_graph_path",
			mcp.WithDescription("Find a link path between two documents"),
			mcp.WithNumber("start_id", mcp.Required(), mcp.Description("Starting document id")),
			mcp.WithNumber("end_id", mcp.Required(), mcp.Description("Ending document id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.call(ctx, "graph_path", map[string]any{
				"start_id": getInt(req, "start_id", 0),
				"end_id":   getInt(req, "end_id", 0),
			})
		},
	)
}
