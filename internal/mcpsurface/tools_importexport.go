// tools_importexport.go wraps import_docs/export_docs as MCP tools.
package mcpsurface

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerImportExportTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcp.NewTool("mdkb_import_docs",
			mcp.WithDescription("Import documents from a JSON, NDJSON, or tar archive file"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Filesystem path to the archive")),
			mcp.WithNumber("repo_id", mcp.Description("Target repo id; omit with new_repo_name to create one")),
			mcp.WithString("new_repo_name", mcp.Description("Create and target a new repo with this name")),
			mcp.WithBoolean("dry_run", mcp.Description("Report what would change without writing")),
			mcp.WithString("merge_strategy", mcp.Description("skip, overwrite, or keep for existing (repo_id, slug) matches")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := map[string]any{
				"path":           getString(req, "path", ""),
				"new_repo_name":  getString(req, "new_repo_name", ""),
				"dry_run":        getBool(req, "dry_run", false),
				"merge_strategy": getString(req, "merge_strategy", ""),
			}
			if id := getInt64Ptr(req, "repo_id"); id != nil {
				args["repo_id"] = *id
			}
			return h.call(ctx, "import_docs", args)
		},
	)

	s.AddTool(
		mcp.NewTool("mdkb_export_docs",
			mcp.WithDescription("Export documents to a JSON, NDJSON, or tar archive file"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Destination filesystem path")),
			mcp.WithNumber("repo_id", mcp.Description("Restrict export to one repo id")),
			mcp.WithString("format", mcp.Description("json, ndjson, or tar (default tar)")),
			mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted documents")),
			mcp.WithBoolean("include_versions", mcp.Description("Include full version history")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := map[string]any{
				"path":             getString(req, "path", ""),
				"format":           getString(req, "format", ""),
				"include_deleted":  getBool(req, "include_deleted", false),
				"include_versions": getBool(req, "include_versions", false),
			}
			if id := getInt64Ptr(req, "repo_id"); id != nil {
				args["repo_id"] = *id
			}
			return h.call(ctx, "export_docs", args)
		},
	)
}
