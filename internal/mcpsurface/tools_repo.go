// tools_repo.go wraps repos_add/list/info/remove and scan_repo/scan_file as
// MCP tools, mirroring the teacher's one-AddTool-per-operation style.
package mcpsurface

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerRepoTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcp.NewTool("mdkb_repos_add",
			mcp.WithDescription("Register a repository root for scanning"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Filesystem path to the repo root")),
			mcp.WithString("name", mcp.Description("Repo display name (defaults to path)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.call(ctx, "repos_add", map[string]any{
				"path": getString(req, "path", ""),
				"name": getString(req, "name", ""),
			})
		},
	)

	s.AddTool(
		mcp.NewTool("mdkb_repos_list",
			mcp.WithDescription("List registered repositories"),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.call(ctx, "repos_list", map[string]any{})
		},
	)

	s.AddTool(
		mcp.NewTool("mdkb_repos_info",
			mcp.WithDescription("Get details for a repository by id or name"),
			mcp.WithString("id_or_name", mcp.Required(), mcp.Description("Repo id or name")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.call(ctx, "repos_info", map[string]any{
				"id_or_name": getString(req, "id_or_name", ""),
			})
		},
	)

	s.AddTool(
		mcp.NewTool("mdkb_repos_remove",
			mcp.WithDescription("Remove a registered repository"),
			mcp.WithString("id_or_name", mcp.Required(), mcp.Description("Repo id or name")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.call(ctx, "repos_remove", map[string]any{
				"id_or_name": getString(req, "id_or_name", ""),
			})
		},
	)

	s.AddTool(
		mcp.NewTool("mdkb_scan_repo",
			mcp.WithDescription("Scan a repo root once, ingesting changed Markdown files"),
			mcp.WithString("repo_path", mcp.Required(), mcp.Description("Filesystem path to the repo root")),
			mcp.WithBoolean("watch", mcp.Description("Keep watching for changes after the initial scan")),
			mcp.WithNumber("debounce", mcp.Description("Watch debounce in milliseconds")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.call(ctx, "scan_repo", map[string]any{
				"repo_path": getString(req, "repo_path", ""),
				"watch":     getBool(req, "watch", false),
				"debounce":  getInt(req, "debounce", 0),
			})
		},
	)

	s.AddTool(
		mcp.NewTool("mdkb_scan_file",
			mcp.WithDescription("Scan a single file within a repo root"),
			mcp.WithString("repo_path", mcp.Required(), mcp.Description("Filesystem path to the repo root")),
			mcp.WithString("file_path", mcp.Required(), mcp.Description("Absolute path to the file to scan")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.call(ctx, "scan_file", map[string]any{
				"repo_path": getString(req, "repo_path", ""),
				"file_path": getString(req, "file_path", ""),
			})
		},
	)
}
