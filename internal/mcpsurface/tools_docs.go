// tools_docs.go wraps docs_create/get/update/delete as MCP tools.
package mcpsurface

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerDocTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcp.NewTool("mdkb_docs_create",
			mcp.WithDescription("Create a new document in a repo"),
			mcp.WithNumber("repo_id", mcp.Required(), mcp.Description("Repo id")),
			mcp.WithString("slug", mcp.Required(), mcp.Description("Document slug/path within the repo")),
			mcp.WithString("title", mcp.Description("Document title")),
			mcp.WithString("body", mcp.Required(), mcp.Description("Document body (Markdown)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.call(ctx, "docs_create", map[string]any{
				"repo_id": getInt(req, "repo_id", 0),
				"slug":    getString(req, "slug", ""),
				"title":   getString(req, "title", ""),
				"body":    getString(req, "body", ""),
			})
		},
	)

	s.AddTool(
		mcp.NewTool("mdkb_docs_get",
			mcp.WithDescription("Read a document, optionally including its current body"),
			mcp.WithNumber("doc_id", mcp.Required(), mcp.Description("Document id")),
			mcp.WithBoolean("content", mcp.Description("Include the document body")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.call(ctx, "docs_get", map[string]any{
				"doc_id":  getInt(req, "doc_id", 0),
				"content": getBool(req, "content", false),
			})
		},
	)

	s.AddTool(
		mcp.NewTool("mdkb_docs_update",
			mcp.WithDescription("Write a new body to a document; a no-op (skipped=true) if the body is unchanged"),
			mcp.WithNumber("doc_id", mcp.Required(), mcp.Description("Document id")),
			mcp.WithString("body", mcp.Required(), mcp.Description("New document body")),
			mcp.WithString("message", mcp.Description("Version message")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.call(ctx, "docs_update", map[string]any{
				"doc_id":  getInt(req, "doc_id", 0),
				"body":    getString(req, "body", ""),
				"message": getString(req, "message", ""),
			})
		},
	)

	s.AddTool(
		mcp.NewTool("mdkb_docs_delete",
			mcp.WithDescription("Delete a document"),
			mcp.WithNumber("doc_id", mcp.Required(), mcp.Description("Document id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.call(ctx, "docs_delete", map[string]any{
				"doc_id": getInt(req, "doc_id", 0),
			})
		},
	)
}
