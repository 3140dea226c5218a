// tools_ai_plugins.go wraps ai_run, anchors_list/_upsert/_delete, and the
// plugins_list/_call extension as MCP tools.
package mcpsurface

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerAIPluginTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcp.NewTool("mdkb_ai_run",
			mcp.WithDescription("Dispatch a prompt to a local or remote AI provider against a document's context"),
			mcp.WithString("provider", mcp.Description("Provider name (local by default)")),
			mcp.WithString("doc_id", mcp.Required(), mcp.Description("Document id to use as context")),
			mcp.WithString("anchor_id", mcp.Description("Anchor id narrowing context to one position")),
			mcp.WithString("prompt", mcp.Required(), mcp.Description("Prompt text")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.call(ctx, "ai_run", map[string]any{
				"provider":  getString(req, "provider", ""),
				"doc_id":    getString(req, "doc_id", ""),
				"anchor_id": getString(req, "anchor_id", ""),
				"prompt":    getString(req, "prompt", ""),
			})
		},
	)

	s.AddTool(
		mcp.NewTool("mdkb_anchors_list",
			mcp.WithDescription("List pinned editor anchors for a document"),
			mcp.WithNumber("doc_id", mcp.Required(), mcp.Description("Document id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.call(ctx, "anchors_list", map[string]any{"doc_id": getInt(req, "doc_id", 0)})
		},
	)

	s.AddTool(
		mcp.NewTool("mdkb_anchors_upsert",
			mcp.WithDescription("Pin an anchor at a line in a document"),
			mcp.WithNumber("doc_id", mcp.Required(), mcp.Description("Document id")),
			mcp.WithNumber("line", mcp.Required(), mcp.Description("Line number")),
			mcp.WithNumber("version_id", mcp.Description("Version id the anchor pins to")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := map[string]any{
				"doc_id": getInt(req, "doc_id", 0),
				"line":   getInt(req, "line", 0),
			}
			if v := getInt64Ptr(req, "version_id"); v != nil {
				args["version_id"] = *v
			}
			return h.call(ctx, "anchors_upsert", args)
		},
	)

	s.AddTool(
		mcp.NewTool("mdkb_anchors_delete",
			mcp.WithDescription("Delete a pinned anchor"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Anchor id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.call(ctx, "anchors_delete", map[string]any{"id": getInt(req, "id", 0)})
		},
	)

	s.AddTool(
		mcp.NewTool("mdkb_plugins_list",
			mcp.WithDescription("List registered plugins and their permission grants"),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.call(ctx, "plugins_list", map[string]any{})
		},
	)

	s.AddTool(
		mcp.NewTool("mdkb_plugins_call",
			mcp.WithDescription("Call a method on a running plugin, subject to its permission grant"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Plugin name")),
			mcp.WithString("method", mcp.Required(), mcp.Description("Plugin-defined method name")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.call(ctx, "plugins_call", map[string]any{
				"name":   getString(req, "name", ""),
				"method": getString(req, "method", ""),
			})
		},
	)
}
