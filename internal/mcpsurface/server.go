// Package mcpsurface exposes the rpcsurface method table as MCP tools, so
// the same repo/scan/doc/search/graph/ai/plugin operations spec.md §6
// names are reachable from an MCP client (Claude Desktop, etc.) and not
// only from a raw TCP JSON-RPC connection.
//
// Grounded on the teacher's internal/mcp package (server.go's
// NewMCPServer/AddTool/ServeStdio shape, tools_util.go's permissive
// argument-extraction helpers) generalized from llmd's one-handler-per-tool
// style, backed by internal/document, to one-handler-per-rpcsurface-method,
// backed by internal/rpcsurface.Surface.Handle — every tool here is a thin
// argument-shuffling wrapper that builds the same JSON-RPC 2.0 envelope a
// TCP caller would send and runs it through the identical dispatch path,
// so the two surfaces can never drift in behavior.
package mcpsurface

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mtreilly/mdkb/internal/rpcsurface"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is advertised to MCP clients for capability negotiation.
const Version = "1.0.0"

type handlers struct {
	sf *rpcsurface.Surface
}

// Serve starts the MCP server over stdio, dispatching every tool call
// through sf's method table (the same one rpcsurface.Serve exposes over
// TCP).
func Serve(sf *rpcsurface.Surface) error {
	h := &handlers{sf: sf}
	s := server.NewMCPServer("mdkb", Version, server.WithToolCapabilities(true))
	registerTools(s, h)
	slog.Info("mdkb MCP server ready", "version", Version, "transport", "stdio")
	return server.ServeStdio(s)
}

// call marshals args as JSON-RPC params, runs them through the same
// Surface.Handle path a TCP client would hit, and renders the result (or
// error kind) as an MCP tool result.
func (h *handlers) call(ctx context.Context, method string, args map[string]any) (*mcp.CallToolResult, error) {
	params, err := json.Marshal(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	req := rpcsurface.Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: method, Params: params}
	line, err := json.Marshal(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resp := h.sf.Handle(ctx, line)
	if resp.Error != nil {
		return mcp.NewToolResultError(resp.Error.Message), nil
	}
	out, err := json.Marshal(resp.Result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
