package mcpsurface

import "github.com/mark3labs/mcp-go/mcp"

// Parameter extraction helpers, adapted from the teacher's internal/mcp
// tools_util.go: permissive extraction with defaults rather than strict
// validation, since an LLM omitting an optional argument shouldn't fail
// the whole tool call.

func getString(req mcp.CallToolRequest, name, def string) string {
	if v, err := req.RequireString(name); err == nil {
		return v
	}
	return def
}

func getBool(req mcp.CallToolRequest, name string, def bool) bool {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return def
	}
	if v, ok := args[name].(bool); ok {
		return v
	}
	return def
}

func getInt(req mcp.CallToolRequest, name string, def int) int {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return def
	}
	if v, ok := args[name].(float64); ok {
		return int(v)
	}
	return def
}

func getInt64Ptr(req mcp.CallToolRequest, name string) *int64 {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return nil
	}
	v, ok := args[name].(float64)
	if !ok {
		return nil
	}
	n := int64(v)
	return &n
}
