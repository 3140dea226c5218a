package mcpsurface

import "github.com/mark3labs/mcp-go/server"

// registerTools wires every rpcsurface method reachable from an MCP
// client, grouped by concern the same way the teacher's internal/mcp
// splits tools_documents.go/tools_search.go/tools_links.go/etc.
func registerTools(s *server.MCPServer, h *handlers) {
	registerRepoTools(s, h)
	registerDocTools(s, h)
	registerSearchGraphTools(s, h)
	registerAIPluginTools(s, h)
	registerImportExportTools(s, h)
}
