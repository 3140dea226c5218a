// mcpserve.go implements "mdkb kb-mcp": the stdio MCP server for the
// repo/doc/search/graph/ai/plugin surface, wrapping rpcsurface via
// internal/mcpsurface.
package core

import (
	"github.com/mtreilly/mdkb/internal/mcpsurface"
	"github.com/spf13/cobra"
)

func newMCPSurfaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kb-mcp",
		Short: "Start the MCP server for the repo/doc knowledge engine",
		Long: `Start an MCP (Model Context Protocol) server over stdio exposing the
same repos_*/docs_*/search/graph_*/ai_run/anchors_*/plugins_* operations
the "rpc" command serves over TCP.

Database path resolved the same way as "rpc": $AE_DB, else a per-user
config directory, else .dev/agent-editor.db.`,
		RunE: runMCPSurface,
	}
}

func runMCPSurface(_ *cobra.Command, _ []string) error {
	s, sf, err := openSurface()
	if err != nil {
		return err
	}
	defer s.Close()

	return mcpsurface.Serve(sf)
}
