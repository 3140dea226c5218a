// Package core provides the core extension for mdkb.
// It registers commands: init, config, rpc, kb-mcp, guide, vacuum, llm, version.
package core

import (
	"github.com/mtreilly/mdkb/extension"
	"github.com/spf13/cobra"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the core extension.
type Extension struct{}

// Compile-time interface compliance. Catches missing methods at build time
// rather than runtime, making interface changes safer to refactor.
var (
	_ extension.Extension = (*Extension)(nil)
	_ extension.Storeless = (*Extension)(nil)
)

// Name returns "core" - this extension provides fundamental mdkb commands.
func (e *Extension) Name() string { return "core" }

// Commands returns all core CLI commands for repo/doc management.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		newInitCmd(),
		newConfigCmd(),
		newRPCCmd(),
		newMCPSurfaceCmd(),
		newGuideCmd(),
		newVacuumCmd(),
		newLlmCmd(),
		newVersionCmd(),
	}
}

// MCPTools returns nil - core commands have no MCP tool equivalents. The
// full repos_*/docs_*/search/graph_*/ai_run/plugins_* surface is served by
// "kb-mcp" directly, not registered per-extension here.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}

// NoStoreCommands returns commands that manage their own store lifecycle.
// init: Creates the store; must run before the shared CLI context opens one.
// rpc: Long-running JSON-RPC 2.0 server opens its own store.SQLiteStore at a
//   path resolved from AE_DB, distinct from the CLI --dir store.
// kb-mcp: Same surface as rpc, but over stdio via mcpsurface; same reason.
// vacuum: Must work with --dry-run without requiring the shared CLI store.
// version: Displays build info, doesn't need database connection.
func (e *Extension) NoStoreCommands() []string {
	return []string{"init", "rpc", "kb-mcp", "vacuum", "version"}
}
