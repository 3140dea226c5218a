// rpcserve.go implements the "mdkb rpc" command: the line-delimited
// JSON-RPC 2.0 TCP surface spec.md §6 names, as distinct from "mdkb kb-mcp"
// (the stdio MCP server). This command owns its own store, ingest, dispatch,
// and plugin-host lifecycle rather than sharing the CLI's.
package core

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/mtreilly/mdkb/internal/aidispatch"
	"github.com/mtreilly/mdkb/internal/config"
	"github.com/mtreilly/mdkb/internal/ingest"
	"github.com/mtreilly/mdkb/internal/plugin"
	"github.com/mtreilly/mdkb/internal/rpcsurface"
	"github.com/mtreilly/mdkb/internal/secrets"
	"github.com/mtreilly/mdkb/internal/store"
	"github.com/spf13/cobra"
)

func newRPCCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rpc",
		Short: "Start the JSON-RPC 2.0 surface",
		Long: `Start a line-delimited JSON-RPC 2.0 server over TCP for repo/doc/search/
graph/import/export/ai/plugin operations.

Bound to AE_RPC_PORT (default 35678). Database path resolved from AE_DB,
falling back to a per-user app-data directory, then .dev/agent-editor.db
(spec.md "Persisted state layout").`,
		RunE: runRPC,
	}
}

// resolveDBPath implements spec.md §"Persisted state layout": $AE_DB if set,
// else a platform per-app data dir, else .dev/agent-editor.db.
func resolveDBPath() string {
	if p := os.Getenv("AE_DB"); p != "" {
		return p
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "agent-editor", "agent-editor.db")
	}
	return filepath.Join(".dev", "agent-editor.db")
}

// resolveAddr reads AE_RPC_PORT (default 35678, spec.md §6).
func resolveAddr() string {
	port := os.Getenv("AE_RPC_PORT")
	if port == "" {
		port = "35678"
	}
	return "127.0.0.1:" + port
}

// openSurface builds the full rpcsurface.Surface dependency graph (store,
// ingest, secrets-backed AI dispatch, plugin host) shared by both the TCP
// JSON-RPC command and the stdio MCP command below. The caller owns the
// returned store's lifetime and must Close it.
func openSurface() (*store.SQLiteStore, *rpcsurface.Surface, error) {
	dbPath := resolveDBPath()
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	// Config is best-effort here: the rpc/kb-mcp surface still serves with
	// built-in defaults (internal/config.Default*) if no config file exists
	// or it fails to load, matching "mdkb config"'s own missing-file handling.
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = &config.Config{}
	}

	ingestSvc := ingest.New(s).WithLimits(cfg.MaxContent(), cfg.MaxLineLength(), time.Duration(cfg.DebounceMS())*time.Millisecond)
	keys := secrets.New(s)
	remote := aidispatch.NewOpenRouterCaller(os.Getenv("OPENROUTER_API_KEY"), time.Duration(cfg.TimeoutSeconds())*time.Second)
	dispatcher := aidispatch.New(s, keys, remote)

	host := plugin.NewHost()
	if ms := os.Getenv("PLUGIN_CALL_TIMEOUT_MS"); ms != "" {
		if n, err := strconv.Atoi(ms); err == nil && n > 0 {
			host.CallTimeout = time.Duration(n) * time.Millisecond
		}
	}

	return s, rpcsurface.New(s, ingestSvc, dispatcher, host), nil
}

func runRPC(cmd *cobra.Command, _ []string) error {
	s, sf, err := openSurface()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rpcsurface.Serve(ctx, sf, resolveAddr())
}
