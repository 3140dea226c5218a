/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// init_extensions.go handles extension initialisation and command registration.
//
// Separated from root.go to isolate the complex initialisation logic that
// discovers the store, loads config, and wires up extensions.
//
// Design: Extensions register during init() but aren't initialised until
// first command execution. This two-phase pattern allows extensions to
// declare commands before the store exists. The store is opened once and
// shared across all extensions via the Context.

package cmd

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/mtreilly/mdkb/extension"
	"github.com/mtreilly/mdkb/internal/config"
	"github.com/mtreilly/mdkb/internal/log"
	"github.com/mtreilly/mdkb/internal/store"
)

// noStoreCommands lists commands that bypass automatic store initialisation.
// Built dynamically from bootstrap commands plus extension-declared storeless commands.
var noStoreCommands map[string]bool

// authorRequiredCommands lists commands that require author configuration.
// These are commands that mutate doc data and attribute the change in the
// audit log.
var authorRequiredCommands = map[string]bool{
	"vacuum": true,
}

// buildNoStoreCommands creates the set of commands that skip store initialisation.
//
// Why this exists: Most commands need the shared store, but some must work
// without it. There are two categories:
//
//  1. Bootstrap commands (init, guide, config, llm) - These help users set up
//     or learn about mdkb before a store exists. Running "mdkb guide" shouldn't
//     fail just because you haven't run "mdkb init" yet.
//
//  2. Extension-declared storeless commands - Extensions can implement the
//     Storeless interface to declare commands that manage their own store
//     lifecycle. For example, "rpc"/"kb-mcp" open their own store at a path
//     resolved independently of the CLI's --dir.
//
// When adding a new command: If it's a core bootstrap command, add it here.
// Otherwise, implement extension.Storeless in your extension.
func buildNoStoreCommands() map[string]bool {
	cmds := map[string]bool{
		// Core bootstrap commands - always storeless
		"init":   true,
		"guide":  true,
		"config": true,
		"llm":    true,
	}

	// Add extension-declared storeless commands
	for _, ext := range extension.All() {
		if s, ok := ext.(extension.Storeless); ok {
			for _, name := range s.NoStoreCommands() {
				cmds[name] = true
			}
		}
	}

	return cmds
}

// Global extension context, created during initialisation.
var (
	extContext extension.Context
	extStore   *store.SQLiteStore
	initOnce   sync.Once
	initErr    error
)

// initExtensions opens the shared store and injects it into extensions.
//
// Why sync.Once: The store is expensive to open (opens DB, sets up WAL mode)
// and must be shared across all extensions. We use sync.Once to guarantee
// exactly one initialisation per process, even if multiple commands somehow
// trigger it.
func initExtensions() error {
	initOnce.Do(func() {
		path := storePathForCLI()
		s, err := store.Open(path)
		if err != nil {
			initErr = fmt.Errorf("opening store: %w", err)
			return
		}
		extStore = s

		// Set project identifier for audit logging
		log.SetProject(filepath.Dir(path))

		cfg, err := config.Load()
		if err != nil {
			initErr = err
			return
		}
		extContext = extension.NewContext(s, cfg)

		// Inject the shared context into all Initializable extensions.
		// This is dependency injection - extensions receive the store rather
		// than creating it themselves, enabling shared state and proper cleanup.
		for _, ext := range extension.All() {
			if init, ok := ext.(extension.Initializable); ok {
				if err := init.Init(extContext); err != nil {
					initErr = fmt.Errorf("init extension %s: %w", ext.Name(), err)
					return
				}
			}
		}
	})
	return initErr
}

// storePathForCLI resolves the shared CLI store path: .mdkb/mdkb.db under
// --dir (or the current directory).
func storePathForCLI() string {
	dir := Dir()
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, ".mdkb", "mdkb.db")
}

var extensionsOnce sync.Once

// registerExtensions adds commands from all registered extensions.
// Called once before Execute runs.
func registerExtensions() {
	extensionsOnce.Do(func() {
		for _, ext := range extension.All() {
			for _, cmd := range ext.Commands() {
				rootCmd.AddCommand(cmd)
			}
		}

		// Build noStoreCommands after all extensions are registered
		noStoreCommands = buildNoStoreCommands()
	})
}
