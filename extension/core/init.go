// init.go implements the "mdkb init" command for store initialisation.
//
// Separated from extension.go to isolate init-specific logic. Init is special
// because it runs before a store exists and creates the initial database.
//
// Design: Init does NOT create config - that's managed separately via
// "mdkb config". This follows git's model where init creates repository
// structure and config is separate. The --local flag controls whether the
// store is committed to git or gitignored.

package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mtreilly/mdkb/cmd"
	"github.com/mtreilly/mdkb/extension"
	"github.com/mtreilly/mdkb/internal/log"
	"github.com/mtreilly/mdkb/internal/store"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "init",
		Short: "Initialise a new mdkb store",
		Long: `Creates a .mdkb/mdkb.db database in the current directory.

Use --dir to create in a different directory:
  mdkb init --dir /path/to/project    # creates /path/to/project/.mdkb/mdkb.db

Use --local to exclude from git:
  mdkb init --local    # creates .mdkb/mdkb.db, added to .gitignore

Note: init does not create config. Use "mdkb config" to set up configuration.`,
		RunE: runInit,
	}
	c.Flags().BoolP(extension.FlagLocal, "l", false, "Mark store as local (gitignored)")
	return c
}

func runInit(c *cobra.Command, _ []string) error {
	local, _ := c.Flags().GetBool(extension.FlagLocal)
	dir := cmd.Dir()

	// Why --local and --dir are incompatible: --local adds the store
	// directory to the current project's .gitignore. When using --dir,
	// the store is created elsewhere, so modifying this project's
	// gitignore makes no sense.
	if local && dir != "" {
		return cmd.PrintJSONError(fmt.Errorf("cannot use --local with --dir: --local modifies the current project's .gitignore, but --dir creates the store elsewhere"))
	}

	path := storePath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return cmd.PrintJSONError(fmt.Errorf("init: creating store directory: %w", err))
	}
	s, err := store.Open(path)

	log.Event("core:init", "init").
		Author(cmd.Author()).
		Detail("dir", dir).
		Detail("local", local).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("init: %w", err))
	}
	defer s.Close()

	if local {
		if err := markLocal(dir); err != nil {
			return cmd.PrintJSONError(fmt.Errorf("init: %w", err))
		}
	}

	fmt.Fprintf(cmd.Out(), "Initialised mdkb store in %s\n", path)
	return nil
}
