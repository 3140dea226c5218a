// vacuum.go implements the "mdkb vacuum" command for permanent deletion.
//
// Separated from extension.go because vacuum is destructive and requires
// special handling including confirmation prompts and dry-run support.
//
// Design: Vacuum is a NoStoreCommand to support --dry-run mode which needs
// to work even when the database might be in an unusual state. It opens and
// closes its own store handle rather than sharing the CLI's.
package core

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mtreilly/mdkb/cmd"
	"github.com/mtreilly/mdkb/extension"
	"github.com/mtreilly/mdkb/internal/config"
	"github.com/mtreilly/mdkb/internal/duration"
	"github.com/mtreilly/mdkb/internal/log"
	"github.com/mtreilly/mdkb/internal/store"
	"github.com/spf13/cobra"
)

func newVacuumCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "vacuum",
		Short: "Permanently delete soft-deleted docs",
		Long: `Permanently delete soft-deleted docs, along with their versions, assets,
and links.

This is irreversible. Use --force to skip confirmation.

Duration formats: 7d (days), 4w (weeks), 3m (months)`,
		RunE: runVacuum,
	}
	c.Flags().String(extension.FlagOlderThan, "", "Only purge deletions older than duration (e.g., 7d, 4w, 3m)")
	c.Flags().BoolP(extension.FlagDryRun, "n", false, "Show what would be deleted")
	return c
}

func runVacuum(c *cobra.Command, _ []string) error {
	ctx := c.Context()
	path := storePath(cmd.Dir())
	s, err := store.Open(path)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("open store: %w", err))
	}
	defer s.Close()

	olderThan, _ := c.Flags().GetString(extension.FlagOlderThan)
	dryRun, _ := c.Flags().GetBool(extension.FlagDryRun)

	var cutoff int64
	if olderThan != "" {
		d, err := duration.Parse(olderThan)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("parse duration %q: %w", olderThan, err))
		}
		cutoff = time.Now().Add(-d).Unix()
	}

	if dryRun {
		result, err := s.PurgeDeleted(ctx, cutoff, true)

		log.Event("core:vacuum", "vacuum").
			Author(cmd.Author()).
			Detail("dry_run", true).
			Detail("docs", result.DocsPurged).
			Write(err)

		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("vacuum dry run: %w", err))
		}
		fmt.Fprintf(cmd.Out(), "Would purge %d doc(s)\n", result.DocsPurged)
		return nil
	}

	if !cmd.Force() {
		fmt.Fprint(cmd.Out(), "Permanently delete soft-deleted docs? This cannot be undone. [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("reading confirmation: %w", err))
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(cmd.Out(), "Cancelled")
			return nil
		}
	}

	result, err := s.PurgeDeleted(ctx, cutoff, false)

	log.Event("core:vacuum", "vacuum").
		Author(cmd.Author()).
		Detail("docs", result.DocsPurged).
		Detail("versions", result.VersionsPurged).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("vacuum: %w", err))
	}
	fmt.Fprintf(cmd.Out(), "Purged %d doc(s), %d version(s)\n", result.DocsPurged, result.VersionsPurged)

	// Vacuum extension tables (extensions with custom tables implement Vacuumable)
	cfg, err := config.Load()
	if err != nil {
		return cmd.PrintJSONError(err)
	}
	extCtx := extension.NewContext(s, cfg)
	var olderThanPtr *time.Duration
	if olderThan != "" {
		d, _ := duration.Parse(olderThan)
		olderThanPtr = &d
	}
	for _, ext := range extension.All() {
		if v, ok := ext.(extension.Vacuumable); ok {
			count, err := v.Vacuum(extCtx, olderThanPtr)
			if err != nil {
				return cmd.PrintJSONError(fmt.Errorf("vacuum extension %s: %w", ext.Name(), err))
			}
			if count > 0 {
				fmt.Fprintf(cmd.Out(), "Vacuumed %d row(s) from %s\n", count, ext.Name())
			}
		}
	}

	return nil
}
