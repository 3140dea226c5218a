// store.go resolves the on-disk location of the CLI's SQLite store and
// manages the local .gitignore entry for it.
//
// Separated out because init, vacuum, and any future store-opening command
// all need the same path resolution: an explicit --dir, falling back to the
// current working directory, with the store always living under .mdkb/.
package core

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const storeDirName = ".mdkb"
const storeFileName = "mdkb.db"

// storePath returns the SQLite store path under dir (or the current
// directory if dir is empty).
func storePath(dir string) string {
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, storeDirName, storeFileName)
}

// markLocal appends the store directory to dir's .gitignore, creating the
// file if necessary. It is idempotent: re-running init --local does not
// duplicate the entry.
func markLocal(dir string) error {
	if dir == "" {
		dir = "."
	}
	gitignore := filepath.Join(dir, ".gitignore")
	entry := storeDirName + "/"

	existing, err := os.ReadFile(gitignore)
	if err == nil {
		for _, line := range strings.Split(string(existing), "\n") {
			if strings.TrimSpace(line) == entry {
				return nil
			}
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", gitignore, err)
	}

	f, err := os.OpenFile(gitignore, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", gitignore, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, entry)
	return w.Flush()
}
