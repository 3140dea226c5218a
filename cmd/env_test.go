// Testing Strategy Design Decision:
//
// The cmd/ package contains CLI integration tests that exercise the full
// stack: command parsing -> extension context -> store -> SQLite.
//
// Many internal packages show "[no test files]" - this is intentional.
// They are covered elsewhere:
//   - internal/store: covered by its own package tests (store_test.go)
//   - internal/rpcsurface, internal/mcpsurface: covered by their own
//     package tests exercising the repo/doc/search/graph/ai surface
//
// The CLI's own surface (init, config, vacuum, guide) is small by design -
// the repo/doc domain is driven over JSON-RPC/MCP, not CLI verbs - so these
// integration tests cover exactly that surface.

package cmd

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	binaryPath string
	buildOnce  sync.Once
	buildErr   error
)

// buildBinary compiles the mdkb binary once for all tests.
func buildBinary(t *testing.T) string {
	t.Helper()

	buildOnce.Do(func() {
		// Build to a temp location
		tmpDir, err := os.MkdirTemp("", "mdkb-test-bin-*")
		if err != nil {
			buildErr = err
			return
		}

		binaryName := "mdkb"
		if os.PathSeparator == '\\' {
			binaryName = "mdkb.exe"
		}
		binaryPath = filepath.Join(tmpDir, binaryName)

		// Find project root (parent of cmd/)
		wd := mustGetwd()
		projectRoot := filepath.Dir(wd)

		cmd := exec.Command("go", "build", "-o", binaryPath, ".")
		cmd.Dir = projectRoot
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = &buildError{err: err, output: string(out)}
			return
		}
	})

	if buildErr != nil {
		t.Fatalf("failed to build binary: %v", buildErr)
	}
	return binaryPath
}

type buildError struct {
	err    error
	output string
}

func (e *buildError) Error() string {
	return e.err.Error() + "\n" + e.output
}

func mustGetwd() string {
	dir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return dir
}

// testEnv holds test environment state.
type testEnv struct {
	t      *testing.T
	dir    string
	binary string
}

// newTestEnv creates a temporary directory with an initialised mdkb store.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	binary := buildBinary(t)
	dir := t.TempDir()

	env := &testEnv{t: t, dir: dir, binary: binary}

	env.run("init")

	return env
}

// run executes mdkb with the given args and returns stdout.
func (e *testEnv) run(args ...string) string {
	e.t.Helper()
	out, err := e.runErr(args...)
	if err != nil {
		e.t.Fatalf("mdkb %v failed: %v\noutput: %s", args, err, out)
	}
	return out
}

// runErr executes mdkb and returns stdout and any error.
func (e *testEnv) runErr(args ...string) (string, error) {
	e.t.Helper()

	cmd := exec.Command(e.binary, args...)
	cmd.Dir = e.dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// runStdin executes mdkb with stdin input.
func (e *testEnv) runStdin(input string, args ...string) string {
	e.t.Helper()
	out, err := e.runStdinErr(input, args...)
	if err != nil {
		e.t.Fatalf("mdkb %v failed: %v\noutput: %s", args, err, out)
	}
	return out
}

// runStdinErr executes mdkb with stdin input and returns any error.
func (e *testEnv) runStdinErr(input string, args ...string) (string, error) {
	e.t.Helper()

	cmd := exec.Command(e.binary, args...)
	cmd.Dir = e.dir
	cmd.Stdin = strings.NewReader(input)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// contains checks if output contains expected string.
func (e *testEnv) contains(output, expected string) {
	e.t.Helper()
	assert.Contains(e.t, output, expected)
}

// equals checks if output equals expected string (trimmed).
func (e *testEnv) equals(output, expected string) {
	e.t.Helper()
	assert.Equal(e.t, strings.TrimSpace(expected), strings.TrimSpace(output))
}

// testGuideContent returns the guide.md content for testing.
// Uses the actual project documentation as realistic test data.
func testGuideContent() string {
	wd := mustGetwd()
	projectRoot := filepath.Dir(wd)
	content, err := os.ReadFile(filepath.Join(projectRoot, "guide", "guide.md"))
	if err != nil {
		panic("failed to read guide/guide.md for tests: " + err.Error())
	}
	return string(content)
}
