package cmd

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Run("basic init", func(t *testing.T) {
		dir := t.TempDir()
		binary := buildBinary(t)

		cmd := exec.Command(binary, "init")
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "init failed: %s", out)

		assert.DirExists(t, filepath.Join(dir, ".mdkb"))
		assert.FileExists(t, filepath.Join(dir, ".mdkb", "mdkb.db"))
		// init does NOT create config.yaml - config is managed separately
		// via "mdkb config", following the git model where init just
		// creates store structure.
		assert.NoFileExists(t, filepath.Join(dir, ".mdkb", "config.yaml"))
	})
}

func TestInit_AlreadyInitialised(t *testing.T) {
	// init is idempotent: running it twice against the same store is safe
	// and does not error, unlike the old per-path document model.
	dir := t.TempDir()
	binary := buildBinary(t)

	cmd := exec.Command(binary, "init")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "first init failed: %s", out)

	cmd = exec.Command(binary, "init")
	cmd.Dir = dir
	out, err = cmd.CombinedOutput()
	require.NoError(t, err, "second init failed: %s", out)

	assert.FileExists(t, filepath.Join(dir, ".mdkb", "mdkb.db"))
}

func TestInit_DirAndLocalIncompatible(t *testing.T) {
	// --dir and --local are incompatible because:
	// - --local modifies the current project's .gitignore
	// - --dir creates the store in an external directory
	// Adding an external store to this project's gitignore makes no sense.
	dir := t.TempDir()
	targetDir := t.TempDir()
	binary := buildBinary(t)

	cmd := exec.Command(binary, "init", "--dir", targetDir, "--local")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	assert.Error(t, err, "init --dir --local should fail")
	assert.Contains(t, string(out), "cannot use --local with --dir")
}

func TestInit_Dir(t *testing.T) {
	// --dir creates the store in an external directory
	dir := t.TempDir()
	targetDir := t.TempDir()
	binary := buildBinary(t)

	cmd := exec.Command(binary, "init", "--dir", targetDir)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "init --dir failed: %s", out)

	// Store should be in target directory, not current directory
	assert.FileExists(t, filepath.Join(targetDir, ".mdkb", "mdkb.db"))
	assert.NoFileExists(t, filepath.Join(dir, ".mdkb", "mdkb.db"))
}

func TestInit_MDKBDirEnvVar(t *testing.T) {
	dir := t.TempDir()
	targetDir := t.TempDir()
	binary := buildBinary(t)

	cmd := exec.Command(binary, "init")
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "MDKB_DIR="+targetDir)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "init with MDKB_DIR failed: %s", out)

	assert.FileExists(t, filepath.Join(targetDir, ".mdkb", "mdkb.db"))
}

func TestInit_Local(t *testing.T) {
	t.Run("local flag adds to gitignore", func(t *testing.T) {
		dir := t.TempDir()
		binary := buildBinary(t)

		cmd := exec.Command(binary, "init", "--local")
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "init --local failed: %s", out)

		assert.FileExists(t, filepath.Join(dir, ".mdkb", "mdkb.db"))

		gitignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
		require.NoError(t, err)
		assert.Contains(t, string(gitignore), ".mdkb/")
	})

	t.Run("idempotent", func(t *testing.T) {
		dir := t.TempDir()
		binary := buildBinary(t)

		for range 2 {
			cmd := exec.Command(binary, "init", "--local")
			cmd.Dir = dir
			out, err := cmd.CombinedOutput()
			require.NoError(t, err, "init --local failed: %s", out)
		}

		gitignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
		require.NoError(t, err)
		assert.Equal(t, 1, countLines(string(gitignore), ".mdkb/"))
	})
}

func countLines(content, line string) int {
	n := 0
	for _, l := range splitLines(content) {
		if l == line {
			n++
		}
	}
	return n
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
