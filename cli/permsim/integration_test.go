//go:build integration

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/permsim/internal/cli"
)

// execPermsim runs the root command with the given args and returns the
// combined command output.
func execPermsim(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return buf.String(), err
}

// buildTree creates relative paths under a fresh temp dir; entries ending in
// "/" become directories.
func buildTree(t *testing.T, paths ...string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.Chmod(root, 0o755))
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if p[len(p)-1] == '/' {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(p), 0o644))
	}
	return root
}

func modeOf(t *testing.T, path string) os.FileMode {
	t.Helper()
	info, err := os.Lstat(path)
	require.NoError(t, err)
	return info.Mode().Perm()
}

// emptyConfig returns a config path that does not exist, so runs use pure
// defaults regardless of the developer machine.
func emptyConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.yaml")
}

func TestVersionCommand(t *testing.T) {
	out, err := execPermsim(t, context.Background(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "permsim version")
}

func TestRun_AppliesAndRestoresWithHold(t *testing.T) {
	root := buildTree(t, "f.txt")

	out, err := execPermsim(t, context.Background(),
		"--config", emptyConfig(t),
		"-p", "0400", "-r", "--hold", "10ms", "--no-color", root)
	require.NoError(t, err)

	assert.Contains(t, out, "applied=2")
	assert.Contains(t, out, "restored=2")
	assert.Equal(t, os.FileMode(0o644), modeOf(t, filepath.Join(root, "f.txt")))
	assert.Equal(t, os.FileMode(0o755), modeOf(t, root))
}

func TestRun_NoRestoreLeavesState(t *testing.T) {
	root := buildTree(t, "f.txt")
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(root, "f.txt"), 0o644) })

	out, err := execPermsim(t, context.Background(),
		"--config", emptyConfig(t),
		"-p", "0600", "--no-restore", "--no-color", root)
	require.NoError(t, err)

	assert.Contains(t, out, "applied=1")
	assert.Contains(t, out, "restored=0")
	assert.Equal(t, os.FileMode(0o600), modeOf(t, filepath.Join(root, "f.txt")))
}

func TestRun_ExclusionPattern(t *testing.T) {
	root := buildTree(t, "a/x.txt", "a/b/y.txt")

	out, err := execPermsim(t, context.Background(),
		"--config", emptyConfig(t),
		"-p", "0400", "-r", "-e", "a/b/*", "--no-restore", "--no-color", "-v", root)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = os.Chmod(root, 0o755)
		_ = os.Chmod(filepath.Join(root, "a"), 0o755)
		_ = os.Chmod(filepath.Join(root, "a/b"), 0o755)
	})

	assert.Contains(t, out, "excluded=1")

	require.NoError(t, os.Chmod(root, 0o755))
	require.NoError(t, os.Chmod(filepath.Join(root, "a"), 0o755))
	require.NoError(t, os.Chmod(filepath.Join(root, "a/b"), 0o755))
	assert.Equal(t, os.FileMode(0o400), modeOf(t, filepath.Join(root, "a/x.txt")))
	assert.Equal(t, os.FileMode(0o644), modeOf(t, filepath.Join(root, "a/b/y.txt")))
}

func TestRun_InterruptRestores(t *testing.T) {
	root := buildTree(t, "f.txt")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Simulated Ctrl-C shortly after the hold phase begins.
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := execPermsim(t, ctx,
		"--config", emptyConfig(t),
		"-p", "0000", "-r", "--no-color", root)
	require.NoError(t, err)

	assert.Equal(t, os.FileMode(0o644), modeOf(t, filepath.Join(root, "f.txt")))
	assert.Equal(t, os.FileMode(0o755), modeOf(t, root))
}

func TestRun_FatalErrors(t *testing.T) {
	root := buildTree(t, "f.txt")

	tests := []struct {
		name string
		args []string
	}{
		{"invalid permissions", []string{"-p", "not-a-mode", root}},
		{"invalid pattern", []string{"-p", "0400", "-e", "a/[", root}},
		{"missing root", []string{"-p", "0400", filepath.Join(root, "absent")}},
		{"root is a file", []string{"-p", "0400", filepath.Join(root, "f.txt")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", emptyConfig(t)}, tt.args...)
			_, err := execPermsim(t, context.Background(), args...)
			require.Error(t, err)

			// Fail closed: the tree is untouched.
			assert.Equal(t, os.FileMode(0o644), modeOf(t, filepath.Join(root, "f.txt")))
		})
	}
}

func TestRun_ConfigDefaults(t *testing.T) {
	root := buildTree(t, "a/x.txt")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfgYAML := "settings:\n  permissions: \"0500\"\n  recursive: true\n  hold: 10ms\n  no_color: true\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))

	out, err := execPermsim(t, context.Background(), "--config", cfgPath, root)
	require.NoError(t, err)

	assert.Contains(t, out, "applied=3")
	assert.Contains(t, out, "restored=3")
	assert.Equal(t, os.FileMode(0o644), modeOf(t, filepath.Join(root, "a/x.txt")))
}
