package tool

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathGuardContainment(t *testing.T) {
	root := t.TempDir()
	guard := NewPathGuard([]string{root})

	inside := filepath.Join(root, "sub", "file.txt")
	resolved, err := guard.Check(inside)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(resolved))

	_, err = guard.Check(filepath.Join(root, "..", "escape.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")

	_, err = guard.Check("/etc/passwd")
	assert.Error(t, err)
}

func TestPathGuardTraversalInsideRoot(t *testing.T) {
	root := t.TempDir()
	guard := NewPathGuard([]string{root})

	// Traversal that stays within the root is fine.
	resolved, err := guard.Check(filepath.Join(root, "a", "..", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(resolved), "b.txt")
}

func TestPathGuardSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	link := filepath.Join(root, "link")
	require.NoError(t, os.Symlink(outside, link))

	guard := NewPathGuard([]string{root})
	_, err := guard.Check(filepath.Join(link, "secret.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestReadWriteRoundTrip(t *testing.T) {
	root := t.TempDir()
	write := NewWriteFileTool([]string{root})
	read := NewReadFileTool([]string{root})

	path := filepath.Join(root, "notes", "hello.txt")
	out, err := write.Execute(context.Background(), map[string]any{
		"file_path": path,
		"content":   "hello world",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "11 bytes")

	content, err := read.Execute(context.Background(), map[string]any{"file_path": path})
	require.NoError(t, err)
	assert.Equal(t, "hello world", content)
}

func TestWriteFileAppend(t *testing.T) {
	root := t.TempDir()
	write := NewWriteFileTool([]string{root})
	path := filepath.Join(root, "log.txt")

	_, err := write.Execute(context.Background(), map[string]any{
		"file_path": path, "content": "one\n",
	})
	require.NoError(t, err)
	_, err = write.Execute(context.Background(), map[string]any{
		"file_path": path, "content": "two\n", "append": true,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(data))
}

func TestWriteFileOutsideRootDenied(t *testing.T) {
	root := t.TempDir()
	write := NewWriteFileTool([]string{root})

	_, err := write.Execute(context.Background(), map[string]any{
		"file_path": "/tmp/anywhere.txt",
		"content":   "nope",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestReadFileMissing(t *testing.T) {
	root := t.TempDir()
	read := NewReadFileTool([]string{root})

	_, err := read.Execute(context.Background(), map[string]any{
		"file_path": filepath.Join(root, "absent.txt"),
	})
	assert.Error(t, err)
}

func TestListDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "util.go"), []byte("package pkg"), 0o644))

	list := NewListDirectoryTool([]string{root})

	out, err := list.Execute(context.Background(), map[string]any{"directory_path": root})
	require.NoError(t, err)
	assert.Contains(t, out, "[FILE] main.go")
	assert.Contains(t, out, "[DIR]  pkg")
	assert.NotContains(t, out, "util.go")

	out, err = list.Execute(context.Background(), map[string]any{
		"directory_path": root, "recursive": true,
	})
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join("pkg", "util.go"))
}

func TestListDirectoryEmpty(t *testing.T) {
	root := t.TempDir()
	list := NewListDirectoryTool([]string{root})

	out, err := list.Execute(context.Background(), map[string]any{"directory_path": root})
	require.NoError(t, err)
	assert.Equal(t, "directory is empty", out)
}
