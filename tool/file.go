package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathGuard confines file operations to a set of allowed root directories.
// Paths are made absolute, lexically cleaned, and symlink-resolved before
// comparison, so traversal segments and link tricks cannot escape a root.
type PathGuard struct {
	roots []string
}

// NewPathGuard creates a guard for the given roots. Relative roots are
// resolved against the current working directory.
func NewPathGuard(roots []string) *PathGuard {
	g := &PathGuard{}
	for _, root := range roots {
		if resolved, err := resolveReal(root); err == nil {
			g.roots = append(g.roots, resolved)
		}
	}
	return g
}

// resolveReal returns the absolute, symlink-resolved form of path. For paths
// that do not exist yet, the deepest existing ancestor is resolved and the
// remaining segments are re-joined.
func resolveReal(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)

	current := abs
	suffix := ""
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			return filepath.Join(resolved, suffix), nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return abs, nil
		}
		suffix = filepath.Join(filepath.Base(current), suffix)
		current = parent
	}
}

// Check resolves path and verifies containment in one of the allowed roots,
// returning the resolved path. Failure is a permission error.
func (g *PathGuard) Check(path string) (string, error) {
	resolved, err := resolveReal(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	for _, root := range g.roots {
		if resolved == root || strings.HasPrefix(resolved, root+string(os.PathSeparator)) {
			return resolved, nil
		}
	}
	return "", fmt.Errorf("permission denied: %s is outside the allowed directories", path)
}

// Roots returns the resolved allowed roots.
func (g *PathGuard) Roots() []string {
	out := make([]string, len(g.roots))
	copy(out, g.roots)
	return out
}

// ReadFileTool reads file contents from within the allowed roots.
type ReadFileTool struct {
	guard *PathGuard
}

// NewReadFileTool creates a ReadFileTool confined to the given directories.
func NewReadFileTool(allowedDirs []string) *ReadFileTool {
	return &ReadFileTool{guard: NewPathGuard(allowedDirs)}
}

func (t *ReadFileTool) Name() string { return "read_file" }

func (t *ReadFileTool) Description() string {
	return "Read the content of a file. Parameters: file_path (path to the file)."
}

func (t *ReadFileTool) Schema() map[string]any {
	return ObjectSchema(map[string]any{
		"file_path": StringProp("Path to the file to read"),
	}, "file_path")
}

func (t *ReadFileTool) Execute(_ context.Context, args map[string]any) (string, error) {
	path, ok := StringArg(args, "file_path")
	if !ok || path == "" {
		return "", fmt.Errorf("file_path is required")
	}
	resolved, err := t.guard.Check(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// WriteFileTool writes file contents within the allowed roots, creating
// parent directories as needed.
type WriteFileTool struct {
	guard *PathGuard
}

// NewWriteFileTool creates a WriteFileTool confined to the given directories.
func NewWriteFileTool(allowedDirs []string) *WriteFileTool {
	return &WriteFileTool{guard: NewPathGuard(allowedDirs)}
}

func (t *WriteFileTool) Name() string { return "write_file" }

func (t *WriteFileTool) Description() string {
	return "Write content to a file, replacing it unless append is true. Parameters: file_path, content, append (optional)."
}

func (t *WriteFileTool) Schema() map[string]any {
	return ObjectSchema(map[string]any{
		"file_path": StringProp("Path to the file to write"),
		"content":   StringProp("Content to write"),
		"append":    BoolProp("Append to the file instead of replacing it"),
	}, "file_path", "content")
}

func (t *WriteFileTool) Execute(_ context.Context, args map[string]any) (string, error) {
	path, ok := StringArg(args, "file_path")
	if !ok || path == "" {
		return "", fmt.Errorf("file_path is required")
	}
	content, ok := StringArg(args, "content")
	if !ok {
		return "", fmt.Errorf("content is required")
	}
	appendMode, _ := BoolArg(args, "append")

	resolved, err := t.guard.Check(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", fmt.Errorf("create directory for %s: %w", path, err)
	}

	if appendMode {
		f, err := os.OpenFile(resolved, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return "", fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		if _, err := f.WriteString(content); err != nil {
			return "", fmt.Errorf("append to %s: %w", path, err)
		}
	} else {
		if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
			return "", fmt.Errorf("write %s: %w", path, err)
		}
	}
	return fmt.Sprintf("wrote %d bytes to %s", len(content), path), nil
}

// ListDirectoryTool lists directory entries within the allowed roots.
type ListDirectoryTool struct {
	guard *PathGuard
}

// NewListDirectoryTool creates a ListDirectoryTool confined to the given
// directories.
func NewListDirectoryTool(allowedDirs []string) *ListDirectoryTool {
	return &ListDirectoryTool{guard: NewPathGuard(allowedDirs)}
}

func (t *ListDirectoryTool) Name() string { return "list_directory" }

func (t *ListDirectoryTool) Description() string {
	return "List the files and subdirectories of a directory. Parameters: directory_path, recursive (optional)."
}

func (t *ListDirectoryTool) Schema() map[string]any {
	return ObjectSchema(map[string]any{
		"directory_path": StringProp("Path to the directory to list"),
		"recursive":      BoolProp("List entries recursively"),
	}, "directory_path")
}

func (t *ListDirectoryTool) Execute(_ context.Context, args map[string]any) (string, error) {
	path, ok := StringArg(args, "directory_path")
	if !ok || path == "" {
		return "", fmt.Errorf("directory_path is required")
	}
	recursive, _ := BoolArg(args, "recursive")

	resolved, err := t.guard.Check(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", path)
	}

	var items []string
	if recursive {
		err = filepath.WalkDir(resolved, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if p == resolved {
				return nil
			}
			rel, relErr := filepath.Rel(resolved, p)
			if relErr != nil {
				rel = p
			}
			if d.IsDir() {
				items = append(items, "[DIR]  "+rel)
			} else {
				items = append(items, "[FILE] "+rel)
			}
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("walk %s: %w", path, err)
		}
	} else {
		entries, err := os.ReadDir(resolved)
		if err != nil {
			return "", fmt.Errorf("list %s: %w", path, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				items = append(items, "[DIR]  "+entry.Name())
			} else {
				items = append(items, "[FILE] "+entry.Name())
			}
		}
	}

	if len(items) == 0 {
		return "directory is empty", nil
	}
	return strings.Join(items, "\n"), nil
}
