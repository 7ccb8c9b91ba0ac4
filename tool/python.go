package tool

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
)

// PythonTool executes Python code in a subprocess. In persistent mode the
// tool accumulates previously executed code and replays it before each new
// snippet, approximating a REPL session; the session is private to one tool
// instance.
type PythonTool struct {
	interpreter    string
	defaultTimeout time.Duration
	guard          *PathGuard

	mu      sync.Mutex
	session []string
}

// PythonToolOption configures a PythonTool.
type PythonToolOption func(*PythonTool)

// WithPythonInterpreter overrides the interpreter binary (default python3).
func WithPythonInterpreter(path string) PythonToolOption {
	return func(t *PythonTool) { t.interpreter = path }
}

// WithPythonTimeout sets the default execution timeout.
func WithPythonTimeout(d time.Duration) PythonToolOption {
	return func(t *PythonTool) { t.defaultTimeout = d }
}

// NewPythonTool creates a PythonTool. save_to and run_file paths are confined
// to allowedDirs.
func NewPythonTool(allowedDirs []string, opts ...PythonToolOption) *PythonTool {
	t := &PythonTool{
		interpreter:    "python3",
		defaultTimeout: 30 * time.Second,
		guard:          NewPathGuard(allowedDirs),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *PythonTool) Name() string { return "python" }

func (t *PythonTool) Description() string {
	return "Execute Python code and return its output. Parameters: code (required unless run_file is set), " +
		"timeout (seconds, optional), save_to (save the code to a file, optional), " +
		"run_file (execute an existing Python file instead of code, optional), " +
		"persistent (keep variables between calls, optional)."
}

func (t *PythonTool) Schema() map[string]any {
	return ObjectSchema(map[string]any{
		"code":       StringProp("Python code to execute"),
		"timeout":    IntProp("Execution timeout in seconds (default 30)"),
		"save_to":    StringProp("Also save the code to this file path"),
		"run_file":   StringProp("Execute this Python file instead of inline code"),
		"persistent": BoolProp("Keep variables from previous persistent calls"),
	})
}

func (t *PythonTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	code, _ := StringArg(args, "code")
	runFile, _ := StringArg(args, "run_file")
	saveTo, _ := StringArg(args, "save_to")
	persistent, _ := BoolArg(args, "persistent")

	if code == "" && runFile == "" {
		return "", fmt.Errorf("either code or run_file is required")
	}
	if code != "" && runFile != "" {
		return "", fmt.Errorf("code and run_file are mutually exclusive")
	}

	timeout := t.defaultTimeout
	if secs, ok := IntArg(args, "timeout"); ok && secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}

	if saveTo != "" && code != "" {
		resolved, err := t.guard.Check(saveTo)
		if err != nil {
			return "", err
		}
		if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
			return "", fmt.Errorf("create directory for %s: %w", saveTo, err)
		}
		if err := os.WriteFile(resolved, []byte(code), 0o644); err != nil {
			return "", fmt.Errorf("save code to %s: %w", saveTo, err)
		}
	}

	if runFile != "" {
		resolved, err := t.guard.Check(runFile)
		if err != nil {
			return "", err
		}
		return t.runArgs(ctx, timeout, resolved)
	}

	if persistent {
		return t.runPersistent(ctx, timeout, code)
	}
	return t.runSnippet(ctx, timeout, code)
}

// runPersistent replays the accumulated session before the new snippet and
// appends the snippet to the session on success.
func (t *PythonTool) runPersistent(ctx context.Context, timeout time.Duration, code string) (string, error) {
	t.mu.Lock()
	combined := strings.Join(append(append([]string{}, t.session...), code), "\n")
	t.mu.Unlock()

	out, err := t.runSnippet(ctx, timeout, combined)
	if err != nil {
		return out, err
	}

	t.mu.Lock()
	t.session = append(t.session, code)
	t.mu.Unlock()
	return out, nil
}

// ResetSession clears the persistent session state.
func (t *PythonTool) ResetSession() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.session = nil
}

func (t *PythonTool) runSnippet(ctx context.Context, timeout time.Duration, code string) (string, error) {
	tmp, err := os.CreateTemp("", "sama-python-*.py")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(code); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	return t.runArgs(ctx, timeout, tmp.Name())
}

func (t *PythonTool) runArgs(ctx context.Context, timeout time.Duration, scriptPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.interpreter, scriptPath)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		if cmd.Process != nil {
			_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		return "", fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = err.Error()
			}
			return "", fmt.Errorf("python execution failed: %s", msg)
		}
		return "", fmt.Errorf("run python: %w", err)
	}

	out := stdout.String()
	if stderr.Len() > 0 {
		out += "\nstderr:\n" + stderr.String()
	}
	if strings.TrimSpace(out) == "" {
		return "code executed successfully with no output", nil
	}
	return out, nil
}
