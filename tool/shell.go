package tool

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// ShellPolicy controls which commands the shell tool will run.
type ShellPolicy string

const (
	PolicyAllowAll  ShellPolicy = "allow_all"
	PolicyDenyAll   ShellPolicy = "deny_all"
	PolicyWhitelist ShellPolicy = "whitelist"
)

// dangerousCommands are refused in every policy mode.
var dangerousCommands = []string{
	"rm -rf /",
	"rm -rf /*",
	"mkfs",
	"dd if=",
	":(){:|:&};:",
	"chmod -R 777 /",
	"> /dev/sda",
}

// defaultWhitelist is used when no whitelist is configured.
var defaultWhitelist = []string{
	"echo", "ls", "cat", "pwd", "head", "tail", "grep", "find", "which",
	"wc", "date", "git", "go",
}

// ShellTool executes commands in the system shell under a configurable
// policy, with a bounded timeout.
type ShellTool struct {
	policy         ShellPolicy
	whitelist      []string
	defaultTimeout time.Duration
	workingDir     string
}

// ShellToolOption configures a ShellTool.
type ShellToolOption func(*ShellTool)

// WithShellPolicy sets the command policy.
func WithShellPolicy(policy ShellPolicy) ShellToolOption {
	return func(t *ShellTool) { t.policy = policy }
}

// WithShellWhitelist sets the allowed command prefixes for PolicyWhitelist.
func WithShellWhitelist(whitelist []string) ShellToolOption {
	return func(t *ShellTool) { t.whitelist = whitelist }
}

// WithShellTimeout sets the default execution timeout.
func WithShellTimeout(d time.Duration) ShellToolOption {
	return func(t *ShellTool) { t.defaultTimeout = d }
}

// WithShellWorkingDir sets the default working directory.
func WithShellWorkingDir(dir string) ShellToolOption {
	return func(t *ShellTool) { t.workingDir = dir }
}

// NewShellTool creates a ShellTool. Defaults: whitelist policy, 30s timeout,
// process working directory.
func NewShellTool(opts ...ShellToolOption) *ShellTool {
	t := &ShellTool{
		policy:         PolicyWhitelist,
		whitelist:      defaultWhitelist,
		defaultTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *ShellTool) Name() string { return "shell" }

func (t *ShellTool) Description() string {
	return "Execute a command in the system shell and return its stdout/stderr. " +
		"Parameters: command (required), timeout (seconds, optional), working_directory (optional). " +
		"Prefer absolute paths over cd; use the file tools for reading and writing files."
}

func (t *ShellTool) Schema() map[string]any {
	return ObjectSchema(map[string]any{
		"command":           StringProp("Shell command to execute"),
		"timeout":           IntProp("Execution timeout in seconds (default 30)"),
		"working_directory": StringProp("Working directory for the command"),
	}, "command")
}

// allowed checks the command against the dangerous list and the policy.
func (t *ShellTool) allowed(command string) error {
	for _, dangerous := range dangerousCommands {
		if strings.Contains(command, dangerous) {
			return fmt.Errorf("command refused: contains dangerous operation %q", dangerous)
		}
	}

	switch t.policy {
	case PolicyAllowAll:
		return nil
	case PolicyDenyAll:
		return fmt.Errorf("shell tool is disabled by policy")
	case PolicyWhitelist:
		fields := strings.Fields(command)
		if len(fields) == 0 {
			return fmt.Errorf("empty command")
		}
		name := strings.ToLower(fields[0])
		for _, allowed := range t.whitelist {
			if name == strings.ToLower(allowed) {
				return nil
			}
		}
		return fmt.Errorf("command %q is not in the whitelist", name)
	default:
		return fmt.Errorf("unknown shell policy: %s", t.policy)
	}
}

func (t *ShellTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	command, ok := StringArg(args, "command")
	if !ok || command == "" {
		return "", fmt.Errorf("command is required")
	}
	if err := t.allowed(command); err != nil {
		return "", err
	}

	timeout := t.defaultTimeout
	if secs, ok := IntArg(args, "timeout"); ok && secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}

	workDir := t.workingDir
	if wd, ok := StringArg(args, "working_directory"); ok && wd != "" {
		workDir = wd
	}
	if workDir != "" {
		if info, err := os.Stat(workDir); err != nil || !info.IsDir() {
			return "", fmt.Errorf("working directory does not exist: %s", workDir)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "/bin/bash", "-c", command)
	cmd.Dir = workDir
	// Own process group so a timeout can kill the whole tree.
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

	var parts []string
	if stdout.Len() > 0 {
		parts = append(parts, "stdout:\n"+stdout.String())
	}
	if stderr.Len() > 0 {
		parts = append(parts, "stderr:\n"+stderr.String())
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			parts = append(parts, fmt.Sprintf("exit code: %d", exitErr.ExitCode()))
			return strings.Join(parts, "\n\n"), nil
		}
		return "", fmt.Errorf("execute command: %w", err)
	}

	if len(parts) == 0 {
		return "command succeeded with no output", nil
	}
	return strings.Join(parts, "\n\n"), nil
}
