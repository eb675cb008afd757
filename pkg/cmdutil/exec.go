package cmdutil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
)

// Options configures a single external command invocation.
type Options struct {
	// Dir is the working directory for the command.
	Dir string

	// Timeout bounds the execution time. Zero means no timeout.
	Timeout time.Duration

	// Env contains environment variables in "KEY=value" form.
	// Nil inherits the parent environment.
	Env []string
}

// Result captures the outcome of a command invocation.
type Result struct {
	// Stdout is the captured standard output.
	Stdout []byte

	// Stderr is the captured standard error.
	Stderr []byte

	// ExitCode is the command's exit code (-1 if it never ran).
	ExitCode int

	// Duration is the wall-clock execution time.
	Duration time.Duration
}

// Run executes cmdParts[0] with the remaining parts as arguments.
// Stdout and stderr are captured separately so callers can parse
// machine-readable output while still reporting tool diagnostics.
func Run(ctx context.Context, opts Options, cmdParts []string) (*Result, error) {
	if len(cmdParts) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, cmdParts[0], cmdParts[1:]...)
	cmd.Dir = opts.Dir
	cmd.Env = opts.Env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: -1,
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		return result, fmt.Errorf("command failed: %w", err)
	}
	return result, nil
}

// RunSimple executes a command with default options and returns its
// stdout. Stderr is folded into the error on failure.
func RunSimple(ctx context.Context, workDir string, cmdParts []string) ([]byte, error) {
	result, err := Run(ctx, Options{Dir: workDir}, cmdParts)
	if err != nil {
		msg := strings.TrimSpace(string(result.Stderr))
		if msg == "" {
			return result.Stdout, err
		}
		return result.Stdout, fmt.Errorf("%w: %s", err, msg)
	}
	return result.Stdout, nil
}

// ParseCommandString splits a shell-quoted command string into parts.
//
// Example:
//
//	"npm run build --silent" -> ["npm", "run", "build", "--silent"]
func ParseCommandString(cmdStr string) ([]string, error) {
	parts, err := shellquote.Split(cmdStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command string: %w", err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty command string")
	}
	return parts, nil
}

// ParseCommandList accepts the two command forms allowed in YAML
// configuration, a quoted string or an explicit argument list, and
// normalizes both to a parts slice.
func ParseCommandList(cmd interface{}) ([]string, error) {
	switch v := cmd.(type) {
	case string:
		return ParseCommandString(v)
	case []interface{}:
		parts := make([]string, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("command list item %d is not a string: %T", i, item)
			}
			parts[i] = str
		}
		if len(parts) == 0 {
			return nil, fmt.Errorf("empty command list")
		}
		return parts, nil
	case []string:
		if len(v) == 0 {
			return nil, fmt.Errorf("empty command list")
		}
		return v, nil
	default:
		return nil, fmt.Errorf("invalid command type: %T (must be string or list)", cmd)
	}
}

// FormatCommand renders command parts as a single loggable string,
// quoting arguments that contain whitespace or quotes.
func FormatCommand(cmdParts []string) string {
	if len(cmdParts) == 0 {
		return "<empty command>"
	}
	quoted := make([]string, len(cmdParts))
	for i, part := range cmdParts {
		if strings.ContainsAny(part, " \t\n\"'") {
			quoted[i] = shellquote.Join(part)
		} else {
			quoted[i] = part
		}
	}
	return strings.Join(quoted, " ")
}
