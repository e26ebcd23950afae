package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/Lin-Jiong-HDU/execguard/internal/core/security"
)

// PreExecFunc inspects an execution attempt before the process starts.
// A non-nil error aborts the attempt.
type PreExecFunc func(ctx context.Context, argv []string) error

// Executor handles command execution. Every registered pre-exec hook must
// allow a command before it is started.
type Executor struct {
	timeout time.Duration
	stdout  io.Writer
	stderr  io.Writer

	mu    sync.RWMutex
	hooks []PreExecFunc
}

// NewExecutor creates a new executor
func NewExecutor(timeout time.Duration) *Executor {
	return &Executor{
		timeout: timeout,
	}
}

// WithOutput streams the process output to stdout and stderr in addition
// to capturing it.
func (e *Executor) WithOutput(stdout, stderr io.Writer) *Executor {
	e.stdout = stdout
	e.stderr = stderr
	return e
}

// RegisterPreExec adds a hook that is consulted before every execution.
func (e *Executor) RegisterPreExec(fn PreExecFunc) error {
	if fn == nil {
		return fmt.Errorf("%w: nil pre-exec hook", security.ErrHookRegistrationFailed)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, fn)
	return nil
}

// Result represents command execution result
type Result struct {
	Output   string
	ExitCode int
	Error    error
}

// Execute runs a command and returns the result. A command rejected by a
// pre-exec hook is not started and the hook error is returned.
func (e *Executor) Execute(ctx context.Context, cmd Command) (*Result, error) {
	// Hooks may block on a confirmation, so they run before the
	// execution timeout starts.
	if err := e.preExec(ctx, cmd.Argv()); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	execCmd := exec.CommandContext(ctx, cmd.Cmd, cmd.Args...)

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = teeWriter(&stdout, e.stdout)
	execCmd.Stderr = teeWriter(&stderr, e.stderr)

	err := execCmd.Run()

	output := stdout.String()
	if stderr.Len() > 0 {
		output += "\n" + stderr.String()
	}

	result := &Result{
		Output: strings.TrimSpace(output),
	}

	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitError.ExitCode()
		} else {
			result.ExitCode = -1
		}
		result.Error = err
	}

	return result, nil
}

func (e *Executor) preExec(ctx context.Context, argv []string) error {
	e.mu.RLock()
	hooks := make([]PreExecFunc, len(e.hooks))
	copy(hooks, e.hooks)
	e.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, argv); err != nil {
			return err
		}
	}
	return nil
}

func teeWriter(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}
