// Package process provides child process supervision for the pipeline
package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/gypgo/gypgo/pkg/logger"
)

// Invocation describes one external tool run.
type Invocation struct {
	Command string
	Args    []string
	Dir     string

	// Env is the full environment for the child; nil inherits the
	// parent's environment.
	Env []string

	// Stdout and Stderr receive the child's output; nil defaults to
	// the parent's streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Error reports an external tool that terminated unsuccessfully.
type Error struct {
	Command  string
	ExitCode int
	Signal   string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Signal != "" {
		return fmt.Sprintf("`%s` got signal: %s", e.Command, e.Signal)
	}
	return fmt.Sprintf("`%s` failed with exit code: %d", e.Command, e.ExitCode)
}

// Supervisor spawns external tools and maps their termination status
// to success or a typed failure.
type Supervisor struct {
	logger logger.Logger
}

// NewSupervisor creates a new supervisor
func NewSupervisor(log logger.Logger) *Supervisor {
	return &Supervisor{logger: log}
}

// Run spawns the invocation and waits for it to terminate. A clean
// exit returns nil; any other termination returns a *Error naming the
// command and its exit code or signal.
func (s *Supervisor) Run(ctx context.Context, inv Invocation) error {
	cmd := exec.CommandContext(ctx, inv.Command, inv.Args...)
	cmd.Dir = inv.Dir
	if inv.Env != nil {
		cmd.Env = inv.Env
	}

	stdout := inv.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := inv.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	outPipe, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	errPipe, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("spawning",
			logger.WithField("command", inv.Command),
			logger.WithField("args", inv.Args))
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to spawn `%s`: %w", inv.Command, err)
	}

	var pumps errgroup.Group
	pumps.Go(func() error {
		_, err := io.Copy(stdout, outPipe)
		return err
	})
	pumps.Go(func() error {
		_, err := io.Copy(stderr, errPipe)
		return err
	})
	// Drain both streams before Wait closes the pipes.
	pumpErr := pumps.Wait()

	if err := cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitStatusError(inv.Command, exitErr)
		}
		return fmt.Errorf("`%s` failed: %w", inv.Command, err)
	}
	if pumpErr != nil {
		return fmt.Errorf("failed to read `%s` output: %w", inv.Command, pumpErr)
	}
	return nil
}

// exitStatusError converts an exec.ExitError into a *Error, preferring
// the terminating signal name over the synthetic -1 exit code.
func exitStatusError(command string, exitErr *exec.ExitError) error {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return &Error{Command: command, Signal: signalName(status.Signal())}
	}
	return &Error{Command: command, ExitCode: exitErr.ExitCode()}
}
