//go:build !windows

package process_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gypgo/gypgo/pkg/process"
)

func TestRunCleanExit(t *testing.T) {
	s := process.NewSupervisor(nil)
	var out bytes.Buffer

	err := s.Run(context.Background(), process.Invocation{
		Command: "sh",
		Args:    []string{"-c", "echo hello"},
		Stdout:  &out,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != "hello" {
		t.Errorf("stdout = %q, want %q", got, "hello")
	}
}

func TestRunExitCode(t *testing.T) {
	s := process.NewSupervisor(nil)

	err := s.Run(context.Background(), process.Invocation{
		Command: "sh",
		Args:    []string{"-c", "exit 2"},
	})

	var procErr *process.Error
	if !errors.As(err, &procErr) {
		t.Fatalf("err = %v, want *process.Error", err)
	}
	if procErr.ExitCode != 2 {
		t.Errorf("ExitCode = %d, want 2", procErr.ExitCode)
	}
	if want := "`sh` failed with exit code: 2"; procErr.Error() != want {
		t.Errorf("Error() = %q, want %q", procErr.Error(), want)
	}
}

func TestRunSignal(t *testing.T) {
	s := process.NewSupervisor(nil)

	err := s.Run(context.Background(), process.Invocation{
		Command: "sh",
		Args:    []string{"-c", "kill -TERM $$"},
	})

	var procErr *process.Error
	if !errors.As(err, &procErr) {
		t.Fatalf("err = %v, want *process.Error", err)
	}
	if procErr.Signal != "SIGTERM" {
		t.Errorf("Signal = %q, want SIGTERM", procErr.Signal)
	}
	if want := "`sh` got signal: SIGTERM"; procErr.Error() != want {
		t.Errorf("Error() = %q, want %q", procErr.Error(), want)
	}
}

func TestRunMissingCommand(t *testing.T) {
	s := process.NewSupervisor(nil)

	err := s.Run(context.Background(), process.Invocation{
		Command: "definitely-not-a-real-command",
	})
	if err == nil {
		t.Fatal("expected an error for a missing command")
	}
	var procErr *process.Error
	if errors.As(err, &procErr) {
		t.Errorf("err = %v, want a plain spawn failure, not *process.Error", err)
	}
}

func TestRunStderr(t *testing.T) {
	s := process.NewSupervisor(nil)
	var out, errOut bytes.Buffer

	err := s.Run(context.Background(), process.Invocation{
		Command: "sh",
		Args:    []string{"-c", "echo oops >&2"},
		Stdout:  &out,
		Stderr:  &errOut,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(errOut.String()); got != "oops" {
		t.Errorf("stderr = %q, want %q", got, "oops")
	}
	if out.Len() != 0 {
		t.Errorf("stdout = %q, want empty", out.String())
	}
}
