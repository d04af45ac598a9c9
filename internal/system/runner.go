package system

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/creack/pty"
	"github.com/rs/zerolog"
)

// Runner abstracts external process invocation so orchestration logic can be
// tested without a real host.
type Runner interface {
	// Run executes a command and returns its combined output. A non-zero
	// exit is returned as an error wrapping the output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// Stream executes a long-running command through a PTY and forwards its
	// output line by line, so package manager progress stays visible.
	Stream(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands on the local host.
type ExecRunner struct {
	logger zerolog.Logger
}

// NewExecRunner creates a Runner backed by os/exec.
func NewExecRunner(logger zerolog.Logger) *ExecRunner {
	return &ExecRunner{logger: logger.With().Str("component", "runner").Logger()}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.logger.Debug().Str("cmd", name).Strs("args", args).Msg("exec")

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s %v: %s: %w", name, args, string(output), err)
	}
	return output, nil
}

// Stream uses a PTY so the child detects a terminal and emits progress
// output (yum draws download meters only on a tty).
func (r *ExecRunner) Stream(ctx context.Context, name string, args ...string) error {
	r.logger.Debug().Str("cmd", name).Strs("args", args).Msg("exec (stream)")

	cmd := exec.CommandContext(ctx, name, args...)
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	defer ptmx.Close()

	scanner := bufio.NewScanner(ptmx)
	for scanner.Scan() {
		r.logger.Info().Str("cmd", name).Msg(scanner.Text())
	}
	// EIO on PTY close when the child exits is expected; only the exit
	// status below matters.
	if err := scanner.Err(); err != nil && err != io.EOF {
		_ = err
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s %v: %w", name, args, err)
	}
	return nil
}
