// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package buildcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/matt-FFFFFF/confbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/confbatch/internal/lastline"
	"github.com/matt-FFFFFF/confbatch/internal/signalbroker"
)

const (
	// DefaultShell is the interpreter the build script is handed to.
	DefaultShell = "/bin/bash"

	maxCapture     = 8 * 1024 * 1024 // 8MB
	maxLastLine    = 120
)

// tickerInterval is how often a running build is reported.
var tickerInterval = 30 * time.Second

var (
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrShellNotFound is returned when the shell cannot be resolved.
	ErrShellNotFound = errors.New("shell not found")
	// ErrFailedToCreatePipe is returned when an output pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrTimeoutExceeded is returned when the context is done before the process exits.
	ErrTimeoutExceeded = errors.New("timeout exceeded")
	// ErrSignalReceived is returned when a signal was forwarded to the process.
	ErrSignalReceived = errors.New("signal received")
	// ErrDuplicateSignalReceived is returned when a second signal forced the process to be killed.
	ErrDuplicateSignalReceived = errors.New("duplicate signal received, process forcefully terminated")
)

// Command is a single build invocation.
type Command struct {
	Label  string            // Shown in progress and log lines
	Path   string            // Absolute path of the executable
	Args   []string          // Arguments, excluding the executable name
	Cwd    string            // Working directory, empty means the current one
	Env    map[string]string // Added to the inherited environment
	Stdout io.Writer         // Receives the child's stdout, nil discards
	Stderr io.Writer         // Receives the child's stderr, nil discards

	sigCh chan os.Signal // Injected by tests; otherwise subscribed per run
}

// Result is the outcome of a build invocation.
type Result struct {
	ExitCode  int           // -1 when the process did not exit normally
	Error     error         // Start failure, kill reason, or nil
	StdErr    []byte        // Captured stderr, up to 8MB
	Truncated bool          // Whether StdErr was cut short
	Duration  time.Duration // Wall time from start to exit
}

// Success reports whether the process exited with status 0 and no error.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0 && r.Error == nil
}

// New builds a Command that runs script with shell. A shell without a path
// separator is looked up in PATH.
func New(shell, script, cwd string) (*Command, error) {
	if shell == "" {
		shell = DefaultShell
	}

	path, err := resolveShell(shell)
	if err != nil {
		return nil, err
	}

	return &Command{
		Label: script,
		Path:  path,
		Args:  []string{script},
		Cwd:   cwd,
	}, nil
}

func resolveShell(shell string) (string, error) {
	if filepath.IsAbs(shell) {
		return shell, nil
	}

	path, err := exec.LookPath(shell)
	if err != nil {
		return "", errors.Join(ErrShellNotFound, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Join(ErrShellNotFound, err)
	}

	return abs, nil
}

// Run starts the process and blocks until it exits.
func (c *Command) Run(ctx context.Context) *Result {
	logger := ctxlog.Logger(ctx).With("label", c.Label)
	logger.Debug("command info", "path", c.Path, "cwd", c.Cwd, "args", c.Args)

	res := &Result{}

	sigCh := c.sigCh
	if sigCh == nil {
		sigCh = signalbroker.New(ctx)
		defer signalbroker.Stop(sigCh)
	}

	env := os.Environ()
	for k, v := range c.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	rOut, wOut, err := os.Pipe()
	if err != nil {
		res.Error = errors.Join(ErrFailedToCreatePipe, err)
		res.ExitCode = -1

		return res
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		closeAll(rOut, wOut)
		res.Error = errors.Join(ErrFailedToCreatePipe, err)
		res.ExitCode = -1

		return res
	}

	capture := &capWriter{max: maxCapture}
	progress := &lastline.Writer{}

	var pumps sync.WaitGroup

	pumps.Add(2)

	go pump(&pumps, rOut, io.MultiWriter(orDiscard(c.Stdout), progress))
	go pump(&pumps, rErr, io.MultiWriter(orDiscard(c.Stderr), capture))

	args := slices.Concat([]string{filepath.Base(c.Path)}, c.Args)
	start := time.Now()

	ps, err := os.StartProcess(c.Path, args, &os.ProcAttr{
		Dir:   c.Cwd,
		Env:   env,
		Files: []*os.File{os.Stdin, wOut, wErr},
	})
	if err != nil {
		closeAll(wOut, wErr)
		pumps.Wait()
		closeAll(rOut, rErr)

		res.Error = errors.Join(ErrCouldNotStartProcess, err)
		res.ExitCode = -1

		return res
	}

	logger.Debug("process started", "pid", ps.Pid)

	done := make(chan struct{})

	var (
		watchdog sync.WaitGroup
		killErr  error
	)

	watchdog.Add(1)

	go func() {
		defer watchdog.Done()
		killErr = supervise(ctx, ps, sigCh, done, wErr, progress, c.Label, start)
	}()

	state, waitErr := ps.Wait()
	res.Duration = time.Since(start)

	close(done)
	watchdog.Wait()

	closeAll(wOut, wErr)
	pumps.Wait()
	closeAll(rOut, rErr)

	res.Error = waitErr
	res.ExitCode = -1

	if state != nil {
		res.ExitCode = state.ExitCode()
	}

	if killErr != nil {
		res.Error = errors.Join(res.Error, killErr)
		res.ExitCode = -1
	}

	res.StdErr = capture.Bytes()
	res.Truncated = capture.truncated

	logger.Debug("process finished", "exitCode", res.ExitCode, "duration", res.Duration.String())

	return res
}

// supervise forwards signals, kills on the second signal of a kind or on a done
// context, and logs a heartbeat for long builds. It returns when done is closed,
// with every reason the process was interfered with.
func supervise(
	ctx context.Context,
	ps *os.Process,
	sigCh <-chan os.Signal,
	done <-chan struct{},
	stderr io.Writer,
	progress *lastline.Writer,
	label string,
	start time.Time,
) error {
	logger := ctxlog.Logger(ctx).With("label", label, "pid", ps.Pid)
	seen := make(map[os.Signal]struct{})

	ticker := time.NewTicker(tickerInterval)
	defer ticker.Stop()

	var reasons []error

	report := func(err error) {
		reasons = append(reasons, err)
	}

	ctxDone := ctx.Done()

	for {
		select {
		case <-done:
			return errors.Join(reasons...)

		case <-ticker.C:
			attrs := []any{
				"elapsed", time.Since(start).Round(time.Second).String(),
				"lastLine", progress.Last(maxLastLine),
			}

			// progress meters redraw one line with \r and never finish it
			if p := progress.Partial(); p != "" {
				attrs = append(attrs, "partialLine", p)
			}

			logger.Info("build still running", attrs...)

		case s := <-sigCh:
			if _, dup := seen[s]; dup {
				logger.Warn("received duplicate signal, killing process", "signal", s.String())
				fmt.Fprintf(stderr, "received duplicate signal, killing process: %s\n", s) //nolint:errcheck
				kill(ctx, ps)
				report(ErrDuplicateSignalReceived)

				continue
			}

			seen[s] = struct{}{}

			logger.Info("forwarding signal", "signal", s.String())
			fmt.Fprintf(stderr, "received signal: %s\n", s) //nolint:errcheck

			if err := ps.Signal(s); err != nil {
				logger.Info("failed to forward signal", "signal", s.String(), "error", err)
			}

			report(ErrSignalReceived)

		case <-ctxDone:
			logger.Info("context done, killing process")
			fmt.Fprintln(stderr, "context done, killing process") //nolint:errcheck
			kill(ctx, ps)
			report(ErrTimeoutExceeded)

			ctxDone = nil
		}
	}
}

func kill(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Debug(ctx, "process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Error(ctx, "process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Info(ctx, "process killed", "pid", ps.Pid)
}

func pump(wg *sync.WaitGroup, r io.Reader, w io.Writer) {
	defer wg.Done()
	io.Copy(w, r) //nolint:errcheck
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}

	return w
}

func closeAll(fs ...*os.File) {
	for _, f := range fs {
		_ = f.Close()
	}
}
