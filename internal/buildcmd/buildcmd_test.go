// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package buildcmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/matt-FFFFFF/confbatch/internal/ctxlog"
	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("build scripts are POSIX shell scripts")
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "build.sh")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))

	return path
}

func newTestCommand(t *testing.T, body string) *Command {
	t.Helper()

	cmd, err := New("/bin/sh", writeScript(t, body), "")
	require.NoError(t, err)

	cmd.sigCh = make(chan os.Signal, 2)

	return cmd
}

func TestRun_Success(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	cmd := newTestCommand(t, "echo building; echo warning >&2\n")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	res := cmd.Run(ctxlog.NewDiscard(context.Background()))

	require.NoError(t, res.Error)
	assert.Equal(t, 0, res.ExitCode)
	assert.True(t, res.Success())
	assert.Equal(t, "building\n", stdout.String())
	assert.Equal(t, "warning\n", stderr.String())
	assert.Equal(t, "warning\n", string(res.StdErr))
	assert.False(t, res.Truncated)
}

func TestRun_NonZeroExitIsNotAnError(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	cmd := newTestCommand(t, "exit 3\n")

	res := cmd.Run(ctxlog.NewDiscard(context.Background()))

	require.NoError(t, res.Error)
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.Success())
}

func TestRun_Cwd(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	cmd := newTestCommand(t, "pwd\n")
	cmd.Cwd = dir

	stdout := &bytes.Buffer{}
	cmd.Stdout = stdout

	res := cmd.Run(ctxlog.NewDiscard(context.Background()))
	require.True(t, res.Success())

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), want)
}

func TestRun_Env(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	cmd := newTestCommand(t, "echo \"$JMEM_CASE\"\n")
	cmd.Env = map[string]string{"JMEM_CASE": "small"}

	stdout := &bytes.Buffer{}
	cmd.Stdout = stdout

	res := cmd.Run(ctxlog.NewDiscard(context.Background()))
	require.True(t, res.Success())
	assert.Equal(t, "small\n", stdout.String())
}

func TestRun_ShellNotFound(t *testing.T) {
	_, err := New("definitely-not-a-shell-confbatch", "build.sh", "")
	require.ErrorIs(t, err, ErrShellNotFound)
}

func TestRun_CouldNotStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	cmd, err := New("/not/a/real/shell", "build.sh", "")
	require.NoError(t, err)

	cmd.sigCh = make(chan os.Signal, 1)

	res := cmd.Run(ctxlog.NewDiscard(context.Background()))
	require.ErrorIs(t, res.Error, ErrCouldNotStartProcess)
	assert.Equal(t, -1, res.ExitCode)
}

func TestRun_ContextCancelled(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	cmd := newTestCommand(t, "exec sleep 10\n")

	ctx, cancel := context.WithTimeout(ctxlog.NewDiscard(context.Background()), 200*time.Millisecond)
	defer cancel()

	res := cmd.Run(ctx)

	assert.Equal(t, -1, res.ExitCode)
	require.ErrorIs(t, res.Error, ErrTimeoutExceeded)
	assert.Contains(t, string(res.StdErr), "killing")
	assert.Less(t, res.Duration, 5*time.Second)
}

func TestRun_SignalForwarded(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	cmd := newTestCommand(t, "exec sleep 10\n")

	go func() {
		time.Sleep(300 * time.Millisecond)
		cmd.sigCh <- os.Interrupt
	}()

	res := cmd.Run(ctxlog.NewDiscard(context.Background()))

	assert.Equal(t, -1, res.ExitCode)
	require.ErrorIs(t, res.Error, ErrSignalReceived)
	assert.Contains(t, string(res.StdErr), "interrupt")
}

func TestCapWriter(t *testing.T) {
	c := &capWriter{max: 4}

	n, err := c.Write([]byte("ab"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, c.truncated)

	n, err = c.Write([]byte("cdef"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "abcd", string(c.Bytes()))
	assert.True(t, c.truncated)

	n, err = c.Write([]byte("g"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "abcd", string(c.Bytes()))
}

func TestRun_HeartbeatReportsProgress(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	stubs := gostub.Stub(&tickerInterval, 20*time.Millisecond)
	defer stubs.Reset()

	logs := &bytes.Buffer{}
	ctx := ctxlog.New(context.Background(),
		slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cmd := newTestCommand(t, "echo 'compiling jmem'; printf 'linking 50%%'; sleep 0.5\n")

	res := cmd.Run(ctx)
	require.NoError(t, res.Error)

	out := logs.String()
	assert.Contains(t, out, "build still running")
	assert.Contains(t, out, `lastLine="compiling jmem"`)
	assert.Contains(t, out, `partialLine="linking 50%"`)
}
