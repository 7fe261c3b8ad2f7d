// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package plan

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/matt-FFFFFF/confbatch/internal/color"
	"github.com/matt-FFFFFF/confbatch/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	app := &cli.Command{
		Name:           "confbatch",
		Writer:         out,
		ErrWriter:      io.Discard,
		Commands:       []*cli.Command{newCommand()},
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}

	err := app.Run(ctxlog.NewDiscard(context.Background()), append([]string{"confbatch", "plan"}, args...))

	return out.String(), err
}

func TestPlan_ListsCasesWithoutTouchingAnything(t *testing.T) {
	prev := color.SetEnabled(false)
	defer color.SetEnabled(prev)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))

	for _, n := range []string{"a.h", "a.hpp", "b.h"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", n), nil, 0o644))
	}

	out, err := runApp(t,
		"-C", dir,
		"--config-glob", "./configs/*",
		"--target-output-dir", "./out",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "1/3")
	assert.Contains(t, out, filepath.Join(dir, "out", "iotjs-a"))
	assert.Contains(t, out, filepath.Join(dir, "out", "iotjs-b"))
	assert.Contains(t, out, "overwrites case 1")

	assert.NoDirExists(t, filepath.Join(dir, "out"))
}

func TestPlan_NoMatches(t *testing.T) {
	out, err := runApp(t, "-C", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No configuration files matched.")
}

func TestPlan_BadCaseName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), nil, 0o644))

	_, err := runApp(t, "-C", dir, "--config-glob", "./*")
	require.Error(t, err)
}
