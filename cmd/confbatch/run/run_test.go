// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/matt-FFFFFF/confbatch/internal/batch"
	"github.com/matt-FFFFFF/confbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/confbatch/internal/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

const buildScript = `#!/bin/sh
mkdir -p bin
cp target.h bin/app
`

func setupTree(t *testing.T, script string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "small.h"), []byte("small"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "large.h"), []byte("large"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build.sh"), []byte(script), 0o755))

	return dir
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	return runAppWithContext(t, ctxlog.NewDiscard(context.Background()), args...)
}

func runAppWithContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	app := &cli.Command{
		Name:           "confbatch",
		Writer:         out,
		ErrWriter:      io.Discard,
		Commands:       []*cli.Command{newCommand()},
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}

	err := app.Run(ctx, append([]string{"confbatch", "run"}, args...))

	return out.String(), err
}

func batchArgs(dir string) []string {
	return []string{
		"--working-directory", dir,
		"--shell", "/bin/sh",
		"--build-script", "./build.sh",
		"--config-glob", "./configs/*.h",
		"--target-config", "./target.h",
		"--source-output", "./bin/app",
		"--target-output-dir", "./out",
	}
}

func TestRun_WritesArtifactsAndManifest(t *testing.T) {
	dir := setupTree(t, buildScript)
	mf := filepath.Join(dir, "manifest.yaml")

	out, err := runApp(t, append(batchArgs(dir), "--out", mf)...)
	require.NoError(t, err)

	assert.Contains(t, out, "Build large (1/2)")
	assert.Contains(t, out, "Build small (2/2)")
	assert.Contains(t, out, "Build Done!")
	assert.Contains(t, out, "2 succeeded")

	got, err := os.ReadFile(filepath.Join(dir, "out", "iotjs-small"))
	require.NoError(t, err)
	assert.Equal(t, "small", string(got))

	m, err := manifest.ReadFile(mf)
	require.NoError(t, err)
	assert.True(t, m.Completed)
	require.Len(t, m.Cases, 2)
	assert.Equal(t, string(batch.StatusSuccess), m.Cases[0].Status)
}

func TestRun_MissingArtifactStillWritesManifest(t *testing.T) {
	dir := setupTree(t, "#!/bin/sh\nexit 0\n")
	mf := filepath.Join(dir, "manifest.yaml")

	out, err := runApp(t, append(batchArgs(dir), "--out", mf)...)
	require.Error(t, err)
	assert.NotContains(t, out, "Build Done!")

	m, err := manifest.ReadFile(mf)
	require.NoError(t, err)
	assert.False(t, m.Completed)
	assert.NotEmpty(t, m.Error)
	require.Len(t, m.Cases, 1)
	assert.Equal(t, string(batch.StatusError), m.Cases[0].Status)
}

func TestRun_WarnsBeforeOverwritingManifest(t *testing.T) {
	dir := setupTree(t, buildScript)
	mf := filepath.Join(dir, "manifest.yaml")
	require.NoError(t, os.WriteFile(mf, []byte("stale"), 0o644))

	logs := &bytes.Buffer{}
	ctx := ctxlog.New(context.Background(), slog.New(slog.NewTextHandler(logs, nil)))

	_, err := runAppWithContext(t, ctx, append(batchArgs(dir), "--out", mf)...)
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "will be overwritten")

	m, err := manifest.ReadFile(mf)
	require.NoError(t, err)
	assert.Len(t, m.Cases, 2)
}
