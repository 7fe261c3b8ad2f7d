// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batchflags

import (
	"context"
	"testing"

	"github.com/matt-FFFFFF/confbatch/internal/batch"
	"github.com/matt-FFFFFF/confbatch/internal/config"
	"github.com/matt-FFFFFF/confbatch/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func resolve(t *testing.T, args ...string) (batch.Config, string, error) {
	t.Helper()

	var (
		cfg  batch.Config
		name string
		err  error
	)

	cmd := &cli.Command{
		Name:  "test",
		Flags: Flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, name, err = Config(ctx, cmd)
			return nil
		},
	}

	require.NoError(t, cmd.Run(ctxlog.NewDiscard(context.Background()), append([]string{"test"}, args...)))

	return cfg, name, err
}

func TestConfig_Defaults(t *testing.T) {
	cfg, name, err := resolve(t)
	require.NoError(t, err)
	assert.Empty(t, name)
	assert.Equal(t, batch.DefaultConfig(), cfg)
}

func TestConfig_Flags(t *testing.T) {
	cfg, _, err := resolve(t,
		"--config-glob", "configs/*.h",
		"-o", "results",
		"--prefix", "jerry",
		"-C", "/src/iotjs",
	)
	require.NoError(t, err)

	assert.Equal(t, "configs/*.h", cfg.ConfigGlob)
	assert.Equal(t, "results", cfg.TargetOutputDir)
	assert.Equal(t, "jerry", cfg.ArtifactPrefix)
	assert.Equal(t, "/src/iotjs", cfg.WorkingDirectory)
	assert.Equal(t, batch.DefaultBuildScript, cfg.BuildScript)
}

func TestConfig_Env(t *testing.T) {
	t.Setenv("CONFBATCH_BUILD_SCRIPT", "./build_nuttx.sh")

	cfg, _, err := resolve(t)
	require.NoError(t, err)
	assert.Equal(t, "./build_nuttx.sh", cfg.BuildScript)
}

func TestConfig_FileThenFlags(t *testing.T) {
	cfg, name, err := resolve(t, "--file", "./testdata/batch.yaml", "--prefix", "iotjs")
	require.NoError(t, err)

	assert.Equal(t, "testbatch", name)
	assert.Equal(t, "./configs/*.h", cfg.ConfigGlob)
	assert.Equal(t, "./results/", cfg.TargetOutputDir)
	assert.Equal(t, "iotjs", cfg.ArtifactPrefix, "flags override the file")
	assert.Equal(t, batch.DefaultTargetConfig, cfg.TargetConfig)
}

func TestConfig_BadFile(t *testing.T) {
	_, _, err := resolve(t, "--file", "./testdata/broken.yaml")
	require.ErrorIs(t, err, ErrBuildConfig)
	require.ErrorIs(t, err, config.ErrInvalidYaml)

	_, _, err = resolve(t, "--file", "./testdata/missing.yaml")
	require.ErrorIs(t, err, ErrGetConfigFile)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "CONFBATCH_TARGET_OUTPUT_DIR", envName(TargetOutputDirFlag))
}
