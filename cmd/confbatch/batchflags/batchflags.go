// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package batchflags holds the flags shared by the commands that describe a batch,
// and turns them into a batch.Config.
package batchflags

import (
	"context"
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/confbatch/internal/batch"
	"github.com/matt-FFFFFF/confbatch/internal/buildcmd"
	"github.com/matt-FFFFFF/confbatch/internal/config"
	"github.com/matt-FFFFFF/confbatch/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

// Flag names.
const (
	FileFlag             = "file"
	BuildScriptFlag      = "build-script"
	ConfigGlobFlag       = "config-glob"
	TargetConfigFlag     = "target-config"
	SourceOutputFlag     = "source-output"
	TargetOutputDirFlag  = "target-output-dir"
	PrefixFlag           = "prefix"
	ShellFlag            = "shell"
	WorkingDirectoryFlag = "working-directory"

	envPrefix = "CONFBATCH_"
)

// ErrBuildConfig is returned when the batch definition file cannot be turned into a config.
var ErrBuildConfig = errors.New("failed to build config")

// Flags returns a fresh set of batch flags. Each command needs its own instances.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FileFlag,
			Aliases: []string{"f"},
			Usage: "YAML batch definition. Supports Hashicorp's go-getter syntax, " +
				"so the file can come from git, http or a local path. Flags override its values.",
			TakesFile: true,
			OnlyOnce:  true,
		},
		stringFlag(BuildScriptFlag, "Build script handed to the shell", batch.DefaultBuildScript, "s"),
		stringFlag(ConfigGlobFlag, "Glob matching the configuration headers", batch.DefaultConfigGlob, "g"),
		stringFlag(TargetConfigFlag, "Path the build reads its configuration from", batch.DefaultTargetConfig, ""),
		stringFlag(SourceOutputFlag, "Path the build leaves its artifact at", batch.DefaultSourceOutput, ""),
		stringFlag(TargetOutputDirFlag, "Directory the artifacts are archived in", batch.DefaultTargetOutputDir, "o"),
		stringFlag(PrefixFlag, "Archived artifacts are named <prefix>-<case>", batch.DefaultArtifactPrefix, ""),
		stringFlag(ShellFlag, "Interpreter for the build script", buildcmd.DefaultShell, ""),
		stringFlag(WorkingDirectoryFlag, "Base for relative paths and the build's working directory", ".", "C"),
	}
}

func stringFlag(name, usage, def, alias string) *cli.StringFlag {
	f := &cli.StringFlag{
		Name:        name,
		Usage:       usage,
		Value:       def,
		DefaultText: def,
		OnlyOnce:    true,
		Sources:     cli.EnvVars(envName(name)),
	}

	if alias != "" {
		f.Aliases = []string{alias}
	}

	return f
}

// Config resolves the batch described by cmd: defaults, then the --file
// definition, then flags that were set explicitly.
func Config(ctx context.Context, cmd *cli.Command) (batch.Config, string, error) {
	cfg := batch.DefaultConfig()
	name := ""

	if src := cmd.String(FileFlag); src != "" {
		data, err := Fetch(ctx, src)
		if err != nil {
			return batch.Config{}, "", err
		}

		cfg, name, err = config.BuildFromYAML(ctxlog.New(ctx, ctxlog.Logger(ctx).With("source", src)), data)
		if err != nil {
			return batch.Config{}, "", errors.Join(ErrBuildConfig, fmt.Errorf("%s: %w", src, err))
		}
	}

	cfg = config.Merge(cfg, batch.Config{
		BuildScript:      setString(cmd, BuildScriptFlag),
		ConfigGlob:       setString(cmd, ConfigGlobFlag),
		TargetConfig:     setString(cmd, TargetConfigFlag),
		SourceOutput:     setString(cmd, SourceOutputFlag),
		TargetOutputDir:  setString(cmd, TargetOutputDirFlag),
		ArtifactPrefix:   setString(cmd, PrefixFlag),
		Shell:            setString(cmd, ShellFlag),
		WorkingDirectory: setString(cmd, WorkingDirectoryFlag),
	})

	return cfg, name, nil
}

// setString returns the flag value only if the user set it, so unset flags do not
// mask values from the definition file.
func setString(cmd *cli.Command, name string) string {
	if !cmd.IsSet(name) {
		return ""
	}

	return cmd.String(name)
}

func envName(flag string) string {
	b := []byte(envPrefix + flag)
	for i, c := range b {
		switch {
		case c == '-':
			b[i] = '_'
		case c >= 'a' && c <= 'z':
			b[i] = c - 'a' + 'A'
		}
	}

	return string(b)
}
