// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batch

import (
	"context"
	"io"
	"strconv"

	"github.com/matt-FFFFFF/confbatch/internal/buildcmd"
)

// Builder runs the build for a case whose configuration has already been staged.
type Builder interface {
	Build(ctx context.Context, c Case) *buildcmd.Result
}

// ScriptBuilder hands a build script to a shell. The case is not passed as an
// argument; the script reads the staged configuration file.
type ScriptBuilder struct {
	Shell  string
	Script string
	Cwd    string
	Stdout io.Writer
	Stderr io.Writer
}

// NewScriptBuilder returns the Builder described by cfg.
func NewScriptBuilder(cfg Config) *ScriptBuilder {
	cfg = cfg.WithDefaults()

	return &ScriptBuilder{
		Shell:  cfg.Shell,
		Script: cfg.BuildScript,
		Cwd:    cfg.WorkingDirectory,
		Stdout: cfg.Stdout,
		Stderr: cfg.Stderr,
	}
}

// Environment variables describing the case to the build. They are informational;
// the build still reads its configuration from the staged file.
const (
	EnvCase      = "CONFBATCH_CASE"
	EnvCaseIndex = "CONFBATCH_CASE_INDEX"
	EnvCaseTotal = "CONFBATCH_CASE_TOTAL"
)

// CaseEnv returns the environment variables set for the build of c.
func CaseEnv(c Case) map[string]string {
	return map[string]string{
		EnvCase:      c.Name,
		EnvCaseIndex: strconv.Itoa(c.Index),
		EnvCaseTotal: strconv.Itoa(c.Total),
	}
}

// Build implements Builder.
func (b *ScriptBuilder) Build(ctx context.Context, c Case) *buildcmd.Result {
	cmd, err := buildcmd.New(b.Shell, b.Script, b.Cwd)
	if err != nil {
		return &buildcmd.Result{ExitCode: -1, Error: err}
	}

	cmd.Label = c.Name
	cmd.Stdout = b.Stdout
	cmd.Stderr = b.Stderr
	cmd.Env = CaseEnv(c)

	return cmd.Run(ctx)
}
