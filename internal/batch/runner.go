// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/matt-FFFFFF/confbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/confbatch/internal/fileops"
)

var (
	// ErrCreateOutputDir is returned when the output directory cannot be created.
	ErrCreateOutputDir = errors.New("failed to create output directory")
	// ErrCopyConfig is returned when a configuration file cannot be staged.
	ErrCopyConfig = errors.New("failed to copy configuration file")
	// ErrCopyArtifact is returned when the build artifact cannot be archived,
	// typically because the build did not produce it.
	ErrCopyArtifact = errors.New("failed to copy build artifact")
	// ErrCancelled is returned when the context is done before the batch finishes.
	ErrCancelled = errors.New("batch cancelled")
)

// Runner runs a batch.
type Runner struct {
	Config  Config
	Builder Builder // nil means NewScriptBuilder(Config)
}

// New returns a Runner for cfg.
func New(cfg Config) *Runner {
	return &Runner{Config: cfg}
}

// Run is shorthand for New(cfg).Run(ctx).
func Run(ctx context.Context, cfg Config) (Results, error) {
	return New(cfg).Run(ctx)
}

// Run builds every case in order. It returns the results of the cases it got to,
// including the failing one, together with the error that stopped the batch.
func (r *Runner) Run(ctx context.Context) (Results, error) {
	cfg := r.Config.WithDefaults()
	logger := ctxlog.Logger(ctx).With("runner", "batch")
	out := cfg.Stdout

	if out == nil {
		out = io.Discard
	}

	builder := r.Builder
	if builder == nil {
		builder = NewScriptBuilder(cfg)
	}

	targetConfig := cfg.resolve(cfg.TargetConfig)
	sourceOutput := cfg.resolve(cfg.SourceOutput)
	outputDir := cfg.resolve(cfg.TargetOutputDir)

	unlock, err := acquire(targetConfig)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := fileops.EnsureDir(outputDir); err != nil {
		return nil, errors.Join(ErrCreateOutputDir, err)
	}

	matches, err := expand(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("batch starting",
		"cases", len(matches),
		"glob", cfg.ConfigGlob,
		"targetConfig", targetConfig,
		"sourceOutput", sourceOutput,
		"outputDir", outputDir,
	)

	results := make(Results, 0, len(matches))
	seen := make(map[string]int, len(matches))

	for i, m := range matches {
		if err := ctx.Err(); err != nil {
			return results, errors.Join(ErrCancelled, err)
		}

		c, err := newCase(cfg, i+1, len(matches), m, seen)
		if err != nil {
			return results, err
		}

		res := r.runCase(ctx, builder, c, targetConfig, sourceOutput, out)
		results = append(results, res)

		if res.Error != nil {
			logger.Error("batch stopped", "case", c.Name, "error", res.Error)
			return results, res.Error
		}
	}

	fmt.Fprintln(out, "Build Done!") //nolint:errcheck

	logger.Info("batch finished",
		"cases", len(results),
		"buildFailures", results.Count(StatusBuildFailed),
	)

	return results, nil
}

func (r *Runner) runCase(
	ctx context.Context,
	builder Builder,
	c Case,
	targetConfig, sourceOutput string,
	out io.Writer,
) *Result {
	logger := ctxlog.Logger(ctx).With("case", c.Name, "index", c.Index, "total", c.Total)
	start := time.Now()
	res := &Result{Case: c, Status: StatusError}

	defer func() {
		res.Duration = time.Since(start)
	}()

	fmt.Fprintf(out, "Build %s (%d/%d)\n", c.Name, c.Index, c.Total) //nolint:errcheck

	if c.DuplicateOf > 0 {
		logger.Warn("case name repeats an earlier case, its artifact will be overwritten",
			"artifact", c.ArtifactPath,
			"earlierIndex", c.DuplicateOf,
		)
	}

	logger.Debug("staging configuration", "from", c.ConfigPath, "to", targetConfig)

	if err := fileops.Copy(c.ConfigPath, targetConfig); err != nil {
		res.Error = errors.Join(ErrCopyConfig, err)
		return res
	}

	br := builder.Build(ctx, c)
	res.BuildExitCode = br.ExitCode
	res.BuildStdErr = br.StdErr
	res.BuildStdErrTruncated = br.Truncated

	if err := ctx.Err(); err != nil {
		res.Error = errors.Join(ErrCancelled, err, br.Error)
		return res
	}

	if !br.Success() {
		logger.Warn("build failed, archiving the source output anyway",
			"exitCode", br.ExitCode,
			"error", br.Error,
		)
	}

	logger.Debug("archiving artifact", "from", sourceOutput, "to", c.ArtifactPath)

	if err := fileops.Copy(sourceOutput, c.ArtifactPath); err != nil {
		res.Error = errors.Join(ErrCopyArtifact, err)
		return res
	}

	fmt.Fprintf(out, " >> Saved on %s\n", c.ArtifactPath) //nolint:errcheck

	res.Status = StatusSuccess
	if !br.Success() {
		res.Status = StatusBuildFailed
	}

	return res
}
