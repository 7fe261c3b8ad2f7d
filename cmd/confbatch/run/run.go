// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run contains the `run` command, which builds every configuration of a batch.
package run

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/confbatch/cmd/confbatch/batchflags"
	"github.com/matt-FFFFFF/confbatch/internal/batch"
	"github.com/matt-FFFFFF/confbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/confbatch/internal/fileops"
	"github.com/matt-FFFFFF/confbatch/internal/manifest"
	"github.com/urfave/cli/v3"
)

const (
	outFlag                  = "out"
	noOutputStdErrFlag       = "no-output-stderr"
	outputSuccessDetailsFlag = "output-success-details"
	summaryFlag              = "summary"
	cliExitStr               = ""
)

// RunCmd builds the target once per configuration header.
var RunCmd = newCommand()

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Build once per configuration header and archive each artifact",
		Description: `For every file matched by --config-glob, in glob order:
copy it over --target-config, run --build-script with --shell, and copy
--source-output to <target-output-dir>/<prefix>-<case>, where <case> is the
file name up to its first ".h".

A build that exits non-zero does not stop the batch; whatever is at
--source-output is archived. A missing artifact stops the batch.

Every path defaults to the layout of an IoT.js checkout, so running with
no flags from that directory reproduces the jmem total-time batch.`,
		Flags: append(batchflags.Flags(),
			&cli.StringFlag{
				Name:      outFlag,
				Usage:     "Write a YAML manifest of the results to this file",
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.BoolFlag{
				Name:     summaryFlag,
				Usage:    "Print a result summary after the batch",
				Value:    true,
				OnlyOnce: true,
			},
			&cli.BoolFlag{
				Name:     noOutputStdErrFlag,
				Aliases:  []string{"no-stderr"},
				Usage:    "Leave captured build stderr out of the summary",
				OnlyOnce: true,
			},
			&cli.BoolFlag{
				Name:     outputSuccessDetailsFlag,
				Aliases:  []string{"success"},
				Usage:    "Include details of successful cases in the summary",
				OnlyOnce: true,
			},
		),
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("running run command")

	cfg, name, err := batchflags.Config(ctx, cmd)
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	w := cmd.Root().Writer
	cfg.Stdout = w
	cfg.Stderr = cmd.Root().ErrWriter

	out := cmd.String(outFlag)
	if out != "" {
		if exists, err := fileops.Exists(out); err == nil && exists {
			logger.Warn(fmt.Sprintf("Manifest %s exists and will be overwritten", out))
		}
	}

	results, runErr := batch.Run(ctx, cfg)

	if out != "" {
		if err := manifest.WriteFile(out, manifest.FromResults(name, results, runErr)); err != nil {
			logger.Error(fmt.Sprintf("Failed to write manifest %s: %s", out, err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		logger.Info(fmt.Sprintf("Manifest written to %s", out))
	}

	if cmd.Bool(summaryFlag) && len(results) > 0 {
		opts := batch.DefaultOutputOptions()
		opts.IncludeStdErr = !cmd.Bool(noOutputStdErrFlag)
		opts.ShowSuccessDetails = cmd.Bool(outputSuccessDetailsFlag)

		if err := results.WriteText(w, opts); err != nil {
			logger.Error(fmt.Sprintf("Failed to write results: %s", err.Error()))
			return cli.Exit(cliExitStr, 1)
		}
	}

	if runErr != nil {
		logger.Error("batch failed", "error", runErr)
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}
