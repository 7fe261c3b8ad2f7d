// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the confbatch command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/confbatch"
	"github.com/matt-FFFFFF/confbatch/cmd/confbatch/plan"
	"github.com/matt-FFFFFF/confbatch/cmd/confbatch/run"
	"github.com/matt-FFFFFF/confbatch/cmd/confbatch/show"
	"github.com/matt-FFFFFF/confbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/confbatch/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		plan.PlanCmd,
		show.ShowCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "confbatch",
	Usage:     "confbatch run --config-glob 'configs/*.h'",
	Description: `confbatch builds a target once per compile-time configuration header.
Each header is copied over the file the build reads, the build script runs,
and the artifact is archived under a name derived from the header.`,
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	defer cancel()

	sigCh := signalbroker.New(ctx)
	go signalbroker.Watch(ctx, sigCh, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", confbatch.Version, confbatch.Commit)

	err := rootCmd.Run(ctx, os.Args)

	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1) //nolint:gocritic
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}

	ctxlog.Logger(ctx).Info("command completed successfully")
}
