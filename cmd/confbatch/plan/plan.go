// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package plan contains the `plan` command, a dry run of `run`.
package plan

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/matt-FFFFFF/confbatch/cmd/confbatch/batchflags"
	"github.com/matt-FFFFFF/confbatch/internal/batch"
	"github.com/matt-FFFFFF/confbatch/internal/color"
	"github.com/matt-FFFFFF/confbatch/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

// PlanCmd lists the cases a batch would build without building anything.
var PlanCmd = newCommand()

func newCommand() *cli.Command {
	return &cli.Command{
		Name:        "plan",
		Usage:       "List the cases and artifact names without building",
		Description: "Expands --config-glob and prints each case name and where its artifact would be archived.",
		Flags:       batchflags.Flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, _, err := batchflags.Config(ctx, cmd)
			if err != nil {
				ctxlog.Error(ctx, err.Error())
				return cli.Exit("", 1)
			}

			cases, err := batch.Plan(ctx, cfg)
			if err != nil {
				ctxlog.Error(ctx, "failed to plan batch", "error", err)
				return cli.Exit("", 1)
			}

			return writePlan(cmd, cases)
		},
	}
}

func writePlan(cmd *cli.Command, cases []batch.Case) error {
	w := cmd.Root().Writer

	if len(cases) == 0 {
		_, err := fmt.Fprintln(w, "No configuration files matched.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, c := range cases {
		note := ""
		if c.DuplicateOf > 0 {
			note = color.Colorize(fmt.Sprintf("overwrites case %d", c.DuplicateOf), color.FgYellow)
		}

		fmt.Fprintf(tw, "%d/%d\t%s\t%s\t%s\t%s\n", //nolint:errcheck
			c.Index, c.Total, c.Name, c.ConfigPath, c.ArtifactPath, note)
	}

	return tw.Flush()
}
