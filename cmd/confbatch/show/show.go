// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package show contains the `show` command, which prints a saved manifest.
package show

import (
	"context"
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/confbatch/internal/batch"
	"github.com/matt-FFFFFF/confbatch/internal/manifest"
	"github.com/urfave/cli/v3"
)

const (
	fileArg                  = "file"
	outputSuccessDetailsFlag = "output-success-details"
)

// ErrWriteResults is returned when the results cannot be written.
var ErrWriteResults = errors.New("failed to write results")

// ShowCmd prints a manifest written by `run --out`.
var ShowCmd = newCommand()

func newCommand() *cli.Command {
	return &cli.Command{
		Name:        "show",
		Usage:       "Show the results saved by run --out",
		Description: "Show previously saved results.",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      fileArg,
				UsageText: "MANIFEST",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    outputSuccessDetailsFlag,
				Aliases: []string{"success"},
				Usage:   "Include details of successful cases",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			path := cmd.StringArg(fileArg)
			if path == "" {
				return cli.Exit("Please provide a manifest file to show", 1)
			}

			m, err := manifest.ReadFile(path)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			w := cmd.Root().Writer

			header := "Batch"
			if m.Name != "" {
				header += " " + m.Name
			}

			state := "completed"
			if !m.Completed {
				state = "stopped: " + m.Error
			}

			fmt.Fprintf(w, "%s, %s, %s\n", header, m.GeneratedAt.Format("2006-01-02 15:04:05 MST"), state) //nolint:errcheck

			opts := batch.DefaultOutputOptions()
			opts.ShowSuccessDetails = cmd.Bool(outputSuccessDetailsFlag)

			if err := m.Results().WriteText(w, opts); err != nil {
				return errors.Join(ErrWriteResults, err)
			}

			return nil
		},
	}
}
