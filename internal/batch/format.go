// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batch

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/matt-FFFFFF/confbatch/internal/color"
)

// OutputOptions controls what WriteText includes.
type OutputOptions struct {
	IncludeStdErr      bool // Show captured build stderr for failed cases
	ShowSuccessDetails bool // Show paths and stderr for successful cases too
}

// DefaultOutputOptions returns the options used by `confbatch run`.
func DefaultOutputOptions() *OutputOptions {
	return &OutputOptions{
		IncludeStdErr:      true,
		ShowSuccessDetails: false,
	}
}

// WriteText writes a one-line summary per case followed by the details requested
// in options. A nil options means DefaultOutputOptions.
func (r Results) WriteText(w io.Writer, options *OutputOptions) error {
	if options == nil {
		options = DefaultOutputOptions()
	}

	for _, res := range r {
		if err := writeResult(w, res, options); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "%d succeeded, %d build failures, %d errors\n",
		r.Count(StatusSuccess), r.Count(StatusBuildFailed), r.Count(StatusError))

	return err
}

func writeResult(w io.Writer, r *Result, options *OutputOptions) error {
	var mark string

	var c color.Code

	switch r.Status {
	case StatusSuccess:
		mark, c = "✓", color.FgGreen
	case StatusBuildFailed:
		mark, c = "~", color.FgYellow
	case StatusError:
		mark, c = "✗", color.FgRed
	default:
		mark, c = "?", color.FgWhite
	}

	line := fmt.Sprintf("%s %s (%d/%d)",
		color.Colorize(mark, c),
		color.Colorize(r.Name, color.Bold, c),
		r.Index, r.Total,
	)

	if r.BuildExitCode != 0 {
		line += fmt.Sprintf(" (build exit code: %d)", r.BuildExitCode)
	}

	if r.Duration > 0 {
		line += " [" + r.Duration.Round(time.Millisecond).String() + "]"
	}

	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}

	details := r.Status != StatusSuccess || options.ShowSuccessDetails

	if details {
		fmt.Fprintf(w, "  ➜ Config: %s\n", r.ConfigPath) //nolint:errcheck

		if r.Status != StatusError {
			fmt.Fprintf(w, "  ➜ Artifact: %s\n", r.ArtifactPath) //nolint:errcheck
		}
	}

	if r.Error != nil {
		fmt.Fprintf(w, "  %s %s\n", color.Colorize("➜ Error:", c), r.Error.Error()) //nolint:errcheck
	}

	if details && options.IncludeStdErr && len(r.BuildStdErr) > 0 {
		fmt.Fprintf(w, "  %s\n", color.Colorize("➜ Build Error Output:", color.FgHiRed)) //nolint:errcheck
		fmt.Fprint(w, indentLines(r.BuildStdErr, "     "))                               //nolint:errcheck

		if r.BuildStdErrTruncated {
			fmt.Fprintf(w, "     %s\n", color.Colorize("... (truncated)", color.Faint)) //nolint:errcheck
		}
	}

	return nil
}

func indentLines(output []byte, indent string) string {
	sb := strings.Builder{}
	lines := strings.Split(strings.TrimRight(string(output), "\n"), "\n")
	sb.Grow(len(output) + len(lines)*(len(indent)+1))

	for _, line := range lines {
		if line != "" {
			sb.WriteString(indent)
			sb.WriteString(line)
		}

		sb.WriteString("\n")
	}

	return sb.String()
}
