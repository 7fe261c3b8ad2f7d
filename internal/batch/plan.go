// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batch

import (
	"context"

	"github.com/matt-FFFFFF/confbatch/internal/fileops"
)

// Case is one configuration file and where its artifact goes.
type Case struct {
	Index        int    // 1-based position in glob order
	Total        int    // Number of cases in the batch
	Name         string // Case name, see CaseName
	ConfigPath   string // Matched configuration file
	ArtifactPath string // Archive destination
	DuplicateOf  int    // Index of an earlier case with the same ArtifactPath, or 0
}

// Plan expands the glob and derives every case without touching the filesystem
// beyond listing it. Cases are in glob enumeration order.
func Plan(ctx context.Context, cfg Config) ([]Case, error) {
	cfg = cfg.WithDefaults()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches, err := expand(cfg)
	if err != nil {
		return nil, err
	}

	cases := make([]Case, 0, len(matches))
	seen := make(map[string]int, len(matches))

	for i, m := range matches {
		c, err := newCase(cfg, i+1, len(matches), m, seen)
		if err != nil {
			return nil, err
		}

		cases = append(cases, c)
	}

	return cases, nil
}

func expand(cfg Config) ([]string, error) {
	return fileops.Glob(cfg.resolve(cfg.ConfigGlob))
}

// newCase derives the case for path. seen maps archive paths to the case that
// first claimed them and is updated.
func newCase(cfg Config, index, total int, path string, seen map[string]int) (Case, error) {
	name, err := CaseName(path)
	if err != nil {
		return Case{}, err
	}

	c := Case{
		Index:        index,
		Total:        total,
		Name:         name,
		ConfigPath:   path,
		ArtifactPath: cfg.ArtifactPath(name),
	}

	if prev, ok := seen[c.ArtifactPath]; ok {
		c.DuplicateOf = prev
	} else {
		seen[c.ArtifactPath] = index
	}

	return c, nil
}
