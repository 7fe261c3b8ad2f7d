// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package manifest saves the results of a batch as YAML and loads them back.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/confbatch/internal/batch"
	"github.com/matt-FFFFFF/confbatch/internal/fileops"
	"github.com/spf13/afero"
)

const fileMode = 0o644

var (
	// ErrWriteManifest is returned when the manifest cannot be encoded or written.
	ErrWriteManifest = errors.New("failed to write manifest")
	// ErrReadManifest is returned when the manifest cannot be read or decoded.
	ErrReadManifest = errors.New("failed to read manifest")
)

// now is stubbed in tests.
var now = time.Now

// Manifest is the saved form of a batch run.
type Manifest struct {
	Name        string    `yaml:"name,omitempty"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Completed   bool      `yaml:"completed"`
	Error       string    `yaml:"error,omitempty"`
	Cases       []Entry   `yaml:"cases"`
}

// Entry is one case of a Manifest.
type Entry struct {
	Index                int    `yaml:"index"`
	Total                int    `yaml:"total"`
	Case                 string `yaml:"case"`
	Config               string `yaml:"config"`
	Artifact             string `yaml:"artifact"`
	Status               string `yaml:"status"`
	BuildExitCode        int    `yaml:"build_exit_code"`
	BuildStdErr          string `yaml:"build_stderr,omitempty"`
	BuildStdErrTruncated bool   `yaml:"build_stderr_truncated,omitempty"`
	Error                string `yaml:"error,omitempty"`
	Duration             string `yaml:"duration,omitempty"`
	DuplicateOf          int    `yaml:"duplicate_of,omitempty"`
}

// FromResults builds a Manifest. runErr is the error Run returned, if any.
func FromResults(name string, results batch.Results, runErr error) *Manifest {
	m := &Manifest{
		Name:        name,
		GeneratedAt: now().UTC(),
		Completed:   runErr == nil,
		Cases:       make([]Entry, 0, len(results)),
	}

	if runErr != nil {
		m.Error = runErr.Error()
	}

	for _, r := range results {
		e := Entry{
			Index:                r.Index,
			Total:                r.Total,
			Case:                 r.Name,
			Config:               r.ConfigPath,
			Artifact:             r.ArtifactPath,
			Status:               string(r.Status),
			BuildExitCode:        r.BuildExitCode,
			BuildStdErr:          string(r.BuildStdErr),
			BuildStdErrTruncated: r.BuildStdErrTruncated,
			DuplicateOf:          r.DuplicateOf,
		}

		if r.Error != nil {
			e.Error = r.Error.Error()
		}

		if r.Duration > 0 {
			e.Duration = r.Duration.String()
		}

		m.Cases = append(m.Cases, e)
	}

	return m
}

// Results converts the manifest back to batch results. Errors come back as plain
// messages; their sentinel identity is not preserved.
func (m *Manifest) Results() batch.Results {
	res := make(batch.Results, 0, len(m.Cases))

	for _, e := range m.Cases {
		r := &batch.Result{
			Case: batch.Case{
				Index:        e.Index,
				Total:        e.Total,
				Name:         e.Case,
				ConfigPath:   e.Config,
				ArtifactPath: e.Artifact,
				DuplicateOf:  e.DuplicateOf,
			},
			Status:               batch.Status(e.Status),
			BuildExitCode:        e.BuildExitCode,
			BuildStdErrTruncated: e.BuildStdErrTruncated,
		}

		if e.BuildStdErr != "" {
			r.BuildStdErr = []byte(e.BuildStdErr)
		}

		if e.Error != "" {
			r.Error = errors.New(e.Error)
		}

		if d, err := time.ParseDuration(e.Duration); err == nil {
			r.Duration = d
		}

		res = append(res, r)
	}

	return res
}

// Write encodes m to w.
func Write(w io.Writer, m *Manifest) error {
	b, err := yaml.Marshal(m)
	if err != nil {
		return errors.Join(ErrWriteManifest, err)
	}

	if _, err := w.Write(b); err != nil {
		return errors.Join(ErrWriteManifest, err)
	}

	return nil
}

// Read decodes a manifest from r.
func Read(r io.Reader) (*Manifest, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Join(ErrReadManifest, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, errors.Join(ErrReadManifest, fmt.Errorf("%s", yaml.FormatError(err, false, true)))
	}

	return &m, nil
}

// WriteFile writes m to path, replacing any existing file.
func WriteFile(path string, m *Manifest) error {
	buf := &bytes.Buffer{}
	if err := Write(buf, m); err != nil {
		return err
	}

	if err := afero.WriteFile(fileops.FS, path, buf.Bytes(), fileMode); err != nil {
		return errors.Join(ErrWriteManifest, err)
	}

	return nil
}

// ReadFile reads a manifest from path.
func ReadFile(path string) (*Manifest, error) {
	f, err := fileops.FS.Open(path)
	if err != nil {
		return nil, errors.Join(ErrReadManifest, err)
	}
	defer f.Close() //nolint:errcheck

	return Read(f)
}
