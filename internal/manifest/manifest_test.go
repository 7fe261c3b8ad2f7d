// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package manifest

import (
	"bytes"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/matt-FFFFFF/confbatch/internal/batch"
	"github.com/matt-FFFFFF/confbatch/internal/fileops"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func sampleResults() batch.Results {
	return batch.Results{
		{
			Case:     batch.Case{Index: 1, Total: 2, Name: "large", ConfigPath: "c/large.h", ArtifactPath: "out/iotjs-large"},
			Status:   batch.StatusSuccess,
			Duration: 2 * time.Second,
		},
		{
			Case:                 batch.Case{Index: 2, Total: 2, Name: "small", ConfigPath: "c/small.h", ArtifactPath: "out/iotjs-small"},
			Status:               batch.StatusError,
			BuildExitCode:        2,
			BuildStdErr:          []byte("make: *** [all] Error 2\n"),
			BuildStdErrTruncated: true,
			Error:                errors.New("failed to copy build artifact"),
		},
	}
}

func TestFromResults(t *testing.T) {
	stubs := gostub.Stub(&now, func() time.Time { return fixedTime })
	defer stubs.Reset()

	runErr := errors.New("failed to copy build artifact")
	m := FromResults("totaltime", sampleResults(), runErr)

	assert.Equal(t, "totaltime", m.Name)
	assert.Equal(t, fixedTime, m.GeneratedAt)
	assert.False(t, m.Completed)
	assert.Equal(t, runErr.Error(), m.Error)
	require.Len(t, m.Cases, 2)
	assert.Equal(t, Entry{
		Index: 1, Total: 2, Case: "large", Config: "c/large.h", Artifact: "out/iotjs-large",
		Status: "success", Duration: "2s",
	}, m.Cases[0])
	assert.Equal(t, "make: *** [all] Error 2\n", m.Cases[1].BuildStdErr)
}

func TestWriteRead(t *testing.T) {
	stubs := gostub.Stub(&now, func() time.Time { return fixedTime })
	defer stubs.Reset()

	buf := &bytes.Buffer{}
	require.NoError(t, Write(buf, FromResults("totaltime", sampleResults(), nil)))

	text := buf.String()
	assert.Contains(t, text, "case: large")
	assert.Contains(t, text, "build_exit_code: 2")
	assert.Contains(t, text, "completed: true")
	assert.Contains(t, text, "build_stderr_truncated: true")

	m, err := Read(strings.NewReader(text))
	require.NoError(t, err)
	assert.True(t, m.Completed)
	assert.True(t, fixedTime.Equal(m.GeneratedAt))

	results := m.Results()
	require.Len(t, results, 2)
	assert.Equal(t, sampleResults()[0], results[0])
	assert.Equal(t, batch.StatusError, results[1].Status)
	assert.EqualError(t, results[1].Error, "failed to copy build artifact")
	assert.Equal(t, "make: *** [all] Error 2\n", string(results[1].BuildStdErr))
	assert.True(t, results[1].BuildStdErrTruncated)
	assert.False(t, results[0].BuildStdErrTruncated)
}

func TestRead_Invalid(t *testing.T) {
	_, err := Read(strings.NewReader("cases: {not: [a list\n"))
	require.ErrorIs(t, err, ErrReadManifest)
}

func TestWriteFileReadFile(t *testing.T) {
	mfs := afero.NewMemMapFs()
	stubs := gostub.Stub(&fileops.FS, mfs)
	defer stubs.Reset()

	require.NoError(t, WriteFile("/out/manifest.yaml", FromResults("x", sampleResults(), nil)))

	m, err := ReadFile("/out/manifest.yaml")
	require.NoError(t, err)
	assert.Len(t, m.Cases, 2)

	_, err = ReadFile("/out/missing.yaml")
	require.ErrorIs(t, err, ErrReadManifest)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
