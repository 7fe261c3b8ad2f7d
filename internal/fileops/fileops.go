// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package fileops holds the filesystem primitives of a batch: glob expansion,
// directory creation and file copies. Everything goes through FS so tests can
// run against an in-memory filesystem.
package fileops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FS is the filesystem used by this package. Default is the OS filesystem.
var FS = afero.NewOsFs()

const dirMode = 0o755

var (
	// ErrGlob is returned when a glob pattern is malformed.
	ErrGlob = errors.New("invalid glob pattern")
	// ErrFileCopy is returned when a file copy operation fails.
	ErrFileCopy = errors.New("file copy error")
	// ErrMkdir is returned when a directory cannot be created.
	ErrMkdir = errors.New("cannot create directory")
)

// Glob returns the names of all files matching pattern, in the order the
// filesystem lists them. A pattern with no matches is not an error.
// As in a shell, a wildcard element only matches names starting with "." when
// the element itself starts with ".": "configs/*.h" skips "configs/.small.h".
func Glob(pattern string) ([]string, error) {
	matches, err := afero.Glob(FS, pattern)
	if err != nil {
		return nil, errors.Join(ErrGlob, fmt.Errorf("%q: %w", pattern, err))
	}

	elems := splitPath(pattern)
	visible := matches[:0]

	for _, m := range matches {
		if !hidden(elems, splitPath(m)) {
			visible = append(visible, m)
		}
	}

	return visible, nil
}

// hidden reports whether a wildcard element of the pattern matched a dot name.
// Glob resolves one element per path element, so the two align from the end.
func hidden(pattern, match []string) bool {
	for i, j := len(pattern)-1, len(match)-1; i >= 0 && j >= 0; i, j = i-1, j-1 {
		p, m := pattern[i], match[j]
		if hasMeta(p) && !strings.HasPrefix(p, ".") && strings.HasPrefix(m, ".") {
			return true
		}
	}

	return false
}

func splitPath(p string) []string {
	return strings.Split(filepath.ToSlash(filepath.Clean(p)), "/")
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, `*?[`)
}

// EnsureDir creates path and any missing parents. An existing directory is left alone.
func EnsureDir(path string) error {
	if err := FS.MkdirAll(path, dirMode); err != nil {
		return errors.Join(ErrMkdir, err)
	}

	return nil
}

// Exists reports whether path exists.
func Exists(path string) (bool, error) {
	return afero.Exists(FS, path)
}

// Copy copies the contents of src to dst, truncating dst if it exists.
// The permission bits of src are applied to dst so copied binaries stay executable.
// The error wraps the underlying *fs.PathError, so errors.Is(err, fs.ErrNotExist)
// holds when src is missing.
func Copy(src, dst string) error {
	in, err := FS.Open(src)
	if err != nil {
		return errors.Join(ErrFileCopy, err)
	}
	defer in.Close() //nolint:errcheck

	info, err := in.Stat()
	if err != nil {
		return errors.Join(ErrFileCopy, err)
	}

	if info.IsDir() {
		return errors.Join(ErrFileCopy, &os.PathError{Op: "copy", Path: src, Err: errors.New("is a directory")})
	}

	mode := info.Mode().Perm()

	out, err := FS.OpenFile(filepath.Clean(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return errors.Join(ErrFileCopy, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close() //nolint:errcheck
		return errors.Join(ErrFileCopy, err)
	}

	if err := out.Close(); err != nil {
		return errors.Join(ErrFileCopy, err)
	}

	// OpenFile only applies mode on create.
	if err := FS.Chmod(dst, mode); err != nil {
		return errors.Join(ErrFileCopy, err)
	}

	return nil
}
