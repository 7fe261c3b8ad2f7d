// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batchflags

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
)

// ErrGetConfigFile is returned when the batch definition cannot be fetched.
var ErrGetConfigFile = errors.New("failed to get batch definition file")

// Fetch returns the contents of the batch definition at src: a local path, or a
// go-getter source naming the file after "//", such as
// git::https://github.com/org/repo//batches/totaltime.yaml?ref=v1.
func Fetch(ctx context.Context, src string) ([]byte, error) {
	if src == "" {
		return nil, ErrGetConfigFile
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	root, file, err := splitSource(src, wd)
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	tmpDir, err := os.MkdirTemp("", "confbatch-getter-*")
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}
	defer os.RemoveAll(tmpDir) //nolint:errcheck

	client := getter.Client{
		DisableSymlinks: true,
	}

	res, err := client.Get(ctx, &getter.Request{
		Src:     root,
		Dst:     filepath.Join(tmpDir, "src"),
		Pwd:     wd,
		GetMode: getter.ModeDir,
	})
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	data, err := os.ReadFile(filepath.Join(res.Dst, file))
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	return data, nil
}

// splitSource returns the directory go-getter should fetch and the path of the
// definition inside it. Local files are fetched through their parent directory.
func splitSource(src, wd string) (string, string, error) {
	local, err := getter.Detect(&getter.Request{Src: src, Pwd: wd}, &getter.FileGetter{})
	if err != nil {
		return "", "", err
	}

	if local {
		return filepath.Dir(src), filepath.Base(src), nil
	}

	root, file := remoteSource(src)
	if file == "" {
		return "", "", fmt.Errorf("%s does not name a file after //", src)
	}

	return root, file, nil
}

// remoteSource splits a remote source at its "//" subdirectory. file is empty
// when there is none or it names a directory.
func remoteSource(src string) (root, file string) {
	root, sub := getter.SourceDirSubdir(src)
	if sub == "" || strings.HasSuffix(sub, "/") {
		return "", ""
	}

	return root, filepath.Clean(sub)
}
