// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// headerMarker is what CaseName truncates at.
const headerMarker = ".h"

// ErrNoHeaderSuffix is returned when a configuration file name does not contain ".h".
var ErrNoHeaderSuffix = errors.New("configuration file name does not contain " + headerMarker)

// CaseName derives the label of a configuration file from its base name by cutting
// at the FIRST ".h", not the last extension: "small.h" is "small", "a.b.h" is "a.b",
// "a.hot.h" is "a" and "x.hpp" is "x".
func CaseName(path string) (string, error) {
	base := filepath.Base(path)

	i := strings.Index(base, headerMarker)
	if i < 0 {
		return "", fmt.Errorf("%w: %s", ErrNoHeaderSuffix, base)
	}

	return base[:i], nil
}

// ArtifactName is the archived file name for a case.
func ArtifactName(prefix, caseName string) string {
	return prefix + "-" + caseName
}
