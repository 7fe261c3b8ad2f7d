// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batch

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/matt-FFFFFF/confbatch/internal/buildcmd"
)

// Defaults match the layout of an IoT.js checkout with the jmem total-time configs.
const (
	DefaultBuildScript     = "./build_rpi.sh"
	DefaultConfigGlob      = "./build_batched_jmem_configs_totaltime/*.h"
	DefaultTargetConfig    = "./deps/jerry/jerry-core/jmem/jmem-config.h"
	DefaultSourceOutput    = "./build/arm-linux/debug/bin/iotjs"
	DefaultTargetOutputDir = "./out/"
	DefaultArtifactPrefix  = "iotjs"
)

// Config describes one batch.
type Config struct {
	BuildScript      string // Script handed to Shell, relative to WorkingDirectory
	ConfigGlob       string // Pattern matching the configuration headers
	TargetConfig     string // Where the build reads its configuration from
	SourceOutput     string // Where the build leaves its artifact
	TargetOutputDir  string // Where artifacts are archived
	ArtifactPrefix   string // Archived name is <ArtifactPrefix>-<case name>
	Shell            string // Interpreter for BuildScript
	WorkingDirectory string // Base for relative paths and the build's cwd

	Stdout io.Writer // Progress lines and build stdout, nil discards
	Stderr io.Writer // Build stderr, nil discards
}

// DefaultConfig returns a Config with every path set to its default.
func DefaultConfig() Config {
	return Config{
		BuildScript:      DefaultBuildScript,
		ConfigGlob:       DefaultConfigGlob,
		TargetConfig:     DefaultTargetConfig,
		SourceOutput:     DefaultSourceOutput,
		TargetOutputDir:  DefaultTargetOutputDir,
		ArtifactPrefix:   DefaultArtifactPrefix,
		Shell:            buildcmd.DefaultShell,
		WorkingDirectory: ".",
	}
}

// WithDefaults fills every empty field from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()

	setIfEmpty(&c.BuildScript, d.BuildScript)
	setIfEmpty(&c.ConfigGlob, d.ConfigGlob)
	setIfEmpty(&c.TargetConfig, d.TargetConfig)
	setIfEmpty(&c.SourceOutput, d.SourceOutput)
	setIfEmpty(&c.TargetOutputDir, d.TargetOutputDir)
	setIfEmpty(&c.ArtifactPrefix, d.ArtifactPrefix)
	setIfEmpty(&c.Shell, d.Shell)
	setIfEmpty(&c.WorkingDirectory, d.WorkingDirectory)

	return c
}

// resolve returns p relative to the working directory unless it is absolute.
func (c Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.WorkingDirectory == "" || c.WorkingDirectory == "." {
		return p
	}

	return filepath.Join(c.WorkingDirectory, p)
}

// ArtifactPath is where the artifact of caseName is archived. The directory is
// kept as given, so "./out/" yields "./out/iotjs-small".
func (c Config) ArtifactPath(caseName string) string {
	dir := c.resolve(c.TargetOutputDir)
	name := ArtifactName(c.ArtifactPrefix, caseName)

	if dir == "" {
		return name
	}

	if strings.HasSuffix(dir, "/") || strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir + name
	}

	return dir + string(filepath.Separator) + name
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
