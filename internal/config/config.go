// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config reads batch definitions from YAML.
//
//	name: totaltime
//	working_directory: external/iotjs
//	build_script: ./build_rpi.sh
//	config_glob: ./build_batched_jmem_configs_totaltime/*.h
//	target_config: ./deps/jerry/jerry-core/jmem/jmem-config.h
//	source_output: ./build/arm-linux/debug/bin/iotjs
//	target_output_dir: ./out/
//	artifact_prefix: iotjs
//	shell: /bin/bash
//
// Every field is optional; missing ones take the batch package defaults.
package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/confbatch/internal/batch"
	"github.com/matt-FFFFFF/confbatch/internal/ctxlog"
)

var (
	// ErrInvalidYaml is returned when the definition cannot be decoded.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrEmptyDefinition is returned when the document is empty.
	ErrEmptyDefinition = errors.New("empty batch definition")
)

// Definition is the YAML form of a batch.
type Definition struct {
	Name             string `yaml:"name"`
	Description      string `yaml:"description,omitempty"`
	WorkingDirectory string `yaml:"working_directory,omitempty"`
	BuildScript      string `yaml:"build_script,omitempty"`
	ConfigGlob       string `yaml:"config_glob,omitempty"`
	TargetConfig     string `yaml:"target_config,omitempty"`
	SourceOutput     string `yaml:"source_output,omitempty"`
	TargetOutputDir  string `yaml:"target_output_dir,omitempty"`
	ArtifactPrefix   string `yaml:"artifact_prefix,omitempty"`
	Shell            string `yaml:"shell,omitempty"`
}

// Parse decodes a Definition. Unknown keys are rejected so typos do not
// silently fall back to defaults.
func Parse(data []byte) (*Definition, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDefinition
	}

	var def Definition
	if err := yaml.UnmarshalWithOptions(data, &def, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidYaml, yaml.FormatError(err, false, true))
	}

	return &def, nil
}

// BuildFromYAML decodes data and returns the batch it describes, with defaults
// applied, and the batch name.
func BuildFromYAML(ctx context.Context, data []byte) (batch.Config, string, error) {
	def, err := Parse(data)
	if err != nil {
		return batch.Config{}, "", err
	}

	ctxlog.Debug(ctx, "batch definition loaded", "name", def.Name)

	return def.Config().WithDefaults(), def.Name, nil
}

// Config converts d to a batch.Config without applying defaults.
func (d *Definition) Config() batch.Config {
	return batch.Config{
		BuildScript:      d.BuildScript,
		ConfigGlob:       d.ConfigGlob,
		TargetConfig:     d.TargetConfig,
		SourceOutput:     d.SourceOutput,
		TargetOutputDir:  d.TargetOutputDir,
		ArtifactPrefix:   d.ArtifactPrefix,
		Shell:            d.Shell,
		WorkingDirectory: d.WorkingDirectory,
	}
}

// Merge overlays the non-empty fields of override on base.
func Merge(base, override batch.Config) batch.Config {
	pick := func(b, o string) string {
		if o != "" {
			return o
		}

		return b
	}

	base.BuildScript = pick(base.BuildScript, override.BuildScript)
	base.ConfigGlob = pick(base.ConfigGlob, override.ConfigGlob)
	base.TargetConfig = pick(base.TargetConfig, override.TargetConfig)
	base.SourceOutput = pick(base.SourceOutput, override.SourceOutput)
	base.TargetOutputDir = pick(base.TargetOutputDir, override.TargetOutputDir)
	base.ArtifactPrefix = pick(base.ArtifactPrefix, override.ArtifactPrefix)
	base.Shell = pick(base.Shell, override.Shell)
	base.WorkingDirectory = pick(base.WorkingDirectory, override.WorkingDirectory)

	if override.Stdout != nil {
		base.Stdout = override.Stdout
	}

	if override.Stderr != nil {
		base.Stderr = override.Stderr
	}

	return base
}
