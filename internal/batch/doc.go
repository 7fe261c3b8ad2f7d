// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package batch builds a target once per configuration header.
//
// For every header matched by Config.ConfigGlob the runner copies the header over
// Config.TargetConfig, runs the build script and copies Config.SourceOutput to
// Config.TargetOutputDir as <prefix>-<case name>. Cases run one after another.
//
// A build that exits non-zero does not stop the batch. Any filesystem failure
// does, and nothing already written is rolled back.
//
// The target config and source output paths are shared by every case, so two
// runners must never drive the same pair at once. Run refuses to start while another
// Run in the same process holds the same target config; across processes this is
// left to the caller.
package batch
