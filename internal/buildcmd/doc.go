// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package buildcmd runs a build script as a blocking child process.
//
// The child inherits the environment, streams its output to the caller's writers
// and is supervised by a watchdog goroutine: the first signal of a kind is
// forwarded, the second kills the child, and so does a done context.
// A non-zero exit status is reported in the Result, never as a Go error on its own.
package buildcmd
