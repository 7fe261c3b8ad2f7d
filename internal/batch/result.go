// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batch

import (
	"time"
)

// Status is the outcome of a single case.
type Status string

const (
	// StatusSuccess means the build exited 0 and the artifact was archived.
	StatusSuccess Status = "success"
	// StatusBuildFailed means the build exited non-zero but an artifact was still archived.
	// It may be stale, left behind by an earlier case.
	StatusBuildFailed Status = "build-failed"
	// StatusError means a step of the case failed and the batch stopped.
	StatusError Status = "error"
)

// Result is the outcome of one case.
type Result struct {
	Case
	Status        Status
	BuildExitCode int
	BuildStdErr   []byte
	// BuildStdErrTruncated is set when the build wrote more stderr than was kept.
	BuildStdErrTruncated bool
	Error                error
	Duration             time.Duration
}

// Results is the outcome of a batch, in case order.
type Results []*Result

// HasError reports whether any case did not fully succeed.
func (r Results) HasError() bool {
	for _, v := range r {
		if v.Status != StatusSuccess {
			return true
		}
	}

	return false
}

// Count returns how many results have status s.
func (r Results) Count(s Status) int {
	n := 0

	for _, v := range r {
		if v.Status == s {
			n++
		}
	}

	return n
}
