// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package lastline provides an io.Writer that remembers the last complete line
// written to it, so a long build can report where it has got to.
package lastline

import (
	"bytes"
	"sync"
)

// Writer tracks the last complete line written. It is safe for concurrent use.
type Writer struct {
	mu      sync.RWMutex
	last    string
	partial bytes.Buffer
}

// Write implements io.Writer. It never fails.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	data := p

	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}

		w.partial.Write(data[:i])
		w.last = string(bytes.TrimRight(w.partial.Bytes(), "\r"))
		w.partial.Reset()
		data = data[i+1:]
	}

	w.partial.Write(data)

	return len(p), nil
}

// Last returns the last complete line, or an empty string if there is none.
// If maxLength > 3 and the line is longer, it is cut and suffixed with "...".
func (w *Writer) Last(maxLength int) string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if maxLength > 3 && len(w.last) > maxLength {
		return w.last[:maxLength-3] + "..."
	}

	return w.last
}

// Partial returns the text written since the last newline. For output redrawn
// with carriage returns, only the text after the last one is returned.
func (w *Writer) Partial() string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	b := w.partial.Bytes()
	if i := bytes.LastIndexByte(b, '\r'); i >= 0 {
		b = b[i+1:]
	}

	return string(b)
}
