// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package buildcmd

import "bytes"

// capWriter keeps the first max bytes written to it and discards the rest.
// It never returns an error so it can sit in an io.MultiWriter next to the console.
type capWriter struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func (c *capWriter) Write(p []byte) (int, error) {
	room := c.max - c.buf.Len()
	if room <= 0 {
		c.truncated = c.truncated || len(p) > 0
		return len(p), nil
	}

	if len(p) > room {
		c.buf.Write(p[:room])
		c.truncated = true

		return len(p), nil
	}

	c.buf.Write(p)

	return len(p), nil
}

func (c *capWriter) Bytes() []byte {
	return c.buf.Bytes()
}
