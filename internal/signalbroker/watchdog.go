// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/confbatch/internal/ctxlog"
)

// Watch reads sigCh until it is closed or ctx is done.
// It calls cancel on the second signal of the same type and then returns.
func Watch(ctx context.Context, sigCh <-chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				ctxlog.Warn(ctx, "second signal received, cancelling batch", "signal", sig.String())
				cancel()

				return
			}

			ctxlog.Info(ctx, "signal received, waiting for the running build", "signal", sig.String())

			seen[sig] = struct{}{}
		}
	}
}
