// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context.
//
// The default logger writes through PrettyHandler, a human-readable console format.
// The level is read from <EXECUTABLE>_LOG_LEVEL, e.g. CONFBATCH_LOG_LEVEL=DEBUG.
package ctxlog
