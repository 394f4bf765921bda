// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

package database

import (
	"context"
	"io"
	"time"

	"github.com/tomtom215/collisionscope/internal/logging"
)

// ensureContext creates a context with 30-second timeout if none provided.
// All warehouse operations run with a deadline to prevent hanging queries.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 30*time.Second)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, 30*time.Second)
	}

	return ctx, func() {}
}

// closeQuietly closes a resource, discarding any error.
func closeQuietly(c io.Closer) {
	_ = c.Close()
}

// closeWithLog closes a resource and logs a warning on failure.
func closeWithLog(c io.Closer, what string) {
	if err := c.Close(); err != nil {
		logging.Warn().Err(err).Str("resource", what).Msg("Failed to close resource")
	}
}
