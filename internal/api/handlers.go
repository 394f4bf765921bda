// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/collisionscope/internal/config"
	"github.com/tomtom215/collisionscope/internal/database"
	"github.com/tomtom215/collisionscope/internal/loader"
)

// Handler processes HTTP requests for the collision analytics API.
type Handler struct {
	db        *database.DB
	loader    *loader.Loader
	config    *config.Config
	startTime time.Time
	version   string
}

// NewHandler creates an API handler. loader may be nil when ingestion is
// disabled; the load status endpoint then reports it as such.
func NewHandler(db *database.DB, ldr *loader.Loader, cfg *config.Config, version string) *Handler {
	return &Handler{
		db:        db,
		loader:    ldr,
		config:    cfg,
		startTime: time.Now(),
		version:   version,
	}
}

// requireMethod rejects requests with other HTTP methods. Chi already routes
// by method; this keeps handlers safe when mounted directly in tests.
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return false
	}
	return true
}

// requireDB rejects requests when the warehouse is not available.
func (h *Handler) requireDB(w http.ResponseWriter) bool {
	if h.db == nil {
		respondError(w, http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE", "Database not available", nil)
		return false
	}
	return true
}
