// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/collisionscope/internal/loader"
	"github.com/tomtom215/collisionscope/internal/logging"
	"github.com/tomtom215/collisionscope/internal/models"
)

// LoadStatus reports the loader's progress summary: files attempted, rows
// loaded, and rows rejected during the startup (or last triggered) load.
func (h *Handler) LoadStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	if h.loader == nil {
		respondJSON(w, http.StatusOK, &models.APIResponse{
			Status: "success",
			Data:   map[string]interface{}{"status": "disabled"},
			Metadata: models.Metadata{
				Timestamp: time.Now(),
				RequestID: logging.RequestIDFromContext(r.Context()),
			},
		})
		return
	}

	stats, running := h.loader.Stats()

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   stats.ToSummary(running),
		Metadata: models.Metadata{
			Timestamp: time.Now(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	})
}

// TriggerLoad starts a background ingestion pass over the configured data
// directory. Returns 409 when a load is already running, 503 when the
// loader is disabled.
func (h *Handler) TriggerLoad(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	if h.loader == nil {
		respondError(w, http.StatusServiceUnavailable, "LOADER_DISABLED", "Ingestion is disabled", nil)
		return
	}

	// Probe the in-progress flag synchronously so the client gets a 409
	// instead of a fire-and-forget success.
	if _, running := h.loader.Stats(); running {
		respondError(w, http.StatusConflict, "LOAD_IN_PROGRESS", "A load is already running", nil)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()
		if _, err := h.loader.Load(ctx, nil); err != nil && !errors.Is(err, loader.ErrLoadInProgress) {
			logging.Error().Err(err).Msg("Triggered load failed")
		}
	}()

	respondJSON(w, http.StatusAccepted, &models.APIResponse{
		Status: "success",
		Data:   map[string]interface{}{"status": "started"},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	})
}
