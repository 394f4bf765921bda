// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/collisionscope/internal/models"
)

// Stats returns the KPI summary block: total collision count and the
// average casualties and vehicles per collision, under the optional
// year/severity filters.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) || !h.requireDB(w) {
		return
	}

	req, apiErr := parseFilterRequest(r)
	if apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	start := time.Now()

	stats, err := h.db.Summary(r.Context(), req.toFilter())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to retrieve statistics", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     stats,
		Metadata: queryMetadata(r, start),
	})
}

// Trend returns the monthly collision counts, ordered chronologically.
func (h *Handler) Trend(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) || !h.requireDB(w) {
		return
	}

	req, apiErr := parseFilterRequest(r)
	if apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	start := time.Now()

	months, err := h.db.MonthlyTrend(r.Context(), req.toFilter())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to retrieve monthly trend", err)
		return
	}

	var total int64
	for _, m := range months {
		total += m.Count
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.TrendResponse{
			Months: months,
			Total:  total,
		},
		Metadata: queryMetadata(r, start),
	})
}

// RoadTypes returns the most frequent road types, ordered by count
// descending with ties broken alphabetically.
func (h *Handler) RoadTypes(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) || !h.requireDB(w) {
		return
	}

	filter, apiErr := parseFilterRequest(r)
	if apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	req := RoadTypesRequest{
		FilterRequest: filter,
		Limit:         getIntParam(r, "limit", h.config.API.DefaultRoadTypeLimit),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	start := time.Now()

	roadTypes, err := h.db.TopRoadTypes(r.Context(), req.toFilter(), req.Limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to retrieve road types", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.RoadTypesResponse{
			RoadTypes: roadTypes,
		},
		Metadata: queryMetadata(r, start),
	})
}

// Locations returns a uniform random sample of collision coordinates for
// map rendering. max_points is capped by configuration rather than rejected
// so over-eager clients still get a usable response.
func (h *Handler) Locations(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) || !h.requireDB(w) {
		return
	}

	filter, apiErr := parseFilterRequest(r)
	if apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	req := LocationsRequest{
		FilterRequest: filter,
		MaxPoints:     getIntParam(r, "max_points", h.config.API.DefaultPointLimit),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if req.MaxPoints > h.config.API.MaxPointLimit {
		req.MaxPoints = h.config.API.MaxPointLimit
	}

	start := time.Now()

	points, err := h.db.SampledLocations(r.Context(), req.toFilter(), req.MaxPoints)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to retrieve locations", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.LocationsResponse{
			Points: points,
			Count:  len(points),
		},
		Metadata: queryMetadata(r, start),
	})
}
