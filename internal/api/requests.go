// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

// Package api provides HTTP request validation structs with
// go-playground/validator tags. Every aggregation endpoint shares the same
// optional filter pair (year, severity); list endpoints add a bounded limit.
package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/tomtom215/collisionscope/internal/database"
	"github.com/tomtom215/collisionscope/internal/models"
)

// FilterRequest holds the validated filter parameters shared by all
// aggregation endpoints.
//
// Fields:
//   - Year: Optional single calendar year (STATS19 publications start 1979)
//   - Severity: Optional severity label
type FilterRequest struct {
	Year     *int   `validate:"omitempty,gte=1979,lte=2100"`
	Severity string `validate:"omitempty,oneof=Fatal Serious Slight"`
}

// RoadTypesRequest adds the ranking size to the shared filters.
type RoadTypesRequest struct {
	FilterRequest
	Limit int `validate:"min=1,max=100"`
}

// LocationsRequest adds the sample size cap to the shared filters. The
// effective maximum comes from configuration, enforced after validation.
type LocationsRequest struct {
	FilterRequest
	MaxPoints int `validate:"min=1"`
}

// parseFilterRequest extracts year and severity query parameters. A
// non-numeric year is rejected here rather than silently ignored; severity
// labels are validated by tag.
func parseFilterRequest(r *http.Request) (FilterRequest, *models.APIError) {
	var req FilterRequest

	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return req, &models.APIError{
				Code:    "VALIDATION_ERROR",
				Message: fmt.Sprintf("year must be an integer, got %q", raw),
			}
		}
		req.Year = &year
	}

	req.Severity = r.URL.Query().Get("severity")

	if apiErr := validateRequest(&req); apiErr != nil {
		return req, apiErr
	}
	return req, nil
}

// toFilter converts validated request parameters into a warehouse filter.
func (req FilterRequest) toFilter() database.CollisionFilter {
	return database.CollisionFilter{
		Year:     req.Year,
		Severity: req.Severity,
	}
}
