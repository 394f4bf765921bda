// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

package models

import "time"

// SummaryStats is the KPI block shown at the top of the dashboard.
// Averages are 0 (not NaN, not an error) when no rows match the filter.
type SummaryStats struct {
	TotalCount        int64   `json:"total_count"`
	AverageCasualties float64 `json:"average_casualties"`
	AverageVehicles   float64 `json:"average_vehicles"`
}

// MonthlyCount is one point of the monthly trend line. Month is the first
// instant of the calendar month (DATE_TRUNC('month', ...)).
type MonthlyCount struct {
	Month time.Time `json:"month"`
	Count int64     `json:"count"`
}

// RoadTypeCount is one bar of the road-type ranking, ordered by Count
// descending with ties broken by RoadType ascending.
type RoadTypeCount struct {
	RoadType string `json:"road_type"`
	Count    int64  `json:"count"`
}

// LocationPoint is one sampled map marker. Points are drawn uniformly at
// random from the matching rows with non-null coordinates, so repeated
// requests over the same data may return different samples.
type LocationPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Severity  string  `json:"severity"`
}

// TrendResponse wraps the monthly trend with its aggregate total so clients
// can cross-check counts without a second request.
type TrendResponse struct {
	Months []MonthlyCount `json:"months"`
	Total  int64          `json:"total"`
}

// RoadTypesResponse wraps the road-type ranking.
type RoadTypesResponse struct {
	RoadTypes []RoadTypeCount `json:"road_types"`
}

// LocationsResponse wraps the sampled geographic points.
type LocationsResponse struct {
	Points []LocationPoint `json:"points"`
	Count  int             `json:"count"`
}
