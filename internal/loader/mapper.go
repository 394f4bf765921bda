// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

package loader

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/collisionscope/internal/models"
)

// STATS19 publications have shuffled column names across years
// (e.g. "accident_index" vs "accident_reference", "date" vs "accident_date").
// columnAliases maps every known header spelling to a canonical name so one
// mapper handles all vintages.
var columnAliases = map[string]string{
	"accident_index":       "accident_index",
	"accident_reference":   "accident_index",
	"date":                 "date",
	"accident_date":        "date",
	"time":                 "time",
	"accident_time":        "time",
	"accident_severity":    "severity",
	"severity":             "severity",
	"number_of_casualties": "casualties",
	"casualties":           "casualties",
	"number_of_vehicles":   "vehicles",
	"vehicles":             "vehicles",
	"road_type":            "road_type",
	"speed_limit":          "speed_limit",
	"latitude":             "latitude",
	"longitude":            "longitude",
}

// requiredColumns must all resolve from the header before any row is mapped.
var requiredColumns = []string{
	"accident_index", "date", "severity", "casualties", "vehicles",
}

// severityLabels translates the STATS19 numeric severity codes. Label
// strings pass through unchanged so pre-translated exports also load.
var severityLabels = map[string]string{
	"1": models.SeverityFatal,
	"2": models.SeveritySerious,
	"3": models.SeveritySlight,
}

// dateLayouts are tried in order. UK open data publishes DD/MM/YYYY;
// ISO dates appear in some re-exports.
var dateLayouts = []string{"02/01/2006", "2006-01-02"}

// Mapper converts raw CSV rows into collision records using a column
// index resolved from the file's header row.
type Mapper struct {
	indices map[string]int
}

// NewMapper resolves the canonical column positions from a CSV header row.
// It returns an error when a required column is absent.
func NewMapper(header []string) (*Mapper, error) {
	indices := make(map[string]int, len(columnAliases))
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff")))
		canonical, ok := columnAliases[name]
		if !ok {
			continue
		}
		if _, seen := indices[canonical]; !seen {
			indices[canonical] = i
		}
	}

	for _, col := range requiredColumns {
		if _, ok := indices[col]; !ok {
			return nil, fmt.Errorf("required column %q not found in header", col)
		}
	}

	return &Mapper{indices: indices}, nil
}

// MapRow converts one CSV data row into a validated collision record.
// Optional fields that fail coercion (time, speed limit, coordinates) are
// nulled; required fields that fail coercion reject the whole row.
func (m *Mapper) MapRow(row []string) (*models.CollisionRecord, error) {
	index := m.field(row, "accident_index")
	if index == "" {
		return nil, fmt.Errorf("empty accident_index")
	}

	date, err := parseDate(m.field(row, "date"))
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}

	severity, err := parseSeverity(m.field(row, "severity"))
	if err != nil {
		return nil, err
	}

	casualties, err := strconv.Atoi(m.field(row, "casualties"))
	if err != nil {
		return nil, fmt.Errorf("parse casualties: %w", err)
	}

	vehicles, err := strconv.Atoi(m.field(row, "vehicles"))
	if err != nil {
		return nil, fmt.Errorf("parse vehicles: %w", err)
	}

	record := &models.CollisionRecord{
		AccidentIndex: index,
		Date:          date,
		Year:          date.Year(),
		Severity:      severity,
		Casualties:    casualties,
		Vehicles:      vehicles,
		RoadType:      m.field(row, "road_type"),
	}

	if t := m.field(row, "time"); t != "" {
		if _, err := time.Parse("15:04", t); err == nil {
			record.Time = &t
		}
	}

	if s := m.field(row, "speed_limit"); s != "" {
		if limit, err := strconv.Atoi(s); err == nil && limit >= 0 {
			record.SpeedLimit = &limit
		}
	}

	record.Latitude, record.Longitude = parseCoordinates(
		m.field(row, "latitude"), m.field(row, "longitude"))

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

func (m *Mapper) field(row []string, canonical string) string {
	i, ok := m.indices[canonical]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func parseSeverity(value string) (string, error) {
	if label, ok := severityLabels[value]; ok {
		return label, nil
	}
	switch strings.ToLower(value) {
	case "fatal":
		return models.SeverityFatal, nil
	case "serious":
		return models.SeveritySerious, nil
	case "slight":
		return models.SeveritySlight, nil
	}
	return "", fmt.Errorf("unrecognized severity %q", value)
}

// parseCoordinates returns both coordinates or neither. STATS19 uses
// sentinel values (-1) and blanks for unknown positions; anything outside
// the WGS84 range is treated the same way.
func parseCoordinates(latStr, lonStr string) (*float64, *float64) {
	if latStr == "" || lonStr == "" {
		return nil, nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, nil
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, nil
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, nil
	}
	if lat == 0 && lon == 0 {
		return nil, nil
	}
	return &lat, &lon
}
