// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

package models

import (
	"fmt"
	"time"
)

// Severity labels for collision records. The STATS19 source encodes severity
// as 1 (fatal), 2 (serious), 3 (slight); records are stored with the label.
const (
	SeverityFatal   = "Fatal"
	SeveritySerious = "Serious"
	SeveritySlight  = "Slight"
)

// ValidSeverity reports whether s is one of the known severity labels.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityFatal, SeveritySerious, SeveritySlight:
		return true
	}
	return false
}

// CollisionRecord represents one reported road collision.
//
// A record is created by parsing one row of a yearly STATS19-style CSV file,
// inserted once into the warehouse on first load, and never updated in place.
// Optional fields (coordinates, time, speed limit) are pointers: nil means
// the source field was absent or failed coercion.
type CollisionRecord struct {
	// AccidentIndex is the source-provided unique identifier.
	AccidentIndex string `json:"accident_index" db:"accident_index"`

	// Date is the calendar date of the collision (UK source format DD/MM/YYYY).
	Date time.Time `json:"date" db:"accident_date"`

	// Time is the collision time as "HH:MM", if present in the source.
	Time *string `json:"time,omitempty" db:"accident_time"`

	// Year is derived from Date and kept as a column for indexed filtering.
	Year int `json:"year" db:"year"`

	// Severity is one of the Severity* labels.
	Severity string `json:"severity" db:"severity"`

	// Casualties is the number of casualties, >= 0.
	Casualties int `json:"number_of_casualties" db:"number_of_casualties"`

	// Vehicles is the number of vehicles involved, >= 0.
	Vehicles int `json:"number_of_vehicles" db:"number_of_vehicles"`

	// RoadType is the categorical road type ("Single carriageway", ...).
	RoadType string `json:"road_type" db:"road_type"`

	// SpeedLimit is the posted speed limit in mph, if present.
	SpeedLimit *int `json:"speed_limit,omitempty" db:"speed_limit"`

	// Latitude/Longitude are WGS84 coordinates; nil when absent or out of range.
	Latitude  *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64 `json:"longitude,omitempty" db:"longitude"`
}

// HasCoordinates reports whether the record carries a usable coordinate pair.
func (c *CollisionRecord) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// Validate checks the record invariants. Records that fail validation are
// rejected by the loader and counted, never inserted.
func (c *CollisionRecord) Validate() error {
	if c.AccidentIndex == "" {
		return fmt.Errorf("accident_index is required")
	}
	if c.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if c.Year != c.Date.Year() {
		return fmt.Errorf("year %d inconsistent with date %s", c.Year, c.Date.Format("2006-01-02"))
	}
	if !ValidSeverity(c.Severity) {
		return fmt.Errorf("unknown severity %q", c.Severity)
	}
	if c.Casualties < 0 {
		return fmt.Errorf("number_of_casualties must be >= 0, got %d", c.Casualties)
	}
	if c.Vehicles < 0 {
		return fmt.Errorf("number_of_vehicles must be >= 0, got %d", c.Vehicles)
	}
	if c.Latitude != nil && (*c.Latitude < -90 || *c.Latitude > 90) {
		return fmt.Errorf("latitude %f out of range [-90, 90]", *c.Latitude)
	}
	if c.Longitude != nil && (*c.Longitude < -180 || *c.Longitude > 180) {
		return fmt.Errorf("longitude %f out of range [-180, 180]", *c.Longitude)
	}
	return nil
}
