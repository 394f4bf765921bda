// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

package loader

import (
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/collisionscope/internal/models"
)

var testHeader = []string{
	"accident_index", "date", "time", "accident_severity",
	"number_of_casualties", "number_of_vehicles", "road_type",
	"speed_limit", "latitude", "longitude",
}

func newTestMapper(t *testing.T) *Mapper {
	t.Helper()
	m, err := NewMapper(testHeader)
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	return m
}

func TestNewMapperMissingRequiredColumn(t *testing.T) {
	_, err := NewMapper([]string{"accident_index", "date", "severity"})
	if err == nil {
		t.Fatal("expected error for header missing casualties column")
	}
	if !strings.Contains(err.Error(), "casualties") {
		t.Errorf("error %q does not name the missing column", err)
	}
}

func TestNewMapperAliases(t *testing.T) {
	// Older STATS19 vintages use accident_reference and accident_date.
	header := []string{
		"accident_reference", "accident_date", "accident_time", "severity",
		"casualties", "vehicles",
	}
	m, err := NewMapper(header)
	if err != nil {
		t.Fatalf("NewMapper with aliased header: %v", err)
	}

	rec, err := m.MapRow([]string{"A001", "15/03/2023", "14:30", "1", "2", "1"})
	if err != nil {
		t.Fatalf("MapRow: %v", err)
	}
	if rec.AccidentIndex != "A001" {
		t.Errorf("AccidentIndex = %q, want A001", rec.AccidentIndex)
	}
}

func TestNewMapperStripsBOM(t *testing.T) {
	header := append([]string{}, testHeader...)
	header[0] = "\ufeffaccident_index"
	if _, err := NewMapper(header); err != nil {
		t.Fatalf("NewMapper with BOM header: %v", err)
	}
}

func TestMapRow(t *testing.T) {
	m := newTestMapper(t)

	rec, err := m.MapRow([]string{
		"2023010001", "15/03/2023", "14:30", "2", "3", "2",
		"Single carriageway", "30", "51.5074", "-0.1278",
	})
	if err != nil {
		t.Fatalf("MapRow: %v", err)
	}

	if rec.AccidentIndex != "2023010001" {
		t.Errorf("AccidentIndex = %q", rec.AccidentIndex)
	}
	wantDate := time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)
	if !rec.Date.Equal(wantDate) {
		t.Errorf("Date = %v, want %v", rec.Date, wantDate)
	}
	if rec.Year != 2023 {
		t.Errorf("Year = %d, want 2023", rec.Year)
	}
	if rec.Severity != models.SeveritySerious {
		t.Errorf("Severity = %q, want Serious", rec.Severity)
	}
	if rec.Casualties != 3 || rec.Vehicles != 2 {
		t.Errorf("Casualties/Vehicles = %d/%d, want 3/2", rec.Casualties, rec.Vehicles)
	}
	if rec.Time == nil || *rec.Time != "14:30" {
		t.Errorf("Time = %v, want 14:30", rec.Time)
	}
	if rec.SpeedLimit == nil || *rec.SpeedLimit != 30 {
		t.Errorf("SpeedLimit = %v, want 30", rec.SpeedLimit)
	}
	if rec.Latitude == nil || *rec.Latitude != 51.5074 {
		t.Errorf("Latitude = %v, want 51.5074", rec.Latitude)
	}
	if rec.Longitude == nil || *rec.Longitude != -0.1278 {
		t.Errorf("Longitude = %v, want -0.1278", rec.Longitude)
	}
}

func TestMapRowRejections(t *testing.T) {
	m := newTestMapper(t)

	tests := []struct {
		name string
		row  []string
	}{
		{"empty accident index", []string{"", "15/03/2023", "", "1", "1", "1", "", "", "", ""}},
		{"bad date", []string{"A1", "2023/03/15", "", "1", "1", "1", "", "", "", ""}},
		{"empty date", []string{"A1", "", "", "1", "1", "1", "", "", "", ""}},
		{"unknown severity code", []string{"A1", "15/03/2023", "", "9", "1", "1", "", "", "", ""}},
		{"unknown severity label", []string{"A1", "15/03/2023", "", "Catastrophic", "1", "1", "", "", "", ""}},
		{"non-numeric casualties", []string{"A1", "15/03/2023", "", "1", "many", "1", "", "", "", ""}},
		{"non-numeric vehicles", []string{"A1", "15/03/2023", "", "1", "1", "", "", "", "", ""}},
		{"negative casualties", []string{"A1", "15/03/2023", "", "1", "-1", "1", "", "", "", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.MapRow(tt.row); err == nil {
				t.Error("expected rejection, got record")
			}
		})
	}
}

func TestMapRowSeverityForms(t *testing.T) {
	m := newTestMapper(t)

	tests := []struct {
		input string
		want  string
	}{
		{"1", models.SeverityFatal},
		{"2", models.SeveritySerious},
		{"3", models.SeveritySlight},
		{"Fatal", models.SeverityFatal},
		{"serious", models.SeveritySerious},
		{"SLIGHT", models.SeveritySlight},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rec, err := m.MapRow([]string{"A1", "15/03/2023", "", tt.input, "1", "1", "", "", "", ""})
			if err != nil {
				t.Fatalf("MapRow: %v", err)
			}
			if rec.Severity != tt.want {
				t.Errorf("Severity = %q, want %q", rec.Severity, tt.want)
			}
		})
	}
}

func TestMapRowOptionalFieldCoercion(t *testing.T) {
	m := newTestMapper(t)

	tests := []struct {
		name  string
		row   []string
		check func(t *testing.T, rec *models.CollisionRecord)
	}{
		{
			name: "malformed time nulled",
			row:  []string{"A1", "15/03/2023", "25:99", "1", "1", "1", "", "", "", ""},
			check: func(t *testing.T, rec *models.CollisionRecord) {
				if rec.Time != nil {
					t.Errorf("Time = %v, want nil", rec.Time)
				}
			},
		},
		{
			name: "malformed speed limit nulled",
			row:  []string{"A1", "15/03/2023", "", "1", "1", "1", "", "fast", "", ""},
			check: func(t *testing.T, rec *models.CollisionRecord) {
				if rec.SpeedLimit != nil {
					t.Errorf("SpeedLimit = %v, want nil", rec.SpeedLimit)
				}
			},
		},
		{
			name: "out-of-range coordinates nulled",
			row:  []string{"A1", "15/03/2023", "", "1", "1", "1", "", "", "91.0", "-0.1"},
			check: func(t *testing.T, rec *models.CollisionRecord) {
				if rec.Latitude != nil || rec.Longitude != nil {
					t.Errorf("coordinates = %v/%v, want nil/nil", rec.Latitude, rec.Longitude)
				}
			},
		},
		{
			name: "lone latitude nulled",
			row:  []string{"A1", "15/03/2023", "", "1", "1", "1", "", "", "51.5", ""},
			check: func(t *testing.T, rec *models.CollisionRecord) {
				if rec.Latitude != nil || rec.Longitude != nil {
					t.Errorf("coordinates = %v/%v, want nil/nil", rec.Latitude, rec.Longitude)
				}
			},
		},
		{
			name: "zero island nulled",
			row:  []string{"A1", "15/03/2023", "", "1", "1", "1", "", "", "0", "0"},
			check: func(t *testing.T, rec *models.CollisionRecord) {
				if rec.Latitude != nil || rec.Longitude != nil {
					t.Errorf("coordinates = %v/%v, want nil/nil", rec.Latitude, rec.Longitude)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := m.MapRow(tt.row)
			if err != nil {
				t.Fatalf("MapRow: %v", err)
			}
			tt.check(t, rec)
		})
	}
}

func TestMapRowShortRow(t *testing.T) {
	m := newTestMapper(t)

	// Trailing optional columns absent entirely.
	rec, err := m.MapRow([]string{"A1", "15/03/2023", "", "1", "1", "1"})
	if err != nil {
		t.Fatalf("MapRow with short row: %v", err)
	}
	if rec.SpeedLimit != nil || rec.Latitude != nil {
		t.Error("expected nil optional fields for short row")
	}
}
