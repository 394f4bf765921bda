// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

package validation

import (
	"strings"
	"testing"
)

type filterParams struct {
	Year     *int   `validate:"omitempty,gte=1979,lte=2100"`
	Severity string `validate:"omitempty,oneof=Fatal Serious Slight"`
	Limit    int    `validate:"min=1,max=100"`
}

func intPtr(i int) *int { return &i }

func TestValidateStructPasses(t *testing.T) {
	tests := []struct {
		name   string
		params filterParams
	}{
		{"all fields", filterParams{Year: intPtr(2022), Severity: "Fatal", Limit: 10}},
		{"optional fields empty", filterParams{Limit: 1}},
		{"boundary values", filterParams{Year: intPtr(1979), Severity: "Slight", Limit: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(&tt.params); err != nil {
				t.Errorf("expected pass, got %v", err)
			}
		})
	}
}

func TestValidateStructFails(t *testing.T) {
	tests := []struct {
		name      string
		params    filterParams
		wantField string
	}{
		{"year too early", filterParams{Year: intPtr(1950), Limit: 10}, "Year"},
		{"year too late", filterParams{Year: intPtr(3000), Limit: 10}, "Year"},
		{"unknown severity", filterParams{Severity: "Awful", Limit: 10}, "Severity"},
		{"limit zero", filterParams{Limit: 0}, "Limit"},
		{"limit too large", filterParams{Limit: 101}, "Limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.params)
			if err == nil {
				t.Fatal("expected validation failure")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("expected one field error, got %d: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("failed field = %q, want %q", errs[0].Field(), tt.wantField)
			}
		})
	}
}

func TestToAPIErrorSingleField(t *testing.T) {
	err := ValidateStruct(&filterParams{Severity: "Bad", Limit: 10})
	if err == nil {
		t.Fatal("expected validation failure")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "Severity") {
		t.Errorf("message %q does not name the field", apiErr.Message)
	}
	if apiErr.Details["field"] != "Severity" {
		t.Errorf("details = %v, want field Severity", apiErr.Details)
	}
}

func TestToAPIErrorMultipleFields(t *testing.T) {
	err := ValidateStruct(&filterParams{Year: intPtr(1900), Severity: "Bad", Limit: 0})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if len(err.Errors()) != 3 {
		t.Fatalf("expected 3 field errors, got %d", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Errorf("details = %v, want aggregated fields list", apiErr.Details)
	}
	// Combined message names every failing field.
	for _, field := range []string{"Year", "Severity", "Limit"} {
		if !strings.Contains(apiErr.Message, field) {
			t.Errorf("message %q missing field %s", apiErr.Message, field)
		}
	}
}

func TestTranslatedMessages(t *testing.T) {
	err := ValidateStruct(&filterParams{Severity: "Bad", Limit: 10})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	msg := err.Error()
	if !strings.Contains(msg, "must be one of") {
		t.Errorf("oneof message not translated: %q", msg)
	}
}
