// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

package database

import (
	"strings"
)

// CollisionFilter contains the optional filter dimensions shared by all
// aggregation queries. A nil/empty field means "all values"; both fields
// combine with AND logic.
//
// CollisionFilter is immutable after creation and safe for concurrent read
// access. Multiple goroutines can safely pass the same filter to different
// query methods.
type CollisionFilter struct {
	// Year filters to a single calendar year (nil = all years).
	Year *int

	// Severity filters to a single severity label (empty = all severities).
	Severity string
}

// buildFilterConditions converts a filter into parameterized WHERE clauses.
// Returns the clause fragments and their arguments in matching order.
func buildFilterConditions(f CollisionFilter) ([]string, []interface{}) {
	var clauses []string
	var args []interface{}

	if f.Year != nil {
		clauses = append(clauses, "year = ?")
		args = append(args, *f.Year)
	}
	if f.Severity != "" {
		clauses = append(clauses, "severity = ?")
		args = append(args, f.Severity)
	}

	return clauses, args
}

// whereSQL assembles base conditions plus filter conditions into a WHERE
// clause. Returns the empty string when there are no conditions at all.
func whereSQL(base []string, f CollisionFilter) (string, []interface{}) {
	clauses, args := buildFilterConditions(f)
	all := make([]string, 0, len(base)+len(clauses))
	all = append(all, base...)
	all = append(all, clauses...)

	if len(all) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(all, " AND "), args
}
