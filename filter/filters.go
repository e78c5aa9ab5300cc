//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Aaron Mathis aaron.mathis@gmail.com
//
// This file is part of CSVReport.
//
// CSVReport is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// CSVReport is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with CSVReport. If not, see https://www.gnu.org/licenses/.

package filter

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aaronlmathis/csvreport/core"
)

// Package filter provides reusable, composable row filtering functions.
//
// This package includes field-based, value-based, and custom logic filters for conditional row selection.
// All functions return core.Filter implementations; fields are addressed by zero-based column index.

// NotBlank creates a filter that excludes rows consisting of a single empty field (blank lines)
func NotBlank() core.Filter {
	return core.FilterFunc(func(ctx context.Context, row core.Row) (bool, error) {
		return !(len(row) == 1 && strings.TrimSpace(row[0]) == ""), nil
	})
}

// NotEmpty creates a filter that excludes rows where the field is missing or empty
func NotEmpty(field int) core.Filter {
	return core.FilterFunc(func(ctx context.Context, row core.Row) (bool, error) {
		if field < 0 || field >= len(row) {
			return false, nil
		}
		return row[field] != "", nil
	})
}

// MinFields creates a filter that includes rows with at least n fields
func MinFields(n int) core.Filter {
	return core.FilterFunc(func(ctx context.Context, row core.Row) (bool, error) {
		return len(row) >= n, nil
	})
}

// Equals creates a filter that includes rows where the field equals the specified value
func Equals(field int, expectedValue string) core.Filter {
	return core.FilterFunc(func(ctx context.Context, row core.Row) (bool, error) {
		if field < 0 || field >= len(row) {
			return false, nil
		}
		return row[field] == expectedValue, nil
	})
}

// Contains creates a filter that includes rows where the field contains the substring
func Contains(field int, substring string) core.Filter {
	return core.FilterFunc(func(ctx context.Context, row core.Row) (bool, error) {
		if field < 0 || field >= len(row) {
			return false, nil
		}
		return strings.Contains(row[field], substring), nil
	})
}

// StartsWith creates a filter that includes rows where the field starts with the prefix
func StartsWith(field int, prefix string) core.Filter {
	return core.FilterFunc(func(ctx context.Context, row core.Row) (bool, error) {
		if field < 0 || field >= len(row) {
			return false, nil
		}
		return strings.HasPrefix(row[field], prefix), nil
	})
}

// EndsWith creates a filter that includes rows where the field ends with the suffix
func EndsWith(field int, suffix string) core.Filter {
	return core.FilterFunc(func(ctx context.Context, row core.Row) (bool, error) {
		if field < 0 || field >= len(row) {
			return false, nil
		}
		return strings.HasSuffix(row[field], suffix), nil
	})
}

// MatchesRegex creates a filter that includes rows where the field matches the regex pattern.
// It returns an error when the pattern does not compile.
func MatchesRegex(field int, pattern string) (core.Filter, error) {
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return core.FilterFunc(func(ctx context.Context, row core.Row) (bool, error) {
		if field < 0 || field >= len(row) {
			return false, nil
		}
		return regex.MatchString(row[field]), nil
	}), nil
}

// GreaterThan creates a filter that includes rows where the numeric field is greater than the value
func GreaterThan(field int, threshold float64) core.Filter {
	return core.FilterFunc(func(ctx context.Context, row core.Row) (bool, error) {
		num, err := row.Float(field)
		if err != nil {
			return false, nil
		}
		return num > threshold, nil
	})
}

// LessThan creates a filter that includes rows where the numeric field is less than the value
func LessThan(field int, threshold float64) core.Filter {
	return core.FilterFunc(func(ctx context.Context, row core.Row) (bool, error) {
		num, err := row.Float(field)
		if err != nil {
			return false, nil
		}
		return num < threshold, nil
	})
}

// Between creates a filter that includes rows where the numeric field is between min and max (inclusive)
func Between(field int, min, max float64) core.Filter {
	return core.FilterFunc(func(ctx context.Context, row core.Row) (bool, error) {
		num, err := row.Float(field)
		if err != nil {
			return false, nil
		}
		return num >= min && num <= max, nil
	})
}

// In creates a filter that includes rows where the field value is in the provided set
func In(field int, values ...string) core.Filter {
	valueSet := make(map[string]struct{}, len(values))
	for _, v := range values {
		valueSet[v] = struct{}{}
	}

	return core.FilterFunc(func(ctx context.Context, row core.Row) (bool, error) {
		if field < 0 || field >= len(row) {
			return false, nil
		}
		_, ok := valueSet[row[field]]
		return ok, nil
	})
}

// And creates a filter that requires all provided filters to pass
func And(filters ...core.Filter) core.Filter {
	return core.FilterFunc(func(ctx context.Context, row core.Row) (bool, error) {
		for _, filter := range filters {
			include, err := filter.ShouldInclude(ctx, row)
			if err != nil {
				return false, err
			}
			if !include {
				return false, nil
			}
		}
		return true, nil
	})
}

// Or creates a filter that requires at least one of the provided filters to pass
func Or(filters ...core.Filter) core.Filter {
	return core.FilterFunc(func(ctx context.Context, row core.Row) (bool, error) {
		for _, filter := range filters {
			include, err := filter.ShouldInclude(ctx, row)
			if err != nil {
				return false, err
			}
			if include {
				return true, nil
			}
		}
		return false, nil
	})
}

// Not creates a filter that negates the provided filter
func Not(filter core.Filter) core.Filter {
	return core.FilterFunc(func(ctx context.Context, row core.Row) (bool, error) {
		include, err := filter.ShouldInclude(ctx, row)
		if err != nil {
			return false, err
		}
		return !include, nil
	})
}

// Custom creates a filter using a user-provided predicate function
func Custom(predicate func(core.Row) bool) core.Filter {
	return core.FilterFunc(func(ctx context.Context, row core.Row) (bool, error) {
		return predicate(row), nil
	})
}
