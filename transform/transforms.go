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

package transform

import (
	"context"
	"fmt"
	"strings"

	"github.com/aaronlmathis/csvreport/core"
)

// Package transform provides reusable, composable row transformation functions.
//
// This package includes column selection, removal and string normalization.
// All functions return core.Transformer implementations. Transformers never modify the input
// row in place; they return a new row.

// Select creates a transformer that keeps only the specified columns, in the given order.
// Columns beyond the end of a row become empty fields.
func Select(columns ...int) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, row core.Row) (core.Row, error) {
		result := make(core.Row, len(columns))
		for i, column := range columns {
			result[i] = row.Field(column)
		}
		return result, nil
	})
}

// RemoveColumns creates a transformer that drops the specified columns.
func RemoveColumns(columns ...int) core.Transformer {
	drop := make(map[int]struct{}, len(columns))
	for _, c := range columns {
		drop[c] = struct{}{}
	}
	return core.TransformFunc(func(ctx context.Context, row core.Row) (core.Row, error) {
		result := make(core.Row, 0, len(row))
		for i, value := range row {
			if _, ok := drop[i]; !ok {
				result = append(result, value)
			}
		}
		return result, nil
	})
}

// TrimSpace creates a transformer that trims whitespace from the specified columns, or from
// every column when none are given.
func TrimSpace(columns ...int) core.Transformer {
	return mapColumns(strings.TrimSpace, columns)
}

// ToUpper creates a transformer that converts the specified columns (all when none given) to uppercase.
func ToUpper(columns ...int) core.Transformer {
	return mapColumns(strings.ToUpper, columns)
}

// ToLower creates a transformer that converts the specified columns (all when none given) to lowercase.
func ToLower(columns ...int) core.Transformer {
	return mapColumns(strings.ToLower, columns)
}

// RequireFields creates a transformer that fails when a row has fewer than n fields.
// Use it to turn malformed lines into analyzer errors instead of silently short rows.
func RequireFields(n int) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, row core.Row) (core.Row, error) {
		if len(row) < n {
			return nil, fmt.Errorf("row has %d fields, want at least %d", len(row), n)
		}
		return row, nil
	})
}

// Chain applies transformers in order.
func Chain(transformers ...core.Transformer) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, row core.Row) (core.Row, error) {
		var err error
		for _, t := range transformers {
			if row, err = t.Transform(ctx, row); err != nil {
				return nil, err
			}
		}
		return row, nil
	})
}

func mapColumns(fn func(string) string, columns []int) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, row core.Row) (core.Row, error) {
		result := row.Clone()
		if len(columns) == 0 {
			for i, value := range result {
				result[i] = fn(value)
			}
			return result, nil
		}
		for _, column := range columns {
			if column >= 0 && column < len(result) {
				result[column] = fn(result[column])
			}
		}
		return result, nil
	})
}
