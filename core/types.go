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

package core

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Package core defines the core types for the CSVReport library.
//
// CSVReport is a streaming, line-oriented CSV ingestion library for Go: every row of every
// matching input file is handed to a user supplied Analyzer, which renders a single report at the end.
//
// This file contains the primary types and function adapters.

// InputFile identifies a filesystem entry selected for processing.
// Values are immutable once produced by the file set resolver.
type InputFile struct {
	// Path is the absolute path of the file.
	Path string
	// Name is the display name (the final path segment).
	Name string
}

// String returns the absolute path of the file.
func (f InputFile) String() string {
	return f.Path
}

// Row is the ordered sequence of fields extracted from one text line.
// The backing slice is only valid for the duration of the OnRow call; analyzers that
// retain a row must copy it (see Clone).
type Row []string

// Len returns the number of fields in the row.
func (r Row) Len() int {
	return len(r)
}

// Field returns the field at index i, or "" when the row is shorter.
func (r Row) Field(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Float parses the field at index i as a float64. Surrounding spaces are ignored.
func (r Row) Float(i int) (float64, error) {
	if i < 0 || i >= len(r) {
		return 0, fmt.Errorf("field %d out of range (row has %d fields)", i, len(r))
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(r[i]), 64)
	if err != nil {
		return 0, fmt.Errorf("field %d: %w", i, err)
	}
	return v, nil
}

// Clone returns a copy of the row that is safe to retain.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// AnalyzerFuncs adapts plain functions to the Analyzer interface.
// Nil hooks behave as no-ops; a nil RenderFunc renders nothing.
type AnalyzerFuncs struct {
	RowFunc      func(ctx context.Context, row Row) error
	FileEndFunc  func(ctx context.Context, file InputFile) error
	FinalizeFunc func(ctx context.Context) error
	RenderFunc   func(w io.Writer) error
}

// OnRow implements the Analyzer interface for AnalyzerFuncs.
func (f AnalyzerFuncs) OnRow(ctx context.Context, row Row) error {
	if f.RowFunc == nil {
		return nil
	}
	return f.RowFunc(ctx, row)
}

// OnFileEnd implements the Analyzer interface for AnalyzerFuncs.
func (f AnalyzerFuncs) OnFileEnd(ctx context.Context, file InputFile) error {
	if f.FileEndFunc == nil {
		return nil
	}
	return f.FileEndFunc(ctx, file)
}

// Finalize implements the Analyzer interface for AnalyzerFuncs.
func (f AnalyzerFuncs) Finalize(ctx context.Context) error {
	if f.FinalizeFunc == nil {
		return nil
	}
	return f.FinalizeFunc(ctx)
}

// Render implements the Analyzer interface for AnalyzerFuncs.
func (f AnalyzerFuncs) Render(w io.Writer) error {
	if f.RenderFunc == nil {
		return nil
	}
	return f.RenderFunc(w)
}
