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

package analyzers

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/aaronlmathis/csvreport/core"
)

// SumOptions configures SumAnalyzer.
type SumOptions struct {
	Column      int    `yaml:"column"`       // Zero-based column to sum
	Label       string `yaml:"label"`        // Report label, default "total"
	SkipInvalid bool   `yaml:"skip_invalid"` // Ignore non-numeric fields instead of failing
}

// SumAnalyzer keeps a running total of one column across all files and renders "label=total".
type SumAnalyzer struct {
	core.BaseAnalyzer
	opts    SumOptions
	total   float64
	rows    int64
	skipped int64
}

// NewSumAnalyzer creates a SumAnalyzer.
func NewSumAnalyzer(opts SumOptions) (*SumAnalyzer, error) {
	if opts.Column < 0 {
		return nil, fmt.Errorf("column must not be negative")
	}
	if opts.Label == "" {
		opts.Label = "total"
	}
	return &SumAnalyzer{opts: opts}, nil
}

// OnRow adds the configured column to the total.
func (s *SumAnalyzer) OnRow(ctx context.Context, row core.Row) error {
	v, err := row.Float(s.opts.Column)
	if err != nil {
		if s.opts.SkipInvalid {
			s.skipped++
			return nil
		}
		return err
	}
	s.total += v
	s.rows++
	return nil
}

// Total returns the running total.
func (s *SumAnalyzer) Total() float64 {
	return s.total
}

// Skipped returns the number of rows ignored because the field was not numeric.
func (s *SumAnalyzer) Skipped() int64 {
	return s.skipped
}

// Render writes "label=total".
func (s *SumAnalyzer) Render(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s=%s\n", s.opts.Label, formatFloat(s.total))
	return err
}

// formatFloat renders v in the shortest exact form; NaN renders as "-".
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
