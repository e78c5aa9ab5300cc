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
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/aaronlmathis/csvreport/aggregate"
	"github.com/aaronlmathis/csvreport/core"
)

// StatsOptions configures StatsAnalyzer.
type StatsOptions struct {
	Columns []int `yaml:"columns"` // Zero-based columns to summarize; empty means every column seen
	Header  bool  `yaml:"header"`  // First line of every file is a header; names come from the first file
}

// ColumnSummary holds the statistics computed for one column by Finalize.
type ColumnSummary struct {
	Column  int
	Name    string
	Numeric int64 // Fields that parsed as numbers
	Invalid int64 // Fields that were present but not numeric
	Sum     float64
	Avg     float64
	Min     float64 // NaN when Numeric is zero
	Max     float64 // NaN when Numeric is zero
}

// Sum must stay first: columnState.invalid reads it.
var statsKinds = []aggregate.Kind{aggregate.KindSum, aggregate.KindAvg, aggregate.KindMin, aggregate.KindMax}

type columnState struct {
	present     int64
	aggregators []aggregate.Aggregator
}

// invalid reads the non-numeric field count kept by the sum aggregator.
func (st *columnState) invalid() int64 {
	return st.aggregators[0].(*aggregate.SumAggregator).Invalid()
}

// StatsAnalyzer computes count, sum, average, minimum and maximum per column.
type StatsAnalyzer struct {
	core.BaseAnalyzer
	opts     StatsOptions
	names    []string
	columns  map[int]*columnState
	firstRow bool
	summary  []ColumnSummary
}

// NewStatsAnalyzer creates a StatsAnalyzer.
func NewStatsAnalyzer(opts StatsOptions) (*StatsAnalyzer, error) {
	for _, c := range opts.Columns {
		if c < 0 {
			return nil, fmt.Errorf("column %d must not be negative", c)
		}
	}
	s := &StatsAnalyzer{opts: opts, columns: make(map[int]*columnState), firstRow: true}
	for _, c := range opts.Columns {
		s.column(c)
	}
	return s, nil
}

func (s *StatsAnalyzer) column(i int) *columnState {
	st, ok := s.columns[i]
	if !ok {
		st = &columnState{aggregators: make([]aggregate.Aggregator, len(statsKinds))}
		for k, kind := range statsKinds {
			st.aggregators[k], _ = aggregate.New(kind, i)
		}
		s.columns[i] = st
	}
	return st
}

// OnRow feeds every tracked column of row.
func (s *StatsAnalyzer) OnRow(ctx context.Context, row core.Row) error {
	if s.firstRow {
		s.firstRow = false
		if s.opts.Header {
			if s.names == nil {
				s.names = row.Clone()
			}
			return nil
		}
	}

	if len(s.opts.Columns) == 0 {
		for i := range row {
			s.column(i)
		}
	}

	for i, st := range s.columns {
		if i >= len(row) {
			continue
		}
		st.present++
		for _, a := range st.aggregators {
			if err := a.Add(ctx, row); err != nil {
				return err
			}
		}
	}
	return nil
}

// OnFileStart resets header detection for the file about to be read.
func (s *StatsAnalyzer) OnFileStart(ctx context.Context, file core.InputFile) error {
	s.firstRow = true
	return nil
}

// Finalize computes the per column summary, ordered by column index.
func (s *StatsAnalyzer) Finalize(ctx context.Context) error {
	indexes := make([]int, 0, len(s.columns))
	for i := range s.columns {
		indexes = append(indexes, i)
	}
	slices.Sort(indexes)

	s.summary = make([]ColumnSummary, 0, len(indexes))
	for _, i := range indexes {
		st := s.columns[i]
		invalid := st.invalid()
		sum := ColumnSummary{Column: i, Name: s.columnName(i), Numeric: st.present - invalid, Invalid: invalid}
		values := make([]float64, len(st.aggregators))
		for k, a := range st.aggregators {
			v, err := a.Result()
			if err != nil {
				return fmt.Errorf("column %d %s: %w", i, statsKinds[k], err)
			}
			values[k] = v
		}
		sum.Sum, sum.Avg, sum.Min, sum.Max = values[0], values[1], values[2], values[3]
		s.summary = append(s.summary, sum)
	}
	return nil
}

func (s *StatsAnalyzer) columnName(i int) string {
	if i < len(s.names) && s.names[i] != "" {
		return s.names[i]
	}
	return "col_" + strconv.Itoa(i)
}

// Summary returns the result of Finalize.
func (s *StatsAnalyzer) Summary() []ColumnSummary {
	return s.summary
}

// Render writes the summary as an aligned table.
func (s *StatsAnalyzer) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "column\tnumeric\tinvalid\tsum\tavg\tmin\tmax")
	for _, c := range s.summary {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
			c.Name, c.Numeric, c.Invalid,
			formatFloat(c.Sum), formatFloat(c.Avg), formatFloat(c.Min), formatFloat(c.Max))
	}
	return tw.Flush()
}
