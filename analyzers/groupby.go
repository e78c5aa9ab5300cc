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
	"strings"

	"github.com/aaronlmathis/csvreport/aggregate"
	"github.com/aaronlmathis/csvreport/core"
)

// GroupByOutput declares one aggregated output of GroupByAnalyzer.
type GroupByOutput struct {
	Name   string         `yaml:"name"`   // Output label, defaults to "<func>_<column>"
	Func   aggregate.Kind `yaml:"func"`   // count, sum, avg, min or max
	Column int            `yaml:"column"` // Zero-based column read by the aggregation
}

// GroupByOptions configures GroupByAnalyzer.
type GroupByOptions struct {
	Keys    []int           `yaml:"keys"`    // Zero-based key columns
	Outputs []GroupByOutput `yaml:"outputs"` // Aggregations per group; default is a row count
}

// GroupByAnalyzer groups rows by key columns and aggregates each group.
type GroupByAnalyzer struct {
	core.BaseAnalyzer
	groups  *aggregate.GroupBy
	results []aggregate.GroupResult
}

// NewGroupByAnalyzer creates a GroupByAnalyzer.
func NewGroupByAnalyzer(opts GroupByOptions) (*GroupByAnalyzer, error) {
	if len(opts.Keys) == 0 {
		return nil, fmt.Errorf("at least one key column is required")
	}
	for _, k := range opts.Keys {
		if k < 0 {
			return nil, fmt.Errorf("key column %d must not be negative", k)
		}
	}
	if len(opts.Outputs) == 0 {
		opts.Outputs = []GroupByOutput{{Name: "count", Func: aggregate.KindCount}}
	}

	g := aggregate.NewGroupBy(opts.Keys...)
	for _, o := range opts.Outputs {
		if o.Column < 0 {
			return nil, fmt.Errorf("output column %d must not be negative", o.Column)
		}
		a, err := aggregate.New(o.Func, o.Column)
		if err != nil {
			return nil, err
		}
		name := o.Name
		if name == "" {
			name = fmt.Sprintf("%s_%d", o.Func, o.Column)
		}
		g.With(name, a)
	}
	return &GroupByAnalyzer{groups: g}, nil
}

// OnRow adds the row to its group.
func (g *GroupByAnalyzer) OnRow(ctx context.Context, row core.Row) error {
	return g.groups.Add(ctx, row)
}

// Finalize computes the ordered group results.
func (g *GroupByAnalyzer) Finalize(ctx context.Context) error {
	results, err := g.groups.Results()
	if err != nil {
		return err
	}
	g.results = results
	return nil
}

// Results returns the result of Finalize.
func (g *GroupByAnalyzer) Results() []aggregate.GroupResult {
	return g.results
}

// Render writes one line per group: "key1|key2 name=value ...".
func (g *GroupByAnalyzer) Render(w io.Writer) error {
	names := g.groups.Outputs()
	for _, r := range g.results {
		var b strings.Builder
		b.WriteString(strings.Join(r.Key, "|"))
		for i, v := range r.Values {
			fmt.Fprintf(&b, " %s=%s", names[i], formatFloat(v))
		}
		b.WriteByte('\n')
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}
