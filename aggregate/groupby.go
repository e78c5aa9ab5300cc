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

package aggregate

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/aaronlmathis/csvreport/core"
)

// GroupBy implements grouping and aggregation operations
type GroupBy struct {
	groupFields []int
	outputs     []output
	groups      map[string]*group
}

type output struct {
	name       string
	aggregator Aggregator
}

type group struct {
	key         []string
	aggregators []Aggregator
}

// GroupResult is the aggregated outcome of one group.
type GroupResult struct {
	Key    []string  // Values of the group fields
	Values []float64 // One value per output, in declaration order
}

// NewGroupBy creates a new GroupBy aggregator keyed on the given columns.
// Without group fields all rows fall into a single group.
func NewGroupBy(groupFields ...int) *GroupBy {
	return &GroupBy{
		groupFields: groupFields,
		groups:      make(map[string]*group),
	}
}

// Count adds a count aggregator for the specified output name
func (g *GroupBy) Count(outputName string) *GroupBy {
	return g.With(outputName, &CountAggregator{})
}

// Sum adds a sum aggregator for the specified field
func (g *GroupBy) Sum(field int, outputName string) *GroupBy {
	return g.With(outputName, &SumAggregator{Field: field})
}

// Avg adds an average aggregator for the specified field
func (g *GroupBy) Avg(field int, outputName string) *GroupBy {
	return g.With(outputName, &AvgAggregator{Field: field})
}

// Min adds a minimum aggregator for the specified field
func (g *GroupBy) Min(field int, outputName string) *GroupBy {
	return g.With(outputName, &MinAggregator{Field: field})
}

// Max adds a maximum aggregator for the specified field
func (g *GroupBy) Max(field int, outputName string) *GroupBy {
	return g.With(outputName, &MaxAggregator{Field: field})
}

// With adds an arbitrary aggregator. It serves as a prototype and is cloned for every group.
func (g *GroupBy) With(outputName string, aggregator Aggregator) *GroupBy {
	g.outputs = append(g.outputs, output{name: outputName, aggregator: aggregator})
	return g
}

// Outputs returns the output names in declaration order.
func (g *GroupBy) Outputs() []string {
	names := make([]string, len(g.outputs))
	for i, o := range g.outputs {
		names[i] = o.name
	}
	return names
}

// GroupFields returns the key columns.
func (g *GroupBy) GroupFields() []int {
	return g.groupFields
}

// Add assigns row to its group and feeds every aggregator of that group.
func (g *GroupBy) Add(ctx context.Context, row core.Row) error {
	key := g.buildGroupKey(row)
	grp, exists := g.groups[key]
	if !exists {
		grp = &group{key: g.keyParts(row), aggregators: make([]Aggregator, len(g.outputs))}
		for i, o := range g.outputs {
			grp.aggregators[i] = o.aggregator.Clone()
		}
		g.groups[key] = grp
	}

	for i, aggregator := range grp.aggregators {
		if err := aggregator.Add(ctx, row); err != nil {
			return fmt.Errorf("aggregation error for output %s: %w", g.outputs[i].name, err)
		}
	}
	return nil
}

// Len returns the number of groups seen so far.
func (g *GroupBy) Len() int {
	return len(g.groups)
}

// Results returns one result per group, ordered by key.
func (g *GroupBy) Results() ([]GroupResult, error) {
	results := make([]GroupResult, 0, len(g.groups))
	for _, grp := range g.groups {
		values := make([]float64, len(grp.aggregators))
		for i, aggregator := range grp.aggregators {
			v, err := aggregator.Result()
			if err != nil {
				return nil, fmt.Errorf("failed to get result for output %s: %w", g.outputs[i].name, err)
			}
			values[i] = v
		}
		results = append(results, GroupResult{Key: grp.key, Values: values})
	}

	slices.SortFunc(results, func(a, b GroupResult) int {
		return slices.Compare(a.Key, b.Key)
	})
	return results, nil
}

// Reset drops all groups.
func (g *GroupBy) Reset() {
	g.groups = make(map[string]*group)
}

func (g *GroupBy) keyParts(row core.Row) []string {
	parts := make([]string, len(g.groupFields))
	for i, field := range g.groupFields {
		parts[i] = row.Field(field)
	}
	return parts
}

// buildGroupKey joins the key fields with a NUL separator.
func (g *GroupBy) buildGroupKey(row core.Row) string {
	return strings.Join(g.keyParts(row), "\x00")
}
