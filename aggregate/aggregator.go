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
	"math"

	"github.com/aaronlmathis/csvreport/core"
)

// Package aggregate provides numeric aggregators over CSV rows.
//
// Aggregators read one column of every row they are given. Fields that do not parse as numbers
// are counted as invalid and otherwise ignored, so a stray header line does not abort a run.

// Aggregator defines the interface for data aggregation operations.
// Aggregators process multiple rows and produce a single summary value.
type Aggregator interface {
	// Add processes a row for aggregation.
	Add(ctx context.Context, row core.Row) error
	// Result returns the aggregated value.
	Result() (float64, error)
	// Reset clears the aggregator state for reuse.
	Reset()
	// Clone returns a fresh aggregator with the same configuration.
	Clone() Aggregator
}

// Kind names an aggregation function.
type Kind string

const (
	KindCount Kind = "count"
	KindSum   Kind = "sum"
	KindAvg   Kind = "avg"
	KindMin   Kind = "min"
	KindMax   Kind = "max"
)

// New creates the aggregator of the given kind reading column field.
func New(kind Kind, field int) (Aggregator, error) {
	switch kind {
	case KindCount:
		return &CountAggregator{}, nil
	case KindSum:
		return &SumAggregator{Field: field}, nil
	case KindAvg:
		return &AvgAggregator{Field: field}, nil
	case KindMin:
		return &MinAggregator{Field: field}, nil
	case KindMax:
		return &MaxAggregator{Field: field}, nil
	default:
		return nil, fmt.Errorf("unknown aggregation %q", kind)
	}
}

// CountAggregator counts the number of rows
type CountAggregator struct {
	count int64
}

func (c *CountAggregator) Add(ctx context.Context, row core.Row) error {
	c.count++
	return nil
}

func (c *CountAggregator) Result() (float64, error) {
	return float64(c.count), nil
}

func (c *CountAggregator) Reset() {
	c.count = 0
}

func (c *CountAggregator) Clone() Aggregator {
	return &CountAggregator{}
}

// SumAggregator sums numeric values
type SumAggregator struct {
	Field   int
	sum     float64
	invalid int64
}

func (s *SumAggregator) Add(ctx context.Context, row core.Row) error {
	if num, err := row.Float(s.Field); err == nil {
		s.sum += num
	} else {
		s.invalid++
	}
	return nil
}

func (s *SumAggregator) Result() (float64, error) {
	return s.sum, nil
}

func (s *SumAggregator) Reset() {
	s.sum = 0
	s.invalid = 0
}

func (s *SumAggregator) Clone() Aggregator {
	return &SumAggregator{Field: s.Field}
}

// Invalid returns the number of rows whose field was not numeric.
func (s *SumAggregator) Invalid() int64 {
	return s.invalid
}

// AvgAggregator calculates average of numeric values
type AvgAggregator struct {
	Field int
	sum   float64
	count int64
}

func (a *AvgAggregator) Add(ctx context.Context, row core.Row) error {
	if num, err := row.Float(a.Field); err == nil {
		a.sum += num
		a.count++
	}
	return nil
}

func (a *AvgAggregator) Result() (float64, error) {
	if a.count == 0 {
		return 0, nil
	}
	return a.sum / float64(a.count), nil
}

func (a *AvgAggregator) Reset() {
	a.sum = 0
	a.count = 0
}

func (a *AvgAggregator) Clone() Aggregator {
	return &AvgAggregator{Field: a.Field}
}

// MinAggregator finds minimum value
type MinAggregator struct {
	Field int
	min   float64
	set   bool
}

func (m *MinAggregator) Add(ctx context.Context, row core.Row) error {
	if num, err := row.Float(m.Field); err == nil {
		if !m.set || num < m.min {
			m.min = num
			m.set = true
		}
	}
	return nil
}

// Result returns NaN when no numeric value was seen.
func (m *MinAggregator) Result() (float64, error) {
	if !m.set {
		return math.NaN(), nil
	}
	return m.min, nil
}

func (m *MinAggregator) Reset() {
	m.min = 0
	m.set = false
}

func (m *MinAggregator) Clone() Aggregator {
	return &MinAggregator{Field: m.Field}
}

// MaxAggregator finds maximum value
type MaxAggregator struct {
	Field int
	max   float64
	set   bool
}

func (m *MaxAggregator) Add(ctx context.Context, row core.Row) error {
	if num, err := row.Float(m.Field); err == nil {
		if !m.set || num > m.max {
			m.max = num
			m.set = true
		}
	}
	return nil
}

// Result returns NaN when no numeric value was seen.
func (m *MaxAggregator) Result() (float64, error) {
	if !m.set {
		return math.NaN(), nil
	}
	return m.max, nil
}

func (m *MaxAggregator) Reset() {
	m.max = 0
	m.set = false
}

func (m *MaxAggregator) Clone() Aggregator {
	return &MaxAggregator{Field: m.Field}
}
