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
	"io"

	"github.com/aaronlmathis/csvreport/core"
)

// FilteredStats reports how many rows a Filtered analyzer passed on or dropped.
type FilteredStats struct {
	Passed  int64
	Dropped int64
	Headers int64
}

// Filtered wraps an analyzer and only forwards rows accepted by its filters, after applying
// its transformers. OnFileStart, OnFileEnd, Finalize and Render are always forwarded.
type Filtered struct {
	inner        core.Analyzer
	filters      []core.Filter
	transformers []core.Transformer
	skipHeader   bool
	atStart      bool
	stats        FilteredStats
}

// FilteredOption configures a Filtered analyzer.
type FilteredOption func(*Filtered)

// WithFilter adds a row filter. Every filter must accept a row for it to be forwarded.
func WithFilter(f core.Filter) FilteredOption {
	return func(a *Filtered) {
		a.filters = append(a.filters, f)
	}
}

// WithTransform adds a transformer applied, in order, to every row accepted by the filters.
func WithTransform(t core.Transformer) FilteredOption {
	return func(a *Filtered) {
		a.transformers = append(a.transformers, t)
	}
}

// WithSkipHeader drops the first line of every file.
func WithSkipHeader(skip bool) FilteredOption {
	return func(a *Filtered) {
		a.skipHeader = skip
	}
}

// NewFiltered creates a Filtered analyzer around inner.
func NewFiltered(inner core.Analyzer, options ...FilteredOption) *Filtered {
	a := &Filtered{inner: inner, atStart: true}
	for _, option := range options {
		option(a)
	}
	return a
}

// Unwrap returns the wrapped analyzer.
func (a *Filtered) Unwrap() core.Analyzer {
	return a.inner
}

// Stats returns the filter counters.
func (a *Filtered) Stats() FilteredStats {
	return a.stats
}

// OnRow drops the header line when configured, applies the filters and then the transformers,
// and forwards the resulting row.
func (a *Filtered) OnRow(ctx context.Context, row core.Row) error {
	if a.atStart {
		a.atStart = false
		if a.skipHeader {
			a.stats.Headers++
			return nil
		}
	}

	for _, f := range a.filters {
		include, err := f.ShouldInclude(ctx, row)
		if err != nil {
			return err
		}
		if !include {
			a.stats.Dropped++
			return nil
		}
	}
	for _, t := range a.transformers {
		var err error
		if row, err = t.Transform(ctx, row); err != nil {
			return err
		}
	}
	a.stats.Passed++
	return a.inner.OnRow(ctx, row)
}

// OnFileStart resets header detection and forwards the call when the wrapped analyzer wants it.
func (a *Filtered) OnFileStart(ctx context.Context, file core.InputFile) error {
	a.atStart = true
	if starter, ok := a.inner.(core.FileStarter); ok {
		return starter.OnFileStart(ctx, file)
	}
	return nil
}

// OnFileEnd forwards the end of a file to the wrapped analyzer.
func (a *Filtered) OnFileEnd(ctx context.Context, file core.InputFile) error {
	return a.inner.OnFileEnd(ctx, file)
}

// Finalize forwards to the wrapped analyzer.
func (a *Filtered) Finalize(ctx context.Context) error {
	return a.inner.Finalize(ctx)
}

// SetOutput forwards the sink when the wrapped analyzer wants it.
func (a *Filtered) SetOutput(w io.Writer) {
	if setter, ok := a.inner.(core.OutputSetter); ok {
		setter.SetOutput(w)
	}
}

// Render forwards to the wrapped analyzer.
func (a *Filtered) Render(w io.Writer) error {
	return a.inner.Render(w)
}
