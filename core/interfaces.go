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
	"io"
)

// Package core defines the core interfaces for the CSVReport library.
//
// This file contains the Analyzer plugin contract and its embeddable base, the report sink contract,
// and the row filter and transformer adapters.

// Analyzer is the plugin contract implemented by user supplied analysis logic.
// The pipeline never inspects analyzer state; it only calls these methods, strictly sequentially:
// OnFileStart (see FileStarter) before a file is read, OnRow for every line of a file, OnFileEnd
// after the file's last line, then Finalize and Render once after all files have been processed.
type Analyzer interface {
	// OnRow receives one row. Returning an error aborts the whole run.
	OnRow(ctx context.Context, row Row) error
	// OnFileEnd is called once after the last row of each file, including empty files.
	OnFileEnd(ctx context.Context, file InputFile) error
	// Finalize is called exactly once after all files, before Render.
	Finalize(ctx context.Context) error
	// Render writes the report. It must not close w.
	Render(w io.Writer) error
}

// OutputSetter is an optional capability. Analyzers implementing it receive the report
// sink right before Render is invoked.
type OutputSetter interface {
	SetOutput(w io.Writer)
}

// FileStarter is an optional capability. Analyzers implementing it are told when a file is
// about to be read, before its first row. Unlike OnFileEnd it is also called for files that later
// fail mid-read, so per-file state (such as header detection) should be reset here.
type FileStarter interface {
	OnFileStart(ctx context.Context, file InputFile) error
}

// BaseAnalyzer provides no-op OnFileEnd and Finalize hooks and keeps the report sink.
// Embed it so that minimal analyzers only need OnRow and Render.
type BaseAnalyzer struct {
	out io.Writer
}

// OnFileEnd does nothing.
func (b *BaseAnalyzer) OnFileEnd(ctx context.Context, file InputFile) error {
	return nil
}

// Finalize does nothing.
func (b *BaseAnalyzer) Finalize(ctx context.Context) error {
	return nil
}

// SetOutput implements OutputSetter.
func (b *BaseAnalyzer) SetOutput(w io.Writer) {
	b.out = w
}

// Output returns the sink set by SetOutput, or io.Discard before rendering starts.
func (b *BaseAnalyzer) Output() io.Writer {
	if b.out == nil {
		return io.Discard
	}
	return b.out
}

// ReportSink is the destination of the rendered report. The pipeline owns its lifecycle:
// it writes through Render, then calls Flush and Close exactly once.
type ReportSink interface {
	io.Writer
	// Flush ensures buffered report bytes are handed to the underlying destination.
	Flush() error
	// Close commits the report and releases any resources held by the sink.
	Close() error
}

// Aborter is implemented by sinks that can discard a report instead of committing it.
// The pipeline calls Abort instead of Close when the run fails.
type Aborter interface {
	Abort() error
}

// AbortSink discards the report if sink is an Aborter, otherwise it closes sink.
func AbortSink(sink ReportSink) error {
	if aborter, ok := sink.(Aborter); ok {
		return aborter.Abort()
	}
	return sink.Close()
}

// Filter decides whether a row is passed on to an analyzer.
type Filter interface {
	ShouldInclude(ctx context.Context, row Row) (bool, error)
}

// FilterFunc is a function adapter for Filter.
type FilterFunc func(ctx context.Context, row Row) (bool, error)

// ShouldInclude implements the Filter interface for FilterFunc.
func (f FilterFunc) ShouldInclude(ctx context.Context, row Row) (bool, error) {
	return f(ctx, row)
}

// Transformer rewrites a row before it reaches an analyzer.
type Transformer interface {
	Transform(ctx context.Context, row Row) (Row, error)
}

// TransformFunc is a function adapter for Transformer.
type TransformFunc func(ctx context.Context, row Row) (Row, error)

// Transform implements the Transformer interface for TransformFunc.
func (f TransformFunc) Transform(ctx context.Context, row Row) (Row, error) {
	return f(ctx, row)
}
