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

package csvreport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"unicode/utf8"

	"golang.org/x/text/encoding"

	"github.com/aaronlmathis/csvreport/core"
	"github.com/aaronlmathis/csvreport/readers"
)

// Package csvreport provides a streaming, line-oriented CSV ingestion library for Go.
//
// Core Concepts:
//   - InputFile: A file selected by resolving a directory, path or wildcard pattern.
//   - Row: The fields of one text line, split literally on a single delimiter.
//   - Analyzer: Stateful visitor called once per row, once per file and once at the end.
//   - ReportSink: Destination of the report rendered by the analyzer.
//   - ErrorStrategy: Configurable handling of unreadable files (skip, fail fast, collect).
//
// Example usage:
//
//   pipeline, err := csvreport.NewPipeline().
//       From("data/*.csv").
//       Analyze(myAnalyzer).
//       WithDelimiter(';').
//       To(writers.NewFileSink("report.txt")).
//       Build()
//   if err != nil { log.Fatal(err) }
//   if err := pipeline.Execute(context.Background()); err != nil { log.Fatal(err) }
//
// Files are processed one at a time in sorted order; the report is rendered once, after all input is consumed.

// PipelineBuilder provides a fluent API for constructing report pipelines.
// Use NewPipeline() to create a new builder, then chain From, Analyze, To and configuration methods.
type PipelineBuilder struct {
	pipeline *Pipeline
	err      error
}

// NewPipeline creates a new PipelineBuilder.
//
// Defaults: UTF-8 input, ',' delimiter, SkipErrors strategy, log.Default() logger.
func NewPipeline() *PipelineBuilder {
	return &PipelineBuilder{
		pipeline: &Pipeline{
			encoding:  readers.DefaultEncoding,
			delimiter: ',',
			strategy:  SkipErrors,
			logger:    log.Default(),
		},
	}
}

// From sets the input directory, file path or wildcard pattern.
func (pb *PipelineBuilder) From(pattern string) *PipelineBuilder {
	pb.pipeline.pattern = pattern
	return pb
}

// Analyze sets the analyzer that receives every row.
func (pb *PipelineBuilder) Analyze(analyzer Analyzer) *PipelineBuilder {
	pb.pipeline.analyzer = analyzer
	return pb
}

// To sets the sink the report is rendered into. The pipeline takes ownership of the sink.
func (pb *PipelineBuilder) To(sink ReportSink) *PipelineBuilder {
	pb.pipeline.sink = sink
	return pb
}

// WithEncoding sets the text encoding of the input files. A nil encoding selects the default.
func (pb *PipelineBuilder) WithEncoding(enc encoding.Encoding) *PipelineBuilder {
	if enc == nil {
		enc = readers.DefaultEncoding
	}
	pb.pipeline.encoding = enc
	return pb
}

// WithEncodingName sets the text encoding of the input files by IANA name.
// An unknown name is reported by Build.
func (pb *PipelineBuilder) WithEncodingName(name string) *PipelineBuilder {
	enc, err := readers.LookupEncoding(name)
	if err != nil {
		pb.err = &core.ConfigurationError{Field: "encoding", Err: err}
		return pb
	}
	pb.pipeline.encoding = enc
	return pb
}

// WithDelimiter sets the field delimiter.
func (pb *PipelineBuilder) WithDelimiter(delimiter rune) *PipelineBuilder {
	pb.pipeline.delimiter = delimiter
	return pb
}

// WithErrorStrategy sets how unreadable files are handled.
func (pb *PipelineBuilder) WithErrorStrategy(strategy ErrorStrategy) *PipelineBuilder {
	pb.pipeline.strategy = strategy
	return pb
}

// WithErrorHandler sets a custom handler consulted for every unreadable file.
func (pb *PipelineBuilder) WithErrorHandler(handler ErrorHandler) *PipelineBuilder {
	pb.pipeline.errorHandler = handler
	return pb
}

// WithLogger sets the logger used for progress and skipped-file messages.
func (pb *PipelineBuilder) WithLogger(logger *log.Logger) *PipelineBuilder {
	if logger != nil {
		pb.pipeline.logger = logger
	}
	return pb
}

// Build validates and constructs the Pipeline from the builder.
//
// Returns a *core.ConfigurationError if a required component is missing or invalid.
func (pb *PipelineBuilder) Build() (*Pipeline, error) {
	if pb.err != nil {
		return nil, pb.err
	}
	p := pb.pipeline
	if p.pattern == "" {
		return nil, &core.ConfigurationError{Field: "input", Err: errors.New("pipeline requires an input path or pattern")}
	}
	if p.analyzer == nil {
		return nil, &core.ConfigurationError{Field: "analyzer", Err: errors.New("pipeline requires an analyzer")}
	}
	if p.sink == nil {
		return nil, &core.ConfigurationError{Field: "report", Err: errors.New("pipeline requires a report sink")}
	}
	if err := validateDelimiter(p.delimiter); err != nil {
		return nil, &core.ConfigurationError{Field: "delimiter", Err: err}
	}
	p.processor = readers.NewLineProcessor(
		readers.WithEncoding(p.encoding),
		readers.WithDelimiter(p.delimiter),
	)
	return p, nil
}

func validateDelimiter(r rune) error {
	switch {
	case r == 0:
		return errors.New("delimiter must be set")
	case r == '\n' || r == '\r':
		return fmt.Errorf("delimiter %q is a line terminator", r)
	case r == utf8.RuneError || !utf8.ValidRune(r):
		return errors.New("delimiter is not a valid character")
	}
	return nil
}

// Pipeline resolves the input files, streams every row through the analyzer and renders
// the report into the sink once all input has been consumed.
type Pipeline struct {
	pattern      string
	analyzer     Analyzer
	sink         ReportSink
	encoding     encoding.Encoding
	delimiter    rune
	strategy     ErrorStrategy
	errorHandler ErrorHandler
	logger       *log.Logger
	processor    *readers.LineProcessor
	fileErrors   []error
}

// Execute runs the pipeline.
//
// The input is resolved once; files are processed in order. An unreadable file is handled by the
// configured ErrorStrategy and ErrorHandler. Any other failure is fatal: resolution errors,
// analyzer errors (including panics), context cancellation and sink errors. After all files the
// analyzer is finalized, rendered into the sink, and the sink is flushed and closed.
//
// The sink is released on every exit path. On failure it is aborted when it implements
// core.Aborter, otherwise closed; content written by a failed render is then undefined.
func (p *Pipeline) Execute(ctx context.Context) error {
	released := false
	defer func() {
		if released {
			return
		}
		if err := core.AbortSink(p.sink); err != nil {
			p.logger.Printf("releasing report sink: %v", err)
		}
	}()

	p.fileErrors = nil

	files, err := readers.ResolveFiles(p.pattern)
	if err != nil {
		return err
	}
	p.logger.Printf("resolved %d file(s) from %s", len(files), p.pattern)

	for _, file := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p.logger.Printf("processing file=%s", file.Path)
		if err := p.processor.Process(ctx, file, p.analyzer); err != nil {
			var fe *core.FileError
			if !errors.As(err, &fe) {
				return err
			}
			if err := p.handleError(ctx, file, fe); err != nil {
				return err
			}
		}
	}

	if err := core.CallAnalyzer(core.StageFinalize, "", 0, func() error {
		return p.analyzer.Finalize(ctx)
	}); err != nil {
		return err
	}

	if dest, ok := p.sink.(fmt.Stringer); ok {
		p.logger.Printf("writing report to %s", dest)
	} else {
		p.logger.Printf("writing report")
	}
	if setter, ok := p.analyzer.(core.OutputSetter); ok {
		setter.SetOutput(p.sink)
	}
	if err := core.CallAnalyzer(core.StageRender, "", 0, func() error {
		return p.analyzer.Render(p.sink)
	}); err != nil {
		return err
	}

	if err := p.sink.Flush(); err != nil {
		return &core.SinkError{Op: "flush", Err: err}
	}
	released = true
	if err := p.sink.Close(); err != nil {
		return &core.SinkError{Op: "close", Err: err}
	}
	return nil
}

// Errors returns the file errors collected by the last Execute under CollectErrors.
func (p *Pipeline) Errors() []error {
	return p.fileErrors
}

// Stats returns the line processor statistics accumulated by Execute.
func (p *Pipeline) Stats() readers.LineProcessorStats {
	return p.processor.Stats()
}

// handleError handles an unreadable file according to the pipeline's error strategy and handler.
//
// Returns an error if processing should stop, or nil to continue with the next file.
func (p *Pipeline) handleError(ctx context.Context, file InputFile, err error) error {
	switch p.strategy {
	case FailFast:
		return err
	case CollectErrors:
		p.fileErrors = append(p.fileErrors, err)
	}
	p.logger.Printf("skipping file=%s err=%v", file.Path, err)
	if p.errorHandler != nil {
		return p.errorHandler.HandleError(ctx, file, err)
	}
	return nil
}

// Run builds and executes a pipeline in one call. The sink is released even when the
// configuration is rejected.
func Run(ctx context.Context, pattern string, analyzer Analyzer, enc encoding.Encoding, delimiter rune, sink ReportSink) error {
	p, err := NewPipeline().
		From(pattern).
		Analyze(analyzer).
		WithEncoding(enc).
		WithDelimiter(delimiter).
		To(sink).
		Build()
	if err != nil {
		if sink != nil {
			_ = core.AbortSink(sink)
		}
		return err
	}
	return p.Execute(ctx)
}
