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
	"errors"
	"fmt"
)

// Package core defines the error handling types for the CSVReport library.
//
// This file contains the error kinds raised by the pipeline, the per-file error strategies,
// and the error handler adapter.

// ResolutionError reports that the input path or pattern could not be turned into a file list.
// It is fatal and raised before any file is opened.
type ResolutionError struct {
	Pattern string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %q: %v", e.Pattern, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// FileError reports that a single input file could not be opened or failed mid-read.
// The pipeline recovers from it according to its ErrorStrategy.
type FileError struct {
	Op   string // "open", "read" or "close"
	File InputFile
	Line int // last line delivered before the failure
	Err  error
}

func (e *FileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("file %s %s after line %d: %v", e.File.Path, e.Op, e.Line, e.Err)
	}
	return fmt.Sprintf("file %s %s: %v", e.File.Path, e.Op, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Analyzer stages reported by AnalyzerError.
const (
	StageOnFileStart = "on_file_start"
	StageOnRow       = "on_row"
	StageOnFileEnd   = "on_file_end"
	StageFinalize    = "finalize"
	StageRender      = "render"
)

// AnalyzerError reports a failure (or panic) raised by the analyzer. It is always fatal.
type AnalyzerError struct {
	Stage string
	File  string // empty for finalize and render
	Line  int    // set for on_row
	Err   error
}

func (e *AnalyzerError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("analyzer %s %s:%d: %v", e.Stage, e.File, e.Line, e.Err)
	case e.File != "":
		return fmt.Sprintf("analyzer %s %s: %v", e.Stage, e.File, e.Err)
	default:
		return fmt.Sprintf("analyzer %s: %v", e.Stage, e.Err)
	}
}

func (e *AnalyzerError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports an invalid or incomplete setup detected before any I/O.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// SinkError reports that the report could not be flushed or committed.
type SinkError struct {
	Op  string
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("report sink %s: %v", e.Op, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// ErrorHandler decides what happens to a file that failed to read.
// Custom error handlers can be used to log, collect, or escalate errors.
type ErrorHandler interface {
	// HandleError processes an error raised while reading file.
	// Returning a non-nil error will stop the pipeline; returning nil will continue.
	HandleError(ctx context.Context, file InputFile, err error) error
}

// ErrorStrategy defines how per-file read errors are handled by the pipeline.
// Analyzer errors are always fatal regardless of the strategy.
type ErrorStrategy int

const (
	// SkipErrors logs the failing file and continues with the next one.
	SkipErrors ErrorStrategy = iota
	// FailFast stops processing on the first file error.
	FailFast
	// CollectErrors continues processing, collecting all file errors for later inspection.
	CollectErrors
)

// String returns the configuration name of the strategy.
func (s ErrorStrategy) String() string {
	switch s {
	case SkipErrors:
		return "skip"
	case FailFast:
		return "fail"
	case CollectErrors:
		return "collect"
	default:
		return fmt.Sprintf("ErrorStrategy(%d)", int(s))
	}
}

// ParseErrorStrategy maps a configuration name to an ErrorStrategy. The empty string selects SkipErrors.
func ParseErrorStrategy(name string) (ErrorStrategy, error) {
	switch name {
	case "", "skip":
		return SkipErrors, nil
	case "fail":
		return FailFast, nil
	case "collect":
		return CollectErrors, nil
	default:
		return SkipErrors, &ConfigurationError{Field: "on_error", Err: fmt.Errorf("unknown strategy %q", name)}
	}
}

// ErrorHandlerFunc is a function adapter for the ErrorHandler interface.
// Allows ordinary functions to be used as error handlers.
type ErrorHandlerFunc func(ctx context.Context, file InputFile, err error) error

// HandleError implements the ErrorHandler interface for ErrorHandlerFunc.
func (f ErrorHandlerFunc) HandleError(ctx context.Context, file InputFile, err error) error {
	return f(ctx, file, err)
}

// CallAnalyzer runs one analyzer hook and converts a returned error or a panic into an
// *AnalyzerError attributed to stage, file and line. Errors that already are analyzer errors
// are returned unchanged.
func CallAnalyzer(stage, file string, line int, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &AnalyzerError{Stage: stage, File: file, Line: line, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if err := fn(); err != nil {
		var ae *AnalyzerError
		if errors.As(err, &ae) {
			return err
		}
		return &AnalyzerError{Stage: stage, File: file, Line: line, Err: err}
	}
	return nil
}
