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
	"github.com/aaronlmathis/csvreport/core"
)

// Package csvreport defines the core interfaces and types for the CSVReport library.
//
// CSVReport is a streaming, line-oriented CSV ingestion library for Go. The types below alias the
// definitions in package core so that callers building a pipeline need a single import.

// Row is the ordered sequence of fields extracted from one text line.
type Row = core.Row

// InputFile identifies a file selected for processing.
type InputFile = core.InputFile

// Analyzer is the plugin contract implemented by analysis logic.
type Analyzer = core.Analyzer

// BaseAnalyzer provides no-op OnFileEnd and Finalize hooks; embed it in minimal analyzers.
type BaseAnalyzer = core.BaseAnalyzer

// AnalyzerFuncs adapts plain functions to the Analyzer interface.
type AnalyzerFuncs = core.AnalyzerFuncs

// ReportSink is the destination of the rendered report.
type ReportSink = core.ReportSink

// ErrorStrategy defines how per-file read errors are handled.
type ErrorStrategy = core.ErrorStrategy

const (
	// SkipErrors logs the failing file and continues with the next one.
	SkipErrors = core.SkipErrors
	// FailFast stops processing on the first file error.
	FailFast = core.FailFast
	// CollectErrors continues processing, collecting all file errors for later inspection.
	CollectErrors = core.CollectErrors
)

// ErrorHandler decides what happens to a file that failed to read.
type ErrorHandler = core.ErrorHandler

// ErrorHandlerFunc is a function adapter for the ErrorHandler interface.
type ErrorHandlerFunc = core.ErrorHandlerFunc
