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
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet"
	"github.com/apache/arrow/go/v12/parquet/compress"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"

	"github.com/aaronlmathis/csvreport/core"
)

// This file implements an analyzer that collects every row into Arrow string columns and
// renders them as a Parquet file. Rows shorter than the widest row get null fields.

// ParquetAnalyzerError wraps Parquet-specific errors with context about the operation.
type ParquetAnalyzerError struct {
	Op  string // Operation that failed (e.g., "schema", "write", "close")
	Err error  // Underlying error
}

func (e *ParquetAnalyzerError) Error() string {
	return fmt.Sprintf("parquet analyzer %s: %v", e.Op, e.Err)
}

func (e *ParquetAnalyzerError) Unwrap() error {
	return e.Err
}

// ParquetOptions configures ParquetAnalyzer.
type ParquetOptions struct {
	Header       bool   `yaml:"header"`         // First line of every file is a header; names come from the first file
	Compression  string `yaml:"compression"`    // snappy (default), gzip, zstd, brotli or none
	MaxColumns   int    `yaml:"max_columns"`    // Rows wider than this abort the run
	RowGroupSize int64  `yaml:"row_group_size"` // Maximum rows per row group
}

var parquetCodecs = map[string]compress.Compression{
	"":             compress.Codecs.Snappy,
	"snappy":       compress.Codecs.Snappy,
	"gzip":         compress.Codecs.Gzip,
	"zstd":         compress.Codecs.Zstd,
	"brotli":       compress.Codecs.Brotli,
	"none":         compress.Codecs.Uncompressed,
	"uncompressed": compress.Codecs.Uncompressed,
}

// ParquetAnalyzer converts the input rows to a single Parquet table.
type ParquetAnalyzer struct {
	core.BaseAnalyzer
	opts      ParquetOptions
	codec     compress.Compression
	allocator memory.Allocator
	names     []string
	rows      []core.Row
	width     int
	atStart   bool
	schema    *arrow.Schema
	record    arrow.Record
}

// NewParquetAnalyzer creates a ParquetAnalyzer.
func NewParquetAnalyzer(opts ParquetOptions) (*ParquetAnalyzer, error) {
	codec, ok := parquetCodecs[strings.ToLower(opts.Compression)]
	if !ok {
		return nil, fmt.Errorf("unknown compression %q", opts.Compression)
	}
	if opts.MaxColumns <= 0 {
		opts.MaxColumns = 1024
	}
	if opts.RowGroupSize <= 0 {
		opts.RowGroupSize = 64 * 1024
	}
	return &ParquetAnalyzer{
		opts:      opts,
		codec:     codec,
		allocator: memory.NewGoAllocator(),
		atStart:   true,
	}, nil
}

// OnRow retains a copy of the row.
func (p *ParquetAnalyzer) OnRow(ctx context.Context, row core.Row) error {
	if p.atStart {
		p.atStart = false
		if p.opts.Header {
			if p.names == nil {
				p.names = row.Clone()
			}
			return nil
		}
	}

	if len(row) > p.opts.MaxColumns {
		return &ParquetAnalyzerError{
			Op:  "schema",
			Err: fmt.Errorf("row has %d fields, limit is %d", len(row), p.opts.MaxColumns),
		}
	}
	p.width = max(p.width, len(row))
	p.rows = append(p.rows, row.Clone())
	return nil
}

// OnFileStart resets header detection for the file about to be read.
func (p *ParquetAnalyzer) OnFileStart(ctx context.Context, file core.InputFile) error {
	p.atStart = true
	return nil
}

// Finalize builds the Arrow schema and record from the retained rows.
func (p *ParquetAnalyzer) Finalize(ctx context.Context) error {
	width := max(p.width, len(p.names), 1)
	fields := make([]arrow.Field, width)
	seen := make(map[string]bool, width)
	for i := range fields {
		name := p.columnName(i)
		if seen[name] {
			name = name + "_" + strconv.Itoa(i)
		}
		seen[name] = true
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	p.schema = arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(p.allocator, p.schema)
	defer builder.Release()

	for _, row := range p.rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := 0; i < width; i++ {
			b := builder.Field(i).(*array.StringBuilder)
			if i < len(row) {
				b.Append(row[i])
			} else {
				b.AppendNull()
			}
		}
	}

	if p.record != nil {
		p.record.Release()
	}
	p.record = builder.NewRecord()
	p.rows = nil
	return nil
}

func (p *ParquetAnalyzer) columnName(i int) string {
	if i < len(p.names) && strings.TrimSpace(p.names[i]) != "" {
		return strings.TrimSpace(p.names[i])
	}
	return "col_" + strconv.Itoa(i)
}

// Schema returns the schema built by Finalize.
func (p *ParquetAnalyzer) Schema() *arrow.Schema {
	return p.schema
}

// NumRows returns the number of rows in the finalized record.
func (p *ParquetAnalyzer) NumRows() int64 {
	if p.record == nil {
		return 0
	}
	return p.record.NumRows()
}

// Render writes the record as a Parquet file to w and releases it.
func (p *ParquetAnalyzer) Render(w io.Writer) error {
	if p.record == nil {
		return &ParquetAnalyzerError{Op: "write", Err: fmt.Errorf("render called before finalize")}
	}
	defer func() {
		p.record.Release()
		p.record = nil
	}()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(p.codec),
		parquet.WithMaxRowGroupLength(p.opts.RowGroupSize),
	)

	// The Parquet writer closes its sink; hide Close so the report sink stays owned by the pipeline.
	fw, err := pqarrow.NewFileWriter(p.schema, struct{ io.Writer }{w}, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return &ParquetAnalyzerError{Op: "open", Err: err}
	}
	if err := fw.Write(p.record); err != nil {
		fw.Close()
		return &ParquetAnalyzerError{Op: "write", Err: err}
	}
	if err := fw.Close(); err != nil {
		return &ParquetAnalyzerError{Op: "close", Err: err}
	}
	return nil
}
