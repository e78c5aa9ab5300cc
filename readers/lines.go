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

package readers

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/aaronlmathis/csvreport/core"
)

// This file implements the streaming processor: one file is decoded line by line, each line is
// split into a row and handed to the analyzer, followed by a single file boundary notification.

// LineProcessorStats holds statistics about the processor's work across all files.
type LineProcessorStats struct {
	FilesProcessed int64         // Files read to completion
	FilesFailed    int64         // Files abandoned because of an I/O error
	RowsDelivered  int64         // Rows handed to the analyzer
	BytesRead      int64         // Raw (undecoded) bytes read from disk
	ReadDuration   time.Duration // Total time spent in Process
	LastFile       string        // Path of the most recently started file
}

// LineProcessorOptions configures the line processor.
type LineProcessorOptions struct {
	Encoding   encoding.Encoding
	Delimiter  rune
	BufferSize int
}

// LineProcessorOption allows functional customization of LineProcessor.
type LineProcessorOption func(*LineProcessorOptions)

// WithEncoding sets the text encoding input files are decoded from.
func WithEncoding(enc encoding.Encoding) LineProcessorOption {
	return func(o *LineProcessorOptions) { o.Encoding = enc }
}

// WithDelimiter sets the field delimiter.
func WithDelimiter(r rune) LineProcessorOption {
	return func(o *LineProcessorOptions) { o.Delimiter = r }
}

// WithBufferSize sets the read buffer size in bytes.
func WithBufferSize(size int) LineProcessorOption {
	return func(o *LineProcessorOptions) { o.BufferSize = size }
}

// LineProcessor streams files through an analyzer. It keeps no per-file state between calls
// apart from its statistics.
type LineProcessor struct {
	opts  LineProcessorOptions
	stats LineProcessorStats
}

// NewLineProcessor creates a LineProcessor with default or overridden options.
// Defaults: DefaultEncoding, ',' delimiter, 64KB buffer.
func NewLineProcessor(options ...LineProcessorOption) *LineProcessor {
	opts := LineProcessorOptions{
		Encoding:   DefaultEncoding,
		Delimiter:  ',',
		BufferSize: 64 * 1024,
	}
	for _, opt := range options {
		opt(&opts)
	}
	if opts.Encoding == nil {
		opts.Encoding = DefaultEncoding
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 64 * 1024
	}
	return &LineProcessor{opts: opts}
}

// Stats returns processor statistics.
func (p *LineProcessor) Stats() LineProcessorStats {
	return p.stats
}

// Process opens file and streams it through analyzer.
//
// Errors opening or reading the file are returned as *core.FileError; in that case the
// remaining lines are abandoned and OnFileEnd is not called. Errors returned (or panics
// raised) by the analyzer are returned as *core.AnalyzerError.
func (p *LineProcessor) Process(ctx context.Context, file core.InputFile, analyzer core.Analyzer) error {
	p.stats.LastFile = file.Path

	f, err := os.Open(file.Path)
	if err != nil {
		p.stats.FilesFailed++
		return &core.FileError{Op: "open", File: file, Err: err}
	}
	defer f.Close()

	return p.ProcessReader(ctx, file, f, analyzer)
}

// ProcessReader streams r, attributed to file, through analyzer. It does not close r.
func (p *LineProcessor) ProcessReader(ctx context.Context, file core.InputFile, r io.Reader, analyzer core.Analyzer) error {
	start := time.Now()
	defer func() {
		p.stats.ReadDuration += time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	if starter, ok := analyzer.(core.FileStarter); ok {
		if err := core.CallAnalyzer(core.StageOnFileStart, file.Path, 0, func() error {
			return starter.OnFileStart(ctx, file)
		}); err != nil {
			return err
		}
	}

	counted := &countingReader{r: r}
	br := bufio.NewReaderSize(transform.NewReader(counted, p.opts.Encoding.NewDecoder()), p.opts.BufferSize)

	line := 0
	for {
		select {
		case <-ctx.Done():
			p.stats.BytesRead += counted.n
			return ctx.Err()
		default:
		}

		text, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			p.stats.BytesRead += counted.n
			p.stats.FilesFailed++
			return &core.FileError{Op: "read", File: file, Line: line, Err: readErr}
		}

		// A trailing terminator does not start another line.
		if text != "" {
			line++
			row := SplitLine(trimTerminator(text), p.opts.Delimiter)
			if err := core.CallAnalyzer(core.StageOnRow, file.Path, line, func() error {
				return analyzer.OnRow(ctx, row)
			}); err != nil {
				p.stats.BytesRead += counted.n
				return err
			}
			p.stats.RowsDelivered++
		}

		if readErr != nil {
			break
		}
	}

	p.stats.BytesRead += counted.n
	if err := core.CallAnalyzer(core.StageOnFileEnd, file.Path, 0, func() error {
		return analyzer.OnFileEnd(ctx, file)
	}); err != nil {
		return err
	}
	p.stats.FilesProcessed++
	return nil
}

// trimTerminator strips a trailing "\n" or "\r\n".
func trimTerminator(s string) string {
	if !strings.HasSuffix(s, "\n") {
		return s
	}
	s = s[:len(s)-1]
	return strings.TrimSuffix(s, "\r")
}

// countingReader counts raw bytes read from the underlying reader.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
