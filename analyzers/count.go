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

	"github.com/aaronlmathis/csvreport/core"
)

// FileCount is the number of rows seen in one file.
type FileCount struct {
	File core.InputFile
	Rows int64
}

// CountAnalyzer counts rows per file and in total. It renders through the sink exposed by
// core.BaseAnalyzer rather than the writer passed to Render.
type CountAnalyzer struct {
	core.BaseAnalyzer
	current int64
	files   []FileCount
	total   int64
}

// NewCountAnalyzer creates a CountAnalyzer.
func NewCountAnalyzer() *CountAnalyzer {
	return &CountAnalyzer{}
}

// OnRow counts the row.
func (c *CountAnalyzer) OnRow(ctx context.Context, row core.Row) error {
	c.current++
	return nil
}

// OnFileEnd closes the count of the current file.
func (c *CountAnalyzer) OnFileEnd(ctx context.Context, file core.InputFile) error {
	c.files = append(c.files, FileCount{File: file, Rows: c.current})
	c.total += c.current
	c.current = 0
	return nil
}

// Files returns the per-file counts in processing order.
func (c *CountAnalyzer) Files() []FileCount {
	return c.files
}

// Render writes one line per file followed by the totals.
func (c *CountAnalyzer) Render(io.Writer) error {
	out := c.Output()
	for _, f := range c.files {
		if _, err := fmt.Fprintf(out, "%s\t%d\n", f.File.Name, f.Rows); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "files=%d rows=%d\n", len(c.files), c.total)
	return err
}
