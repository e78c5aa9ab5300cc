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

package writers

import (
	"bufio"
	"io"
)

// StreamSink writes the report to an existing stream such as os.Stdout.
// The stream is owned by the caller: Close flushes but never closes it.
type StreamSink struct {
	buf *bufio.Writer
}

// NewStreamSink creates a sink writing to w.
func NewStreamSink(w io.Writer) *StreamSink {
	return &StreamSink{buf: bufio.NewWriter(w)}
}

// Write implements io.Writer.
func (s *StreamSink) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

// Flush writes buffered bytes to the stream.
func (s *StreamSink) Flush() error {
	return s.buf.Flush()
}

// Close flushes the sink.
func (s *StreamSink) Close() error {
	return s.buf.Flush()
}
