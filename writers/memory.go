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
	"bytes"
	"os"
)

// memoryReport buffers the whole report in memory for sinks that ship it in one request on Close.
type memoryReport struct {
	buf    bytes.Buffer
	closed bool
}

func (m *memoryReport) Write(p []byte) (int, error) {
	if m.closed {
		return 0, os.ErrClosed
	}
	return m.buf.Write(p)
}

// Flush is a no-op: nothing leaves the process before Close.
func (m *memoryReport) Flush() error {
	return nil
}

// Abort discards the buffered report.
func (m *memoryReport) Abort() error {
	m.closed = true
	m.buf.Reset()
	return nil
}

// Len returns the number of buffered report bytes.
func (m *memoryReport) Len() int {
	return m.buf.Len()
}

// take marks the report closed and returns its bytes. The second result is false if the
// report was already closed or aborted.
func (m *memoryReport) take() ([]byte, bool) {
	if m.closed {
		return nil, false
	}
	m.closed = true
	if m.buf.Len() == 0 {
		return []byte{}, true
	}
	return m.buf.Bytes(), true
}
