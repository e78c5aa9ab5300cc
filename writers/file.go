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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Package writers provides implementations of core.ReportSink for delivering the rendered report.
//
// This file implements the local file sink. By default the report is written to a temporary file
// in the destination directory and renamed into place on Close, so readers never observe a partially
// rendered report and a failed run leaves any previous report untouched.

// FileSinkError wraps file sink errors with context about the operation.
type FileSinkError struct {
	Op   string // Operation that failed (e.g., "create_temp", "write", "rename")
	Path string
	Err  error
}

// Error returns the error string for FileSinkError.
func (e *FileSinkError) Error() string {
	return fmt.Sprintf("file sink %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for FileSinkError.
func (e *FileSinkError) Unwrap() error {
	return e.Err
}

// FileSinkOptions configures the file sink.
type FileSinkOptions struct {
	Atomic     bool        // Write to a temporary file and rename on Close
	FilePerm   os.FileMode // Permission of the report file
	DirPerm    os.FileMode // Permission of created parent directories
	BufferSize int         // Write buffer size
}

// FileSinkOption represents a configuration function for FileSinkOptions.
type FileSinkOption func(*FileSinkOptions)

// WithAtomic enables or disables the temporary file swap.
func WithAtomic(atomic bool) FileSinkOption {
	return func(opts *FileSinkOptions) {
		opts.Atomic = atomic
	}
}

// WithFilePerm sets the permission of the report file.
func WithFilePerm(perm os.FileMode) FileSinkOption {
	return func(opts *FileSinkOptions) {
		opts.FilePerm = perm
	}
}

// WithBufferSize sets the write buffer size.
func WithBufferSize(size int) FileSinkOption {
	return func(opts *FileSinkOptions) {
		opts.BufferSize = size
	}
}

// FileSink writes the report to a local file.
// The file is created lazily on the first Write, Flush or Close.
type FileSink struct {
	path   string
	opts   FileSinkOptions
	file   *os.File
	buf    *bufio.Writer
	closed bool
}

// NewFileSink creates a sink writing to path.
func NewFileSink(path string, options ...FileSinkOption) *FileSink {
	opts := FileSinkOptions{
		Atomic:     true,
		FilePerm:   0o644,
		DirPerm:    0o755,
		BufferSize: 64 * 1024,
	}
	for _, option := range options {
		option(&opts)
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 64 * 1024
	}
	return &FileSink{path: path, opts: opts}
}

// Path returns the destination path of the report.
func (s *FileSink) Path() string {
	return s.path
}

// Write implements io.Writer.
func (s *FileSink) Write(p []byte) (int, error) {
	if err := s.open(); err != nil {
		return 0, err
	}
	n, err := s.buf.Write(p)
	if err != nil {
		return n, &FileSinkError{Op: "write", Path: s.path, Err: err}
	}
	return n, nil
}

// Flush writes buffered bytes to the file.
func (s *FileSink) Flush() error {
	if err := s.open(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return &FileSinkError{Op: "flush", Path: s.path, Err: err}
	}
	return nil
}

// Close flushes, syncs and closes the file and, in atomic mode, renames it into place.
func (s *FileSink) Close() error {
	if s.closed {
		return nil
	}
	if err := s.open(); err != nil {
		s.closed = true
		return err
	}
	s.closed = true

	tmpPath := s.file.Name()
	fail := func(op string, err error) error {
		_ = s.file.Close()
		if s.opts.Atomic {
			_ = os.Remove(tmpPath)
		}
		return &FileSinkError{Op: op, Path: s.path, Err: err}
	}

	if err := s.buf.Flush(); err != nil {
		return fail("flush", err)
	}
	if err := s.file.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := s.file.Close(); err != nil {
		if s.opts.Atomic {
			_ = os.Remove(tmpPath)
		}
		return &FileSinkError{Op: "close", Path: s.path, Err: err}
	}
	if !s.opts.Atomic {
		return nil
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return &FileSinkError{Op: "rename", Path: s.path, Err: err}
	}
	return nil
}

// Abort discards the report. In atomic mode the destination is left untouched;
// otherwise the partially written file remains.
func (s *FileSink) Abort() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.file == nil {
		return nil
	}
	name := s.file.Name()
	err := s.file.Close()
	if s.opts.Atomic {
		if rerr := os.Remove(name); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			err = errors.Join(err, rerr)
		}
	}
	if err != nil {
		return &FileSinkError{Op: "abort", Path: s.path, Err: err}
	}
	return nil
}

func (s *FileSink) open() error {
	if s.closed {
		return &FileSinkError{Op: "write", Path: s.path, Err: os.ErrClosed}
	}
	if s.file != nil {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, s.opts.DirPerm); err != nil {
		return &FileSinkError{Op: "create_directory", Path: s.path, Err: err}
	}

	var (
		f   *os.File
		err error
	)
	if s.opts.Atomic {
		f, err = os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
		if err == nil {
			_ = os.Chmod(f.Name(), s.opts.FilePerm)
		}
	} else {
		f, err = os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, s.opts.FilePerm)
	}
	if err != nil {
		return &FileSinkError{Op: "open_file", Path: s.path, Err: err}
	}

	s.file = f
	s.buf = bufio.NewWriterSize(f, s.opts.BufferSize)
	return nil
}

var _ io.Writer = (*FileSink)(nil)

// String returns the destination path.
func (s *FileSink) String() string {
	return s.path
}
