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
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRow_Accessors tests field access, numeric parsing and cloning.
func TestRow_Accessors(t *testing.T) {
	row := Row{"a", " 2.5 ", "x"}

	assert.Equal(t, 3, row.Len())
	assert.Equal(t, "a", row.Field(0))
	assert.Equal(t, "", row.Field(3))
	assert.Equal(t, "", row.Field(-1))

	v, err := row.Float(1)
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	_, err = row.Float(2)
	assert.Error(t, err)
	_, err = row.Float(5)
	assert.Error(t, err)

	clone := row.Clone()
	clone[0] = "changed"
	assert.Equal(t, "a", row[0])
}

// TestAnalyzerFuncs_NilHooks tests that unset hooks are no-ops.
func TestAnalyzerFuncs_NilHooks(t *testing.T) {
	var a Analyzer = AnalyzerFuncs{}
	ctx := context.Background()

	assert.NoError(t, a.OnRow(ctx, Row{"x"}))
	assert.NoError(t, a.OnFileEnd(ctx, InputFile{Path: "/a", Name: "a"}))
	assert.NoError(t, a.Finalize(ctx))

	var buf bytes.Buffer
	assert.NoError(t, a.Render(&buf))
	assert.Zero(t, buf.Len())
}

// TestBaseAnalyzer tests the embedded defaults and the output sink.
func TestBaseAnalyzer(t *testing.T) {
	var b BaseAnalyzer
	assert.NoError(t, b.OnFileEnd(context.Background(), InputFile{}))
	assert.NoError(t, b.Finalize(context.Background()))
	assert.Equal(t, io.Discard, b.Output())

	var buf bytes.Buffer
	var setter OutputSetter = &b
	setter.SetOutput(&buf)
	assert.Same(t, &buf, b.Output())
}

// TestCallAnalyzer tests error wrapping and panic recovery.
func TestCallAnalyzer(t *testing.T) {
	assert.NoError(t, CallAnalyzer(StageOnRow, "f", 1, func() error { return nil }))

	boom := errors.New("boom")
	err := CallAnalyzer(StageOnRow, "/data/a.csv", 3, func() error { return boom })
	var ae *AnalyzerError
	require.ErrorAs(t, err, &ae)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "analyzer on_row /data/a.csv:3: boom", err.Error())

	err = CallAnalyzer(StageFinalize, "", 0, func() error { panic("bad state") })
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, StageFinalize, ae.Stage)
	assert.Equal(t, "analyzer finalize: panic: bad state", err.Error())

	inner := &AnalyzerError{Stage: StageOnRow, File: "b", Line: 7, Err: boom}
	err = CallAnalyzer(StageOnFileEnd, "a", 0, func() error { return inner })
	assert.Same(t, inner, err)
}

// TestErrorStrategy tests parsing and naming strategies.
func TestErrorStrategy(t *testing.T) {
	for _, s := range []ErrorStrategy{SkipErrors, FailFast, CollectErrors} {
		parsed, err := ParseErrorStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	parsed, err := ParseErrorStrategy("")
	require.NoError(t, err)
	assert.Equal(t, SkipErrors, parsed)

	_, err = ParseErrorStrategy("retry")
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "on_error", cerr.Field)
	assert.Equal(t, "ErrorStrategy(9)", ErrorStrategy(9).String())
}

// TestErrorMessages tests the messages and unwrapping of the error kinds.
func TestErrorMessages(t *testing.T) {
	cause := errors.New("cause")
	file := InputFile{Path: "/data/a.csv", Name: "a.csv"}

	tests := []struct {
		err  error
		want string
	}{
		{&ResolutionError{Pattern: "*.csv", Err: cause}, `resolve "*.csv": cause`},
		{&FileError{Op: "open", File: file, Err: cause}, "file /data/a.csv open: cause"},
		{&FileError{Op: "read", File: file, Line: 4, Err: cause}, "file /data/a.csv read after line 4: cause"},
		{&AnalyzerError{Stage: StageOnFileEnd, File: "/data/a.csv", Err: cause}, "analyzer on_file_end /data/a.csv: cause"},
		{&ConfigurationError{Field: "delimiter", Err: cause}, "configuration delimiter: cause"},
		{&SinkError{Op: "close", Err: cause}, "report sink close: cause"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
		assert.ErrorIs(t, tt.err, cause)
	}
}

// TestErrorHandlerFunc tests the function adapter.
func TestErrorHandlerFunc(t *testing.T) {
	var got InputFile
	h := ErrorHandlerFunc(func(ctx context.Context, file InputFile, err error) error {
		got = file
		return err
	})
	cause := errors.New("cause")
	assert.ErrorIs(t, h.HandleError(context.Background(), InputFile{Name: "a"}, cause), cause)
	assert.Equal(t, "a", got.Name)
}

// TestFilterFunc tests the filter adapter.
func TestFilterFunc(t *testing.T) {
	f := FilterFunc(func(ctx context.Context, row Row) (bool, error) { return row.Len() > 1, nil })
	ok, err := f.ShouldInclude(context.Background(), Row{"a", "b"})
	require.NoError(t, err)
	assert.True(t, ok)
}
