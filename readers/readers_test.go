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
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/csvreport/core"
)

// recordingAnalyzer captures every call made by the processor.
type recordingAnalyzer struct {
	calls   []string
	rows    []core.Row
	failRow int // 1-based row index that returns an error, 0 disables
	panicAt int // 1-based row index that panics, 0 disables
}

func (r *recordingAnalyzer) OnRow(ctx context.Context, row core.Row) error {
	r.rows = append(r.rows, row.Clone())
	r.calls = append(r.calls, "row:"+strings.Join(row, "|"))
	if r.failRow == len(r.rows) {
		return errors.New("bad row")
	}
	if r.panicAt == len(r.rows) {
		panic("boom")
	}
	return nil
}

func (r *recordingAnalyzer) OnFileEnd(ctx context.Context, file core.InputFile) error {
	r.calls = append(r.calls, "end:"+file.Name)
	return nil
}

func (r *recordingAnalyzer) Finalize(ctx context.Context) error { return nil }

func (r *recordingAnalyzer) Render(w io.Writer) error { return nil }

// startingAnalyzer additionally records OnFileStart calls.
type startingAnalyzer struct {
	recordingAnalyzer
	startErr error
}

func (s *startingAnalyzer) OnFileStart(ctx context.Context, file core.InputFile) error {
	s.calls = append(s.calls, "start:"+file.Name)
	return s.startErr
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func names(files []core.InputFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}

// TestResolveFiles_Directory tests that every direct child is returned, sorted
func TestResolveFiles_Directory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta.csv", "alpha.csv", "Mid.txt", "beta.csv"} {
		writeFile(t, dir, name, "x\n")
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeFile(t, filepath.Join(dir, "nested"), "deep.csv", "x\n")

	files, err := ResolveFiles(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"Mid.txt", "alpha.csv", "beta.csv", "nested", "zeta.csv"}, names(files))
	for i, f := range files {
		assert.True(t, filepath.IsAbs(f.Path))
		assert.Equal(t, filepath.Join(dir, f.Name), f.Path)
		if i > 0 {
			assert.Less(t, files[i-1].Path, f.Path, "paths must be strictly increasing")
		}
	}
}

// TestResolveFiles_Pattern tests wildcard matching against the parent directory
func TestResolveFiles_Pattern(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.csv", "a.txt", "c.csv.bak", "d1.csv", "d22.csv"} {
		writeFile(t, dir, name, "")
	}

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{name: "star", pattern: "*.csv", want: []string{"a.csv", "b.csv", "d1.csv", "d22.csv"}},
		{name: "question mark", pattern: "d?.csv", want: []string{"d1.csv"}},
		{name: "prefix", pattern: "a.*", want: []string{"a.csv", "a.txt"}},
		{name: "plain file", pattern: "b.csv", want: []string{"b.csv"}},
		{name: "no match", pattern: "*.json", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := ResolveFiles(filepath.Join(dir, tt.pattern))
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(files))
		})
	}
}

// TestResolveFiles_LiteralSpecialCharacters tests that only '*' and '?' act as wildcards
func TestResolveFiles_LiteralSpecialCharacters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"sales[2024].csv", "sales2.csv", "[.csv", `back\slash.csv`} {
		writeFile(t, dir, name, "")
	}

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{name: "brackets as plain path", pattern: "sales[2024].csv", want: []string{"sales[2024].csv"}},
		{name: "lone bracket as plain path", pattern: "[.csv", want: []string{"[.csv"}},
		{name: "backslash as plain path", pattern: `back\slash.csv`, want: []string{`back\slash.csv`}},
		{name: "star with brackets", pattern: "sales[*].csv", want: []string{"sales[2024].csv"}},
		{name: "no character class", pattern: "sales[0-9].csv", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := ResolveFiles(filepath.Join(dir, tt.pattern))
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(files))
		})
	}
}

// TestMatchWildcard tests the '*' and '?' matcher
func TestMatchWildcard(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"*", "", true},
		{"*", "anything", true},
		{"?", "", false},
		{"?", "é", true},
		{"a*b*c", "aXXbYYc", true},
		{"a*b*c", "aXXbYY", false},
		{"*.csv", "a.csv.bak", false},
		{"*.csv*", "a.csv.bak", true},
		{"d?.csv", "d22.csv", false},
		{"**x", "abx", true},
		{"[a]", "a", false},
		{"[a]", "[a]", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, matchWildcard(tt.pattern, tt.name), "%q vs %q", tt.pattern, tt.name)
	}
}

// TestResolveFiles_RelativePattern tests that a bare pattern is resolved against the working directory
func TestResolveFiles_RelativePattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.csv", "")
	writeFile(t, dir, "two.csv", "")
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	files, err := ResolveFiles("*.csv")
	require.NoError(t, err)
	require.Len(t, files, 2)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "one.csv"), files[0].Path)
	assert.Equal(t, "two.csv", files[1].Name)
}

// TestResolveFiles_Errors tests the resolution error cases
func TestResolveFiles_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
	}{
		{name: "empty path", path: ""},
		{name: "missing parent", path: filepath.Join(dir, "missing", "*.csv")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := ResolveFiles(tt.path)
			assert.Nil(t, files)
			var re *core.ResolutionError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.path, re.Pattern)
		})
	}
}

// TestSplitLine tests field counts and the join round trip
func TestSplitLine(t *testing.T) {
	tests := []struct {
		line      string
		delimiter rune
		want      core.Row
	}{
		{line: "1,2", delimiter: ',', want: core.Row{"1", "2"}},
		{line: "", delimiter: ',', want: core.Row{""}},
		{line: ",", delimiter: ',', want: core.Row{"", ""}},
		{line: " a ; b ;", delimiter: ';', want: core.Row{" a ", " b ", ""}},
		{line: "\"x,y\",z", delimiter: ',', want: core.Row{"\"x", "y\"", "z"}},
		{line: "a\tb\tc", delimiter: '\t', want: core.Row{"a", "b", "c"}},
		{line: "é|ü|ß", delimiter: '|', want: core.Row{"é", "ü", "ß"}},
		{line: "no delimiter here", delimiter: ',', want: core.Row{"no delimiter here"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := SplitLine(tt.line, tt.delimiter)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, strings.Count(tt.line, string(tt.delimiter))+1)
			assert.Equal(t, tt.line, strings.Join(got, string(tt.delimiter)))
		})
	}
}

// TestLookupEncoding tests name resolution for text encodings
func TestLookupEncoding(t *testing.T) {
	enc, err := LookupEncoding("")
	require.NoError(t, err)
	assert.Equal(t, DefaultEncoding, enc)

	for _, name := range []string{"UTF-8", "iso-8859-1", "windows-1252", "UTF-16LE"} {
		enc, err := LookupEncoding(name)
		require.NoError(t, err, name)
		assert.NotNil(t, enc, name)
	}

	_, err = LookupEncoding("no-such-encoding")
	assert.Error(t, err)
}

// TestLineProcessor_Process tests row delivery and the file boundary call
func TestLineProcessor_Process(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{name: "lf", content: "1,2\n3,4\n", want: []string{"row:1|2", "row:3|4", "end:f.csv"}},
		{name: "crlf", content: "1,2\r\n3,4\r\n", want: []string{"row:1|2", "row:3|4", "end:f.csv"}},
		{name: "no final newline", content: "1,2\n3,4", want: []string{"row:1|2", "row:3|4", "end:f.csv"}},
		{name: "blank line", content: "1\n\n2\n", want: []string{"row:1", "row:", "row:2", "end:f.csv"}},
		{name: "empty file", content: "", want: []string{"end:f.csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "f.csv", tt.content)
			analyzer := &recordingAnalyzer{}
			p := NewLineProcessor()

			err := p.Process(context.Background(), core.InputFile{Path: path, Name: "f.csv"}, analyzer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, analyzer.calls)
			assert.Equal(t, int64(1), p.Stats().FilesProcessed)
			assert.Equal(t, int64(len(tt.content)), p.Stats().BytesRead)
		})
	}
}

// TestLineProcessor_Delimiter tests a non-default delimiter
func TestLineProcessor_Delimiter(t *testing.T) {
	analyzer := &recordingAnalyzer{}
	p := NewLineProcessor(WithDelimiter(';'))

	err := p.ProcessReader(context.Background(), core.InputFile{Name: "mem"}, strings.NewReader("a;b,c\n"), analyzer)
	require.NoError(t, err)
	assert.Equal(t, []core.Row{{"a", "b,c"}}, analyzer.rows)
}

// TestLineProcessor_Encoding tests decoding of non UTF-8 input
func TestLineProcessor_Encoding(t *testing.T) {
	enc, err := LookupEncoding("ISO-8859-1")
	require.NoError(t, err)

	analyzer := &recordingAnalyzer{}
	p := NewLineProcessor(WithEncoding(enc), WithDelimiter(';'))

	err = p.ProcessReader(context.Background(), core.InputFile{Name: "latin1"}, strings.NewReader("caf\xe9;na\xefve\n"), analyzer)
	require.NoError(t, err)
	require.Len(t, analyzer.rows, 1)
	assert.Equal(t, core.Row{"café", "naïve"}, analyzer.rows[0])
}

// TestLineProcessor_OpenError tests that a missing file is reported as a file error
func TestLineProcessor_OpenError(t *testing.T) {
	analyzer := &recordingAnalyzer{}
	p := NewLineProcessor()
	file := core.InputFile{Path: filepath.Join(t.TempDir(), "gone.csv"), Name: "gone.csv"}

	err := p.Process(context.Background(), file, analyzer)
	var fe *core.FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "open", fe.Op)
	assert.Equal(t, file, fe.File)
	assert.Empty(t, analyzer.calls)
	assert.Equal(t, int64(1), p.Stats().FilesFailed)
}

// TestLineProcessor_ReadError tests that a mid-stream failure abandons the file without a boundary call
func TestLineProcessor_ReadError(t *testing.T) {
	boom := errors.New("disk on fire")
	r := io.MultiReader(strings.NewReader("1,2\n"), iotest.ErrReader(boom))
	analyzer := &recordingAnalyzer{}
	p := NewLineProcessor()

	err := p.ProcessReader(context.Background(), core.InputFile{Name: "broken"}, r, analyzer)
	var fe *core.FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "read", fe.Op)
	assert.Equal(t, 1, fe.Line)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"row:1|2"}, analyzer.calls)
}

// TestLineProcessor_Directory tests that reading a directory fails as a file error
func TestLineProcessor_Directory(t *testing.T) {
	dir := t.TempDir()
	analyzer := &recordingAnalyzer{}

	err := NewLineProcessor().Process(context.Background(), core.InputFile{Path: dir, Name: "dir"}, analyzer)
	var fe *core.FileError
	require.ErrorAs(t, err, &fe)
	assert.Empty(t, analyzer.calls)
}

// TestLineProcessor_AnalyzerFailures tests that analyzer errors and panics become analyzer errors
func TestLineProcessor_AnalyzerFailures(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		analyzer := &recordingAnalyzer{failRow: 2}
		err := NewLineProcessor().ProcessReader(context.Background(), core.InputFile{Path: "/x.csv"}, strings.NewReader("a\nb\nc\n"), analyzer)

		var ae *core.AnalyzerError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, core.StageOnRow, ae.Stage)
		assert.Equal(t, 2, ae.Line)
		assert.Equal(t, "/x.csv", ae.File)
		assert.Len(t, analyzer.rows, 2)
	})

	t.Run("panic", func(t *testing.T) {
		analyzer := &recordingAnalyzer{panicAt: 1}
		err := NewLineProcessor().ProcessReader(context.Background(), core.InputFile{Path: "/y.csv"}, strings.NewReader("a\nb\n"), analyzer)

		var ae *core.AnalyzerError
		require.ErrorAs(t, err, &ae)
		assert.Contains(t, ae.Error(), "panic: boom")
	})
}

// TestLineProcessor_Cancelled tests that a cancelled context stops processing
func TestLineProcessor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	analyzer := &recordingAnalyzer{}
	err := NewLineProcessor().ProcessReader(ctx, core.InputFile{}, strings.NewReader("a\n"), analyzer)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, analyzer.calls)
}

// TestLineProcessor_FileStart tests that OnFileStart precedes the first row, including for files
// that fail mid-read and never reach OnFileEnd
func TestLineProcessor_FileStart(t *testing.T) {
	p := NewLineProcessor()
	analyzer := &startingAnalyzer{}

	broken := io.MultiReader(strings.NewReader("h\n1\n"), iotest.ErrReader(errors.New("disk on fire")))
	err := p.ProcessReader(context.Background(), core.InputFile{Name: "a.csv"}, broken, analyzer)
	var fe *core.FileError
	require.ErrorAs(t, err, &fe)

	require.NoError(t, p.ProcessReader(context.Background(), core.InputFile{Name: "b.csv"}, strings.NewReader("h\n2\n"), analyzer))
	assert.Equal(t, []string{"start:a.csv", "row:h", "row:1", "start:b.csv", "row:h", "row:2", "end:b.csv"}, analyzer.calls)

	t.Run("start error", func(t *testing.T) {
		analyzer := &startingAnalyzer{startErr: errors.New("not ready")}
		err := NewLineProcessor().ProcessReader(context.Background(), core.InputFile{Path: "/c.csv", Name: "c.csv"}, strings.NewReader("a\n"), analyzer)

		var ae *core.AnalyzerError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, core.StageOnFileStart, ae.Stage)
		assert.Equal(t, "/c.csv", ae.File)
		assert.Equal(t, []string{"start:c.csv"}, analyzer.calls)
	})
}
