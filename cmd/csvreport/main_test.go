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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInputs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("1,2\n3,4\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("5,6\n"), 0644))
	return dir
}

// TestRun_Positional tests the analyzer and input given as positional arguments.
func TestRun_Positional(t *testing.T) {
	dir := writeInputs(t)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"sum", filepath.Join(dir, "*.csv")}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "total=9\n", stdout.String())
	assert.Contains(t, stderr.String(), "processing file=")
}

// TestRun_FlagsAndOutputFile tests flag overrides and writing the report to a file.
func TestRun_FlagsAndOutputFile(t *testing.T) {
	dir := writeInputs(t)
	out := filepath.Join(t.TempDir(), "report.txt")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{
		"-analyzer", "sum", "-options", "{column: 1, label: second}",
		"-input", dir, "-out", out, "-quiet",
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "second=12\n", string(data))
}

// TestRun_ConfigFile tests loading the run from a YAML file.
func TestRun_ConfigFile(t *testing.T) {
	dir := writeInputs(t)
	cfgPath := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("input: "+dir+"\nanalyzer:\n  name: count\n"), 0644))
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-config", cfgPath, "-quiet"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "a.csv\t2\nb.csv\t1\nfiles=2 rows=3\n", stdout.String())
}

// TestRun_Errors tests exit codes for usage and fatal errors.
func TestRun_Errors(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 0, run(context.Background(), []string{"-h"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: csvreport")

	stderr.Reset()
	assert.Equal(t, 2, run(context.Background(), []string{"a", "b", "c"}, &stdout, &stderr))

	stderr.Reset()
	assert.Equal(t, 1, run(context.Background(), []string{"median", t.TempDir()}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "unknown analyzer")

	stderr.Reset()
	missing := filepath.Join(t.TempDir(), "nope", "*.csv")
	assert.Equal(t, 1, run(context.Background(), []string{"-quiet", "sum", missing}, &stdout, &stderr))
	assert.NotEmpty(t, stderr.String())

	stderr.Reset()
	assert.Equal(t, 1, run(context.Background(), []string{"-config", filepath.Join(t.TempDir(), "none.yaml")}, &stdout, &stderr))
	assert.Empty(t, stdout.String())
}
