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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/aaronlmathis/csvreport/core"
)

// Package readers provides the input side of the CSVReport pipeline.
//
// This file implements file set resolution: turning a directory, file path or wildcard
// pattern into the ordered list of files the pipeline will process.

// ResolveFiles returns the files selected by path, sorted lexicographically by absolute path.
//
// If path names an existing directory, all of its direct children are returned (files and
// subdirectories alike; there is no recursion). Otherwise the final path segment is treated as a
// wildcard pattern (filepath.Match syntax: '*', '?' and character classes) and matched against the
// entries of its parent directory, or of the current working directory when path has no parent
// segment. Only '*' (any run of characters) and '?' (exactly one character) are special; every
// other character, including '[' and '\', matches itself. A plain file path is a pattern that
// matches only itself.
//
// A missing or unreadable search directory yields a *core.ResolutionError.
// A pattern that matches nothing yields an empty list and no error.
func ResolveFiles(path string) ([]core.InputFile, error) {
	if path == "" {
		return nil, &core.ResolutionError{Pattern: path, Err: errors.New("empty path")}
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return listDir(path, path, "*")
	}

	dir, pattern := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	return listDir(path, dir, pattern)
}

// listDir enumerates dir and keeps the entries whose name matches pattern.
func listDir(original, dir, pattern string) ([]core.InputFile, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, &core.ResolutionError{Pattern: original, Err: err}
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, &core.ResolutionError{Pattern: original, Err: fmt.Errorf("read directory %s: %w", absDir, err)}
	}

	files := make([]core.InputFile, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !matchWildcard(pattern, name) {
			continue
		}
		files = append(files, core.InputFile{
			Path: filepath.Join(absDir, name),
			Name: name,
		})
	}

	// Directory enumeration order is not guaranteed; sort for deterministic processing.
	slices.SortFunc(files, func(a, b core.InputFile) int {
		switch {
		case a.Path < b.Path:
			return -1
		case a.Path > b.Path:
			return 1
		default:
			return 0
		}
	})
	return slices.CompactFunc(files, func(a, b core.InputFile) bool { return a.Path == b.Path }), nil
}

// matchWildcard reports whether name matches pattern, where '*' matches any run of characters
// (including none) and '?' matches exactly one character.
func matchWildcard(pattern, name string) bool {
	p, n := []rune(pattern), []rune(name)
	pi, ni := 0, 0
	star, mark := -1, 0
	for ni < len(n) {
		switch {
		case pi < len(p) && (p[pi] == '?' || p[pi] == n[ni]):
			pi++
			ni++
		case pi < len(p) && p[pi] == '*':
			star, mark = pi, ni
			pi++
		case star >= 0:
			// Let the last star absorb one more character.
			mark++
			pi, ni = star+1, mark
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}
