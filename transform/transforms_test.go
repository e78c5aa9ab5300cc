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

package transform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/csvreport/core"
)

// TestTransformers tests the column transformers against a sample row.
func TestTransformers(t *testing.T) {
	tests := []struct {
		name        string
		transformer core.Transformer
		want        core.Row
	}{
		{"select reorders", Select(2, 0), core.Row{" c ", " a"}},
		{"select past end", Select(5), core.Row{""}},
		{"remove", RemoveColumns(1), core.Row{" a", " c "}},
		{"trim all", TrimSpace(), core.Row{"a", "B", "c"}},
		{"trim one", TrimSpace(2), core.Row{" a", "B", "c"}},
		{"upper", ToUpper(0), core.Row{" A", "B", " c "}},
		{"lower all", ToLower(), core.Row{" a", "b", " c "}},
		{"chain", Chain(Select(0, 2), TrimSpace(), ToUpper()), core.Row{"A", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := core.Row{" a", "B", " c "}
			got, err := tt.transformer.Transform(context.Background(), row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, core.Row{" a", "B", " c "}, row, "input row must not change")
		})
	}
}

// TestRequireFields tests rejecting short rows.
func TestRequireFields(t *testing.T) {
	_, err := RequireFields(2).Transform(context.Background(), core.Row{"a"})
	assert.Error(t, err)

	_, err = Chain(TrimSpace(), RequireFields(3)).Transform(context.Background(), core.Row{"a", "b"})
	assert.Error(t, err)

	row, err := RequireFields(1).Transform(context.Background(), core.Row{"a"})
	require.NoError(t, err)
	assert.Equal(t, core.Row{"a"}, row)
}
