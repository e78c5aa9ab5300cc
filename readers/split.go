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
	"strings"

	"github.com/aaronlmathis/csvreport/core"
)

// SplitLine splits line on every occurrence of delimiter.
//
// The split is literal: fields are not trimmed, quotes are not interpreted and there is no escape
// character, so a field can never contain the delimiter. A line with k delimiters always yields
// k+1 fields, which means an empty line yields a single empty field.
func SplitLine(line string, delimiter rune) core.Row {
	return strings.Split(line, string(delimiter))
}
