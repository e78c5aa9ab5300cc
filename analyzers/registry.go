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
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aaronlmathis/csvreport/core"
	"github.com/aaronlmathis/csvreport/filter"
	"github.com/aaronlmathis/csvreport/transform"
)

// Factory builds an analyzer from its YAML options. node is nil when no options were given.
type Factory func(node *yaml.Node) (core.Analyzer, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		"sum": func(node *yaml.Node) (core.Analyzer, error) {
			var opts SumOptions
			if err := DecodeOptions(node, &opts); err != nil {
				return nil, err
			}
			return NewSumAnalyzer(opts)
		},
		"count": func(node *yaml.Node) (core.Analyzer, error) {
			if err := DecodeOptions(node, &struct{}{}); err != nil {
				return nil, err
			}
			return NewCountAnalyzer(), nil
		},
		"stats": func(node *yaml.Node) (core.Analyzer, error) {
			var opts StatsOptions
			if err := DecodeOptions(node, &opts); err != nil {
				return nil, err
			}
			return NewStatsAnalyzer(opts)
		},
		"groupby": func(node *yaml.Node) (core.Analyzer, error) {
			var opts GroupByOptions
			if err := DecodeOptions(node, &opts); err != nil {
				return nil, err
			}
			return NewGroupByAnalyzer(opts)
		},
		"parquet": func(node *yaml.Node) (core.Analyzer, error) {
			var opts ParquetOptions
			if err := DecodeOptions(node, &opts); err != nil {
				return nil, err
			}
			return NewParquetAnalyzer(opts)
		},
	}
)

// Register adds or replaces the factory for name.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Names returns the registered analyzer names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New builds the analyzer registered under name.
// Unknown names and invalid options are reported as *core.ConfigurationError.
func New(name string, node *yaml.Node) (core.Analyzer, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, &core.ConfigurationError{
			Field: "analyzer",
			Err:   fmt.Errorf("unknown analyzer %q (available: %v)", name, Names()),
		}
	}

	a, err := factory(node)
	if err != nil {
		return nil, &core.ConfigurationError{Field: "analyzer." + name, Err: err}
	}
	return a, nil
}

// DecodeOptions decodes node into out, rejecting unknown keys.
func DecodeOptions(node *yaml.Node, out any) error {
	if node == nil || node.Kind == 0 {
		return nil
	}
	raw, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// FieldMatch selects rows by the value of one column.
type FieldMatch struct {
	Column int    `yaml:"column"`
	Value  string `yaml:"value"`
}

// FilterOptions configures the Filtered decorator from YAML. Filters run before transforms.
type FilterOptions struct {
	SkipHeader bool        `yaml:"skip_header"`
	SkipBlank  bool        `yaml:"skip_blank"`
	MinFields  int         `yaml:"min_fields"`
	Equals     *FieldMatch `yaml:"equals"`
	Contains   *FieldMatch `yaml:"contains"`
	StartsWith *FieldMatch `yaml:"starts_with"`
	Matches    *FieldMatch `yaml:"matches"` // Value is a regular expression
	Select     []int       `yaml:"select"`  // Columns forwarded, in order, after filtering
	TrimSpace  bool        `yaml:"trim_space"`
	Lowercase  bool        `yaml:"lowercase"`
}

// IsZero reports whether no filtering is configured.
func (o FilterOptions) IsZero() bool {
	return !o.SkipHeader && !o.SkipBlank && o.MinFields == 0 &&
		o.Equals == nil && o.Contains == nil && o.StartsWith == nil && o.Matches == nil &&
		len(o.Select) == 0 && !o.TrimSpace && !o.Lowercase
}

// Wrap decorates a with the filters described by opts. It returns a unchanged when opts is empty.
func Wrap(a core.Analyzer, opts FilterOptions) (core.Analyzer, error) {
	if opts.IsZero() {
		return a, nil
	}

	options := []FilteredOption{WithSkipHeader(opts.SkipHeader)}
	if opts.SkipBlank {
		options = append(options, WithFilter(filter.NotBlank()))
	}
	if opts.MinFields > 0 {
		options = append(options, WithFilter(filter.MinFields(opts.MinFields)))
	}
	if m := opts.Equals; m != nil {
		options = append(options, WithFilter(filter.Equals(m.Column, m.Value)))
	}
	if m := opts.Contains; m != nil {
		options = append(options, WithFilter(filter.Contains(m.Column, m.Value)))
	}
	if m := opts.StartsWith; m != nil {
		options = append(options, WithFilter(filter.StartsWith(m.Column, m.Value)))
	}
	if m := opts.Matches; m != nil {
		f, err := filter.MatchesRegex(m.Column, m.Value)
		if err != nil {
			return nil, &core.ConfigurationError{Field: "analyzer.filter.matches", Err: err}
		}
		options = append(options, WithFilter(f))
	}
	if len(opts.Select) > 0 {
		options = append(options, WithTransform(transform.Select(opts.Select...)))
	}
	if opts.TrimSpace {
		options = append(options, WithTransform(transform.TrimSpace()))
	}
	if opts.Lowercase {
		options = append(options, WithTransform(transform.ToLower()))
	}
	return NewFiltered(a, options...), nil
}
