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

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/aaronlmathis/csvreport"
	"github.com/aaronlmathis/csvreport/analyzers"
	"github.com/aaronlmathis/csvreport/core"
	"github.com/aaronlmathis/csvreport/readers"
)

// Package config loads CSVReport run configurations from YAML files and turns them into pipelines.

// Config represents one report run.
type Config struct {
	Input     string         `yaml:"input"`
	Encoding  string         `yaml:"encoding"`
	Delimiter string         `yaml:"delimiter"`
	OnError   string         `yaml:"on_error"`
	Analyzer  AnalyzerConfig `yaml:"analyzer"`
	Report    ReportConfig   `yaml:"report"`
}

// AnalyzerConfig selects a registered analyzer and its options.
type AnalyzerConfig struct {
	Name    string                  `yaml:"name"`
	Options yaml.Node               `yaml:"options"`
	Filter  analyzers.FilterOptions `yaml:"filter"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Encoding:  "UTF-8",
		Delimiter: ",",
		OnError:   core.SkipErrors.String(),
		Report:    ReportConfig{Type: ReportStdout, Atomic: true},
	}
}

// Load reads the configuration file at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &core.ConfigurationError{Field: "config", Err: err}
	}
	return cfg, nil
}

// Validate checks the configuration without touching the filesystem or network.
func (c *Config) Validate() error {
	if c.Input == "" {
		return &core.ConfigurationError{Field: "input", Err: errors.New("input path or pattern is required")}
	}
	if c.Analyzer.Name == "" {
		return &core.ConfigurationError{Field: "analyzer.name", Err: errors.New("analyzer name is required")}
	}
	if _, err := c.DelimiterRune(); err != nil {
		return err
	}
	if _, err := core.ParseErrorStrategy(c.OnError); err != nil {
		return err
	}
	if _, err := readers.LookupEncoding(c.Encoding); err != nil {
		return &core.ConfigurationError{Field: "encoding", Err: err}
	}
	return c.Report.Validate()
}

// DelimiterRune returns the delimiter as a single character.
func (c *Config) DelimiterRune() (rune, error) {
	d := c.Delimiter
	if d == `\t` {
		d = "\t"
	}
	r, size := utf8.DecodeRuneInString(d)
	if d == "" || size != len(d) || r == utf8.RuneError {
		return 0, &core.ConfigurationError{Field: "delimiter", Err: fmt.Errorf("delimiter %q must be a single character", c.Delimiter)}
	}
	return r, nil
}

// NewAnalyzer builds the configured analyzer, wrapped by its filters.
func (c *Config) NewAnalyzer() (core.Analyzer, error) {
	var options *yaml.Node
	if c.Analyzer.Options.Kind != 0 {
		options = &c.Analyzer.Options
	}
	a, err := analyzers.New(c.Analyzer.Name, options)
	if err != nil {
		return nil, err
	}
	return analyzers.Wrap(a, c.Analyzer.Filter)
}

// Pipeline validates the configuration and builds a ready pipeline.
// stdout receives the report when the report type is stdout.
func (c *Config) Pipeline(stdout io.Writer, logger *log.Logger) (*csvreport.Pipeline, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	strategy, _ := core.ParseErrorStrategy(c.OnError)
	delimiter, _ := c.DelimiterRune()

	analyzer, err := c.NewAnalyzer()
	if err != nil {
		return nil, err
	}

	sink, err := c.Report.NewSink(stdout)
	if err != nil {
		return nil, err
	}

	p, err := csvreport.NewPipeline().
		From(c.Input).
		Analyze(analyzer).
		WithEncodingName(c.Encoding).
		WithDelimiter(delimiter).
		WithErrorStrategy(strategy).
		WithLogger(logger).
		To(sink).
		Build()
	if err != nil {
		_ = core.AbortSink(sink)
		return nil, err
	}
	return p, nil
}
