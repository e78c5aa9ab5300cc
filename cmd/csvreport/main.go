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

// Command csvreport runs an analyzer over every row of a set of CSV files and writes its report.
//
// Usage:
//
//	csvreport [flags] [analyzer] [input]
//
// The analyzer and input may be given as positional arguments, as flags, or in a YAML file
// passed with -config. Flags override values from the file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aaronlmathis/csvreport/analyzers"
	"github.com/aaronlmathis/csvreport/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// options holds the command line flags.
type options struct {
	configFile string
	analyzer   string
	analyzerOp string
	input      string
	encoding   string
	delimiter  string
	out        string
	onError    string
	skipHeader bool
	quiet      bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("csvreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configFile, "config", "", "Path to YAML configuration file")
	fs.StringVar(&opts.analyzer, "analyzer", "", "Analyzer name ("+strings.Join(analyzers.Names(), ", ")+")")
	fs.StringVar(&opts.analyzerOp, "options", "", "Analyzer options as inline YAML, e.g. '{column: 1}'")
	fs.StringVar(&opts.input, "input", "", "Input directory, file or wildcard pattern")
	fs.StringVar(&opts.encoding, "encoding", "", "Input text encoding (IANA name, default UTF-8)")
	fs.StringVar(&opts.delimiter, "delimiter", "", "Field delimiter (default ',')")
	fs.StringVar(&opts.out, "out", "", "Write the report to this file instead of stdout")
	fs.StringVar(&opts.onError, "on-error", "", "Unreadable file handling: skip, fail or collect")
	fs.BoolVar(&opts.skipHeader, "skip-header", false, "Ignore the first line of every file")
	fs.BoolVar(&opts.quiet, "quiet", false, "Suppress progress logging")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: csvreport [flags] [analyzer] [input]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	if len(rest) > 2 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(rest[2:], " "))
	}
	if len(rest) > 0 && opts.analyzer == "" {
		opts.analyzer = rest[0]
	}
	if len(rest) > 1 && opts.input == "" {
		opts.input = rest[1]
	}
	return opts, nil
}

// loadConfig merges the configuration file with the command line.
func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configFile != "" {
		var err error
		if cfg, err = config.Load(opts.configFile); err != nil {
			return nil, err
		}
	}

	if opts.analyzer != "" {
		cfg.Analyzer.Name = opts.analyzer
	}
	if opts.analyzerOp != "" {
		var node yaml.Node
		if err := yaml.Unmarshal([]byte(opts.analyzerOp), &node); err != nil {
			return nil, fmt.Errorf("invalid -options: %w", err)
		}
		if len(node.Content) > 0 {
			cfg.Analyzer.Options = *node.Content[0]
		}
	}
	if opts.skipHeader {
		cfg.Analyzer.Filter.SkipHeader = true
	}
	if opts.input != "" {
		cfg.Input = opts.input
	}
	if opts.encoding != "" {
		cfg.Encoding = opts.encoding
	}
	if opts.delimiter != "" {
		cfg.Delimiter = opts.delimiter
	}
	if opts.onError != "" {
		cfg.OnError = opts.onError
	}
	if opts.out != "" {
		cfg.Report.Type = config.ReportFile
		cfg.Report.Path = opts.out
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "csvreport: %v\n", err)
		return 2
	}

	logger := log.New(stderr, "csvreport: ", log.LstdFlags)
	if opts.quiet {
		logger.SetOutput(io.Discard)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "csvreport: %v\n", err)
		return 1
	}

	pipeline, err := cfg.Pipeline(stdout, logger)
	if err != nil {
		fmt.Fprintf(stderr, "csvreport: %v\n", err)
		return 1
	}

	if err := pipeline.Execute(ctx); err != nil {
		fmt.Fprintf(stderr, "csvreport: %v\n", err)
		return 1
	}

	stats := pipeline.Stats()
	logger.Printf("done files=%d failed=%d rows=%d bytes=%d duration=%s",
		stats.FilesProcessed, stats.FilesFailed, stats.RowsDelivered, stats.BytesRead, stats.ReadDuration)
	for _, ferr := range pipeline.Errors() {
		logger.Printf("collected error: %v", ferr)
	}
	return 0
}
