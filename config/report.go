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
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/aaronlmathis/csvreport/core"
	"github.com/aaronlmathis/csvreport/writers"
)

// Report destination types.
const (
	ReportStdout   = "stdout"
	ReportFile     = "file"
	ReportS3       = "s3"
	ReportPostgres = "postgres"
	ReportMongo    = "mongo"
)

// ReportConfig describes where the report is written.
type ReportConfig struct {
	Type     string         `yaml:"type"`
	Path     string         `yaml:"path"`
	Atomic   bool           `yaml:"atomic"`
	S3       S3Config       `yaml:"s3"`
	Postgres PostgresConfig `yaml:"postgres"`
	Mongo    MongoConfig    `yaml:"mongo"`
}

// S3Config configures an S3 report destination.
type S3Config struct {
	Bucket          string            `yaml:"bucket"`
	Key             string            `yaml:"key"`
	Region          string            `yaml:"region"`
	Profile         string            `yaml:"profile"`
	Endpoint        string            `yaml:"endpoint"`
	PathStyle       bool              `yaml:"path_style"`
	AccessKeyID     string            `yaml:"access_key_id"`
	SecretAccessKey string            `yaml:"secret_access_key"`
	ContentType     string            `yaml:"content_type"`
	Metadata        map[string]string `yaml:"metadata"`
}

// PostgresConfig configures a PostgreSQL report destination.
type PostgresConfig struct {
	DSN         string        `yaml:"dsn"`
	Table       string        `yaml:"table"`
	ReportName  string        `yaml:"report_name"`
	CreateTable *bool         `yaml:"create_table"`
	Timeout     time.Duration `yaml:"timeout"`
}

// MongoConfig configures a MongoDB report destination.
type MongoConfig struct {
	URI        string        `yaml:"uri"`
	Database   string        `yaml:"database"`
	Collection string        `yaml:"collection"`
	ReportName string        `yaml:"report_name"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Location creates the report sink for one destination.
type Location interface {
	NewSink() (core.ReportSink, error)
}

// StreamLocation writes the report to an already open stream such as stdout.
type StreamLocation struct {
	W io.Writer
}

// NewSink instantiates a stream sink.
func (l StreamLocation) NewSink() (core.ReportSink, error) {
	if l.W == nil {
		return nil, errors.New("stream location requires a writer")
	}
	return writers.NewStreamSink(l.W), nil
}

// FileLocation writes the report to a local filesystem path.
type FileLocation struct {
	Path   string
	Atomic bool
}

// NewSink instantiates a file sink. The file is not created until the report is written.
func (l FileLocation) NewSink() (core.ReportSink, error) {
	if l.Path == "" {
		return nil, errors.New("file location requires a path")
	}
	return writers.NewFileSink(l.Path, writers.WithAtomic(l.Atomic)), nil
}

// S3Location uploads the report to an S3 bucket.
type S3Location struct {
	S3Config
}

// NewSink instantiates an S3 sink.
func (l S3Location) NewSink() (core.ReportSink, error) {
	opts := []writers.S3SinkOption{
		writers.WithS3Bucket(l.Bucket),
		writers.WithS3Key(l.Key),
		writers.WithS3Region(l.Region),
		writers.WithS3Profile(l.Profile),
		writers.WithS3Endpoint(l.Endpoint),
		writers.WithS3PathStyle(l.PathStyle),
		writers.WithS3Metadata(l.Metadata),
	}
	if l.ContentType != "" {
		opts = append(opts, writers.WithS3ContentType(l.ContentType))
	}
	if l.AccessKeyID != "" {
		opts = append(opts, writers.WithS3Credentials(aws.Credentials{
			AccessKeyID:     l.AccessKeyID,
			SecretAccessKey: l.SecretAccessKey,
		}))
	}
	return writers.NewS3Sink(opts...)
}

// PostgresLocation stores the report in a PostgreSQL table.
type PostgresLocation struct {
	PostgresConfig
}

// NewSink instantiates a PostgreSQL sink.
func (l PostgresLocation) NewSink() (core.ReportSink, error) {
	opts := []writers.PostgresSinkOption{writers.WithPostgresDSN(l.DSN)}
	if l.Table != "" {
		opts = append(opts, writers.WithTableName(l.Table))
	}
	if l.ReportName != "" {
		opts = append(opts, writers.WithPostgresReportName(l.ReportName))
	}
	if l.CreateTable != nil {
		opts = append(opts, writers.WithCreateTable(*l.CreateTable))
	}
	if l.Timeout > 0 {
		opts = append(opts, writers.WithQueryTimeout(l.Timeout))
	}
	return writers.NewPostgresSink(opts...)
}

// MongoLocation stores the report in a MongoDB collection.
type MongoLocation struct {
	MongoConfig
}

// NewSink instantiates a MongoDB sink.
func (l MongoLocation) NewSink() (core.ReportSink, error) {
	opts := []writers.MongoSinkOption{writers.WithMongoURI(l.URI)}
	if l.Database != "" {
		opts = append(opts, writers.WithMongoDatabase(l.Database))
	}
	if l.Collection != "" {
		opts = append(opts, writers.WithMongoCollection(l.Collection))
	}
	if l.ReportName != "" {
		opts = append(opts, writers.WithMongoReportName(l.ReportName))
	}
	if l.Timeout > 0 {
		opts = append(opts, writers.WithMongoTimeout(l.Timeout))
	}
	return writers.NewMongoSink(opts...)
}

// Validate checks the destination fields required by the report type.
func (r ReportConfig) Validate() error {
	var missing string
	switch r.Type {
	case "", ReportStdout:
	case ReportFile:
		if r.Path == "" {
			missing = "path"
		}
	case ReportS3:
		if r.S3.Bucket == "" {
			missing = "s3.bucket"
		} else if r.S3.Key == "" {
			missing = "s3.key"
		}
	case ReportPostgres:
		if r.Postgres.DSN == "" {
			missing = "postgres.dsn"
		}
	case ReportMongo:
		if r.Mongo.URI == "" {
			missing = "mongo.uri"
		}
	default:
		return &core.ConfigurationError{Field: "report.type", Err: fmt.Errorf("unknown report type %q", r.Type)}
	}
	if missing != "" {
		return &core.ConfigurationError{Field: "report." + missing, Err: fmt.Errorf("required for report type %s", r.Type)}
	}
	return nil
}

// Location returns the destination described by the configuration.
func (r ReportConfig) Location(stdout io.Writer) (Location, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	switch r.Type {
	case ReportFile:
		return FileLocation{Path: r.Path, Atomic: r.Atomic}, nil
	case ReportS3:
		return S3Location{r.S3}, nil
	case ReportPostgres:
		return PostgresLocation{r.Postgres}, nil
	case ReportMongo:
		return MongoLocation{r.Mongo}, nil
	default:
		return StreamLocation{W: stdout}, nil
	}
}

// NewSink creates the sink for the configured destination.
func (r ReportConfig) NewSink(stdout io.Writer) (core.ReportSink, error) {
	loc, err := r.Location(stdout)
	if err != nil {
		return nil, err
	}
	sink, err := loc.NewSink()
	if err != nil {
		return nil, &core.ConfigurationError{Field: "report", Err: err}
	}
	return sink, nil
}
