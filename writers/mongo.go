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

package writers

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// This file implements a report sink that stores the rendered report as a MongoDB document.

// MongoSinkError provides structured error information for MongoDB sink operations
type MongoSinkError struct {
	Op  string // Operation that failed (e.g., "connect", "insert")
	Err error  // Underlying error
}

func (e *MongoSinkError) Error() string {
	return fmt.Sprintf("mongo sink %s: %v", e.Op, e.Err)
}

func (e *MongoSinkError) Unwrap() error {
	return e.Err
}

// MongoInserter is the subset of *mongo.Collection used by the sink.
type MongoInserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// MongoSinkOptions configures the MongoDB sink
type MongoSinkOptions struct {
	URI            string        // MongoDB connection URI
	Database       string        // Database name
	Collection     string        // Collection name
	ReportName     string        // Value stored in the name field
	ConnectTimeout time.Duration // Connection timeout
	Timeout        time.Duration // Overall timeout for connect and insert
	Inserter       MongoInserter // Pre-built collection; skips connecting
}

// MongoSinkOption represents a configuration function for MongoSink
type MongoSinkOption func(*MongoSinkOptions)

func WithMongoURI(uri string) MongoSinkOption {
	return func(opts *MongoSinkOptions) {
		opts.URI = uri
	}
}

func WithMongoDatabase(database string) MongoSinkOption {
	return func(opts *MongoSinkOptions) {
		opts.Database = database
	}
}

func WithMongoCollection(collection string) MongoSinkOption {
	return func(opts *MongoSinkOptions) {
		opts.Collection = collection
	}
}

func WithMongoReportName(name string) MongoSinkOption {
	return func(opts *MongoSinkOptions) {
		opts.ReportName = name
	}
}

func WithMongoTimeout(timeout time.Duration) MongoSinkOption {
	return func(opts *MongoSinkOptions) {
		opts.Timeout = timeout
	}
}

func WithMongoInserter(inserter MongoInserter) MongoSinkOption {
	return func(opts *MongoSinkOptions) {
		opts.Inserter = inserter
	}
}

// MongoSink implements core.ReportSink for MongoDB
type MongoSink struct {
	memoryReport
	opts MongoSinkOptions
	now  func() time.Time
}

// NewMongoSink creates a new MongoDB sink. No connection is made until Close.
func NewMongoSink(options ...MongoSinkOption) (*MongoSink, error) {
	opts := MongoSinkOptions{
		Database:       "csvreport",
		Collection:     "reports",
		ReportName:     "report",
		ConnectTimeout: 10 * time.Second,
		Timeout:        30 * time.Second,
	}
	for _, option := range options {
		option(&opts)
	}

	if opts.Inserter == nil {
		if opts.URI == "" {
			return nil, &MongoSinkError{Op: "validate_options", Err: fmt.Errorf("URI is required")}
		}
		if opts.Database == "" || opts.Collection == "" {
			return nil, &MongoSinkError{Op: "validate_options", Err: fmt.Errorf("database and collection are required")}
		}
	}
	return &MongoSink{opts: opts, now: time.Now}, nil
}

// Close inserts the buffered report as a single document.
func (m *MongoSink) Close() error {
	body, ok := m.take()
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.opts.Timeout)
	defer cancel()

	inserter := m.opts.Inserter
	if inserter == nil {
		clientOpts := options.Client().
			ApplyURI(m.opts.URI).
			SetConnectTimeout(m.opts.ConnectTimeout)
		client, err := mongo.Connect(ctx, clientOpts)
		if err != nil {
			return &MongoSinkError{Op: "connect", Err: err}
		}
		defer client.Disconnect(context.Background())
		inserter = client.Database(m.opts.Database).Collection(m.opts.Collection)
	}

	doc := bson.M{
		"name":       m.opts.ReportName,
		"created_at": m.now().UTC(),
		"size":       len(body),
		"body":       body,
	}
	if _, err := inserter.InsertOne(ctx, doc); err != nil {
		return &MongoSinkError{Op: "insert", Err: err}
	}
	return nil
}

// String returns the destination collection.
func (m *MongoSink) String() string {
	return fmt.Sprintf("mongo collection %s.%s", m.opts.Database, m.opts.Collection)
}
