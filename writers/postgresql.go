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
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// This file implements a report sink that stores the rendered report as one row of a
// PostgreSQL table. The table is created on first use unless disabled.

// PostgresSinkError wraps PostgreSQL-specific sink errors with context about the operation.
type PostgresSinkError struct {
	Op  string // The operation being performed (e.g., "connect", "create_table", "insert")
	Err error  // The underlying error
}

// Error returns the error string for PostgresSinkError.
func (e *PostgresSinkError) Error() string {
	return fmt.Sprintf("postgres sink %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for PostgresSinkError.
func (e *PostgresSinkError) Unwrap() error {
	return e.Err
}

// SQLExecer is the subset of *sql.DB used by the sink.
type SQLExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// PostgresSinkOptions configures the PostgreSQL sink.
type PostgresSinkOptions struct {
	DSN          string        // PostgreSQL connection string
	TableName    string        // Target table name (may be schema qualified)
	ReportName   string        // Value stored in the name column
	CreateTable  bool          // Create table if not exists
	QueryTimeout time.Duration // Timeout for connecting and writing
	DB           SQLExecer     // Pre-opened database; the sink does not close it
}

// PostgresSinkOption represents a configuration function for PostgresSinkOptions.
type PostgresSinkOption func(*PostgresSinkOptions)

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) PostgresSinkOption {
	return func(opts *PostgresSinkOptions) {
		opts.DSN = dsn
	}
}

// WithTableName sets the target table name.
func WithTableName(tableName string) PostgresSinkOption {
	return func(opts *PostgresSinkOptions) {
		opts.TableName = tableName
	}
}

// WithPostgresReportName sets the report name stored with the body.
func WithPostgresReportName(name string) PostgresSinkOption {
	return func(opts *PostgresSinkOptions) {
		opts.ReportName = name
	}
}

// WithCreateTable enables or disables table creation.
func WithCreateTable(create bool) PostgresSinkOption {
	return func(opts *PostgresSinkOptions) {
		opts.CreateTable = create
	}
}

// WithQueryTimeout sets the timeout for database operations.
func WithQueryTimeout(timeout time.Duration) PostgresSinkOption {
	return func(opts *PostgresSinkOptions) {
		opts.QueryTimeout = timeout
	}
}

// WithPostgresDB uses an already opened database instead of the DSN.
func WithPostgresDB(db SQLExecer) PostgresSinkOption {
	return func(opts *PostgresSinkOptions) {
		opts.DB = db
	}
}

// PostgresSink implements core.ReportSink for PostgreSQL.
type PostgresSink struct {
	memoryReport
	options PostgresSinkOptions
	now     func() time.Time
}

// NewPostgresSink creates a new PostgreSQL sink. No connection is made until Close.
func NewPostgresSink(options ...PostgresSinkOption) (*PostgresSink, error) {
	opts := PostgresSinkOptions{
		TableName:    "csv_reports",
		ReportName:   "report",
		CreateTable:  true,
		QueryTimeout: 30 * time.Second,
	}
	for _, option := range options {
		option(&opts)
	}

	if err := validatePostgresOptions(opts); err != nil {
		return nil, &PostgresSinkError{Op: "validate_options", Err: err}
	}
	return &PostgresSink{options: opts, now: time.Now}, nil
}

func validatePostgresOptions(opts PostgresSinkOptions) error {
	if opts.DSN == "" && opts.DB == nil {
		return fmt.Errorf("DSN is required")
	}
	if strings.TrimSpace(opts.TableName) == "" {
		return fmt.Errorf("table name is required")
	}
	if opts.QueryTimeout <= 0 {
		return fmt.Errorf("query timeout must be positive")
	}
	return nil
}

// quotedTable returns the table name with every dot separated part quoted.
func (w *PostgresSink) quotedTable() string {
	parts := strings.Split(w.options.TableName, ".")
	for i, part := range parts {
		parts[i] = pq.QuoteIdentifier(part)
	}
	return strings.Join(parts, ".")
}

// Close stores the buffered report.
func (w *PostgresSink) Close() error {
	body, ok := w.take()
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.options.QueryTimeout)
	defer cancel()

	db := w.options.DB
	if db == nil {
		conn, err := w.connect(ctx)
		if err != nil {
			return &PostgresSinkError{Op: "connect", Err: err}
		}
		defer conn.Close()
		db = conn
	}

	table := w.quotedTable()
	if w.options.CreateTable {
		query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id BIGSERIAL PRIMARY KEY, name TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL, body BYTEA NOT NULL)", table)
		if _, err := db.ExecContext(ctx, query); err != nil {
			return &PostgresSinkError{Op: "create_table", Err: err}
		}
	}

	query := fmt.Sprintf("INSERT INTO %s (name, created_at, body) VALUES ($1, $2, $3)", table)
	if _, err := db.ExecContext(ctx, query, w.options.ReportName, w.now().UTC(), body); err != nil {
		return &PostgresSinkError{Op: "insert", Err: err}
	}
	return nil
}

// connect opens and pings the database.
func (w *PostgresSink) connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("postgres", w.options.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// String returns the destination table.
func (w *PostgresSink) String() string {
	return "postgres table " + w.options.TableName
}
