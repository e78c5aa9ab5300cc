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
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// This file implements a report sink that uploads the rendered report to Amazon S3 or an
// S3-compatible service. The report is buffered in memory and uploaded with a single PutObject on Close.

// S3SinkError provides structured error information for S3 sink operations
type S3SinkError struct {
	Op  string // Operation that failed (e.g., "validate_options", "create_aws_config", "put_object")
	Err error  // Underlying error
}

func (e *S3SinkError) Error() string {
	return fmt.Sprintf("s3 sink %s: %v", e.Op, e.Err)
}

func (e *S3SinkError) Unwrap() error {
	return e.Err
}

// S3PutObjectAPI is the subset of the S3 client used by the sink.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3SinkOptions configures the S3 sink
type S3SinkOptions struct {
	Bucket         string            // S3 bucket name
	Key            string            // Object key of the report
	Region         string            // AWS region
	Profile        string            // AWS profile to use
	Credentials    aws.Credentials   // Explicit credentials
	EndpointURL    string            // Custom S3 endpoint (for S3-compatible services)
	ForcePathStyle bool              // Use path-style addressing
	ContentType    string            // Content-Type of the uploaded object
	Metadata       map[string]string // User metadata stored with the object
	Timeout        time.Duration     // Upload timeout
	Client         S3PutObjectAPI    // Pre-built client; skips AWS config loading
}

// S3SinkOption represents a configuration function for S3Sink
type S3SinkOption func(*S3SinkOptions)

func WithS3Bucket(bucket string) S3SinkOption {
	return func(opts *S3SinkOptions) {
		opts.Bucket = bucket
	}
}

func WithS3Key(key string) S3SinkOption {
	return func(opts *S3SinkOptions) {
		opts.Key = key
	}
}

func WithS3Region(region string) S3SinkOption {
	return func(opts *S3SinkOptions) {
		opts.Region = region
	}
}

func WithS3Profile(profile string) S3SinkOption {
	return func(opts *S3SinkOptions) {
		opts.Profile = profile
	}
}

func WithS3Credentials(creds aws.Credentials) S3SinkOption {
	return func(opts *S3SinkOptions) {
		opts.Credentials = creds
	}
}

func WithS3Endpoint(endpoint string) S3SinkOption {
	return func(opts *S3SinkOptions) {
		opts.EndpointURL = endpoint
	}
}

func WithS3PathStyle(pathStyle bool) S3SinkOption {
	return func(opts *S3SinkOptions) {
		opts.ForcePathStyle = pathStyle
	}
}

func WithS3ContentType(contentType string) S3SinkOption {
	return func(opts *S3SinkOptions) {
		opts.ContentType = contentType
	}
}

func WithS3Metadata(metadata map[string]string) S3SinkOption {
	return func(opts *S3SinkOptions) {
		for k, v := range metadata {
			opts.Metadata[k] = v
		}
	}
}

func WithS3Timeout(timeout time.Duration) S3SinkOption {
	return func(opts *S3SinkOptions) {
		opts.Timeout = timeout
	}
}

func WithS3Client(client S3PutObjectAPI) S3SinkOption {
	return func(opts *S3SinkOptions) {
		opts.Client = client
	}
}

// S3Sink implements core.ReportSink for Amazon S3
type S3Sink struct {
	memoryReport
	client S3PutObjectAPI
	opts   S3SinkOptions
}

// NewS3Sink creates a new S3 sink with the specified options
func NewS3Sink(options ...S3SinkOption) (*S3Sink, error) {
	opts := S3SinkOptions{
		ContentType: "text/plain; charset=utf-8",
		Timeout:     time.Minute,
		Metadata:    make(map[string]string),
	}

	for _, option := range options {
		option(&opts)
	}

	if opts.Bucket == "" {
		return nil, &S3SinkError{Op: "validate_options", Err: fmt.Errorf("bucket is required")}
	}
	if opts.Key == "" {
		return nil, &S3SinkError{Op: "validate_options", Err: fmt.Errorf("key is required")}
	}

	client := opts.Client
	if client == nil {
		cfg, err := createAWSConfig(opts)
		if err != nil {
			return nil, &S3SinkError{Op: "create_aws_config", Err: err}
		}
		client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			if opts.EndpointURL != "" {
				o.BaseEndpoint = aws.String(opts.EndpointURL)
			}
			o.UsePathStyle = opts.ForcePathStyle
		})
	}

	return &S3Sink{client: client, opts: opts}, nil
}

// Close uploads the buffered report.
func (s *S3Sink) Close() error {
	body, ok := s.take()
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
	defer cancel()

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.opts.Bucket),
		Key:           aws.String(s.opts.Key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(s.opts.ContentType),
	}
	if len(s.opts.Metadata) > 0 {
		input.Metadata = s.opts.Metadata
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return &S3SinkError{Op: "put_object", Err: fmt.Errorf("s3://%s/%s: %w", s.opts.Bucket, s.opts.Key, err)}
	}
	return nil
}

// createAWSConfig creates AWS configuration from options
func createAWSConfig(opts S3SinkOptions) (aws.Config, error) {
	configOpts := []func(*config.LoadOptions) error{}

	if opts.Region != "" {
		configOpts = append(configOpts, config.WithRegion(opts.Region))
	}

	if opts.Profile != "" {
		configOpts = append(configOpts, config.WithSharedConfigProfile(opts.Profile))
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), configOpts...)
	if err != nil {
		return aws.Config{}, err
	}

	// Override with explicit credentials if provided
	if opts.Credentials.AccessKeyID != "" {
		cfg.Credentials = aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(
				opts.Credentials.AccessKeyID,
				opts.Credentials.SecretAccessKey,
				opts.Credentials.SessionToken,
			),
		)
	}

	return cfg, nil
}

// String returns the destination URL.
func (s *S3Sink) String() string {
	return fmt.Sprintf("s3://%s/%s", s.opts.Bucket, s.opts.Key)
}
