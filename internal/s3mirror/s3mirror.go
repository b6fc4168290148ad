// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package s3mirror implements an optional secondary destination for
// successful snapshot writes: a belt-and-suspenders copy to an
// S3-compatible object store. It never replaces the local --out file as
// the source of truth at startup (spec §4.6 is unchanged); this is purely
// an additional durability surface bolted onto the same C7 snapshot loop.
package s3mirror

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/arthurdw/firefly/internal/config"
	"github.com/arthurdw/firefly/internal/snapshot"
	"github.com/arthurdw/firefly/internal/store"
)

// Target mirrors a snapshot's bytes to a single S3 object, overwriting it
// on every successful local snapshot write (objectKey stays fixed; this
// is a whole-map rewrite, same as the local file, not a history of
// snapshots).
type Target struct {
	client    *s3.Client
	bucket    string
	objectKey string
}

// New constructs a Target from the optional config.S3 block. cfg must not
// be nil; the caller (cmd/fireflyd) only calls New when a config file set
// "s3".
func New(cfg *config.S3, objectKey string) (*Target, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3mirror: empty bucket name")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("s3mirror: load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &Target{client: client, bucket: cfg.Bucket, objectKey: objectKey}, nil
}

// Mirror implements snapshot.Mirror: it re-encodes records as the same
// Avro OCF format the local file uses and PUTs the result to the
// configured bucket/key.
func (t *Target) Mirror(records map[string]store.Record) error {
	var buf bytes.Buffer
	if err := snapshot.Encode(&buf, records); err != nil {
		return fmt.Errorf("s3mirror: encode: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := t.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(t.bucket),
		Key:         aws.String(t.objectKey),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/avro"),
	})
	if err != nil {
		return fmt.Errorf("s3mirror: put object %s/%s: %w", t.bucket, t.objectKey, err)
	}
	return nil
}
