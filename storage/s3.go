// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const defaultExpiry = 15 * time.Minute

// S3Presigner presigns nomination document requests against one bucket
type S3Presigner struct {
	client *s3.PresignClient
	bucket string
	expiry time.Duration
	now    func() time.Time
}

type S3OptionFunc func(*S3Presigner)

func WithExpiry(d time.Duration) S3OptionFunc {
	return func(p *S3Presigner) {
		if d > 0 {
			p.expiry = d
		}
	}
}

// NewS3Presigner loads AWS configuration from the environment (credentials
// chain, AWS_REGION) and presigns against bucket
func NewS3Presigner(ctx context.Context, bucket, region string, opts ...S3OptionFunc) (*S3Presigner, error) {
	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewS3PresignerWithClient(s3.NewFromConfig(awsCfg), bucket, opts...)
}

// NewS3PresignerWithClient wraps an existing S3 client
func NewS3PresignerWithClient(client *s3.Client, bucket string, opts ...S3OptionFunc) (*S3Presigner, error) {
	if bucket == "" {
		return nil, errors.New("s3 presigner: bucket not set")
	}
	p := &S3Presigner{
		client: s3.NewPresignClient(client),
		bucket: bucket,
		expiry: defaultExpiry,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// PresignUpload returns a PUT request bound to the content type and size
func (p *S3Presigner) PresignUpload(ctx context.Context, key, contentType string, size int64) (PresignedRequest, error) {
	issued := p.now()
	req, err := p.client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return PresignedRequest{}, fmt.Errorf("failed to presign upload: %w", err)
	}
	return PresignedRequest{
		URL:       req.URL,
		Method:    req.Method,
		Headers:   flattenHeaders(req.SignedHeader),
		ExpiresAt: issued.Add(p.expiry),
	}, nil
}

// PresignDownload returns a GET request for admin review
func (p *S3Presigner) PresignDownload(ctx context.Context, key string) (PresignedRequest, error) {
	issued := p.now()
	req, err := p.client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return PresignedRequest{}, fmt.Errorf("failed to presign download: %w", err)
	}
	return PresignedRequest{
		URL:       req.URL,
		Method:    req.Method,
		Headers:   flattenHeaders(req.SignedHeader),
		ExpiresAt: issued.Add(p.expiry),
	}, nil
}
