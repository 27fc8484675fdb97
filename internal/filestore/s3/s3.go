// Package s3 uploads photos to an S3-compatible bucket such as Cloudflare R2.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vbonduro/kitchzone/internal/filestore"
)

type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	PublicURL       string
	HTTPClient      *http.Client
}

type Uploader struct {
	client    *awss3.Client
	bucket    string
	publicURL string
}

// New builds an uploader with static credentials. An empty Endpoint uses the
// default AWS endpoint for Region.
func New(ctx context.Context, cfg Config) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret, "")),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, config.WithHTTPClient(cfg.HTTPClient))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})
	return &Uploader{client: client, bucket: cfg.Bucket, publicURL: cfg.PublicURL}, nil
}

func (u *Uploader) Upload(ctx context.Context, r io.Reader, destPath string, opts filestore.UploadOptions) (filestore.UploadResult, error) {
	if !opts.Overwrite {
		exists, err := u.exists(ctx, destPath)
		if err != nil {
			return filestore.UploadResult{}, err
		}
		if exists {
			return filestore.UploadResult{}, filestore.ErrExists
		}
	}

	// A seekable body lets the SDK sign the payload without chunked encoding.
	data, err := io.ReadAll(r)
	if err != nil {
		return filestore.UploadResult{}, fmt.Errorf("failed to read upload: %w", err)
	}

	input := &awss3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(destPath),
		Body:   bytes.NewReader(data),
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if _, err := u.client.PutObject(ctx, input); err != nil {
		return filestore.UploadResult{}, fmt.Errorf("failed to put object %s: %w", destPath, err)
	}

	return filestore.UploadResult{Path: destPath, PublicURL: filestore.JoinURL(u.publicURL, destPath)}, nil
}

func (u *Uploader) exists(ctx context.Context, key string) (bool, error) {
	_, err := u.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check object %s: %w", key, err)
}
