// Package bucket uploads generated transaction files to an S3-compatible
// object store. MinIO is the default target, so clients use path-style
// addressing against an explicit endpoint.
package bucket

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/carson-networks/hermes/internal/config"
)

// s3API is the subset of the S3 client the uploader needs.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Uploader struct {
	client  s3API
	limiter *rate.Limiter
	logger  *logrus.Logger
}

// NewUploader builds an uploader against endpoint. An empty endpoint uses
// the SDK's default resolution.
func NewUploader(cfg aws.Config, endpoint string, logger *logrus.Logger) *Uploader {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = true
	})
	return &Uploader{client: client, logger: logger}
}

// NewUploaderFromConfig loads static credentials and region from envConfig.
func NewUploaderFromConfig(ctx context.Context, envConfig *config.Config, logger *logrus.Logger) (*Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(envConfig.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(envConfig.S3AccessKey, envConfig.S3SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	u := NewUploader(awsCfg, envConfig.S3Endpoint, logger)
	u.SetRateLimit(envConfig.S3UploadsPerSec)
	return u, nil
}

// SetRateLimit caps uploads at perSec files per second. Zero removes the cap.
func (u *Uploader) SetRateLimit(perSec float64) {
	if perSec <= 0 {
		u.limiter = nil
		return
	}
	u.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
}

// UploadDir uploads every regular file under root to bucket, keyed by its
// slash-separated path relative to root. It stops at the first failure and
// returns the keys uploaded so far.
func (u *Uploader) UploadDir(ctx context.Context, root, bucket string) ([]string, error) {
	var uploaded []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)

		if err := u.UploadFile(ctx, path, bucket, key); err != nil {
			return err
		}
		uploaded = append(uploaded, key)
		return nil
	})
	if err != nil {
		return uploaded, err
	}

	u.logger.WithFields(logrus.Fields{
		"bucket": bucket,
		"files":  len(uploaded),
	}).Info("Bucket.UploadDir.complete")
	return uploaded, nil
}

// UploadFile puts a single local file at key.
func (u *Uploader) UploadFile(ctx context.Context, path, bucket, key string) error {
	if u.limiter != nil {
		if err := u.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if contentType := mime.TypeByExtension(filepath.Ext(path)); contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload %s to s3://%s/%s: %w", path, bucket, key, err)
	}

	u.logger.WithFields(logrus.Fields{
		"bucket": bucket,
		"key":    key,
	}).Debug("Bucket.UploadFile")
	return nil
}
