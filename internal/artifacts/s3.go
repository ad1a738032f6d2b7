// Package artifacts uploads rendered résumé files to S3.
package artifacts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dgallion1/cvgest/internal/config"
)

const uploadTimeout = 2 * time.Minute

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Store writes objects to one bucket.
type S3Store struct {
	uploader uploader
	bucket   string
	region   string
}

// NewS3Store builds a store from cfg. Static credentials are used when both
// keys are set; otherwise the default AWS credential chain applies.
func NewS3Store(ctx context.Context, cfg config.Config) (*S3Store, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("S3_BUCKET not set")
	}
	if cfg.AWSRegion == "" {
		return nil, errors.New("AWS_REGION not set")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKey != "" && cfg.AWSSecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &S3Store{
		uploader: manager.NewUploader(s3.NewFromConfig(awsCfg)),
		bucket:   cfg.S3Bucket,
		region:   cfg.AWSRegion,
	}, nil
}

// Upload stores data under key and returns its public URL.
func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", errors.New("s3 upload: empty key")
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload %s: %w", key, err)
	}
	return s.URL(key), nil
}

// URL is the virtual-hosted address of key.
func (s *S3Store) URL(key string) string {
	u := url.URL{
		Scheme: "https",
		Host:   fmt.Sprintf("%s.s3.%s.amazonaws.com", s.bucket, s.region),
		Path:   "/" + key,
	}
	return u.String()
}

// ResumeKey is where the rendered HTML for a document is stored.
func ResumeKey(userID, docID string) string {
	return fmt.Sprintf("resumes/%s/%s.html", userID, docID)
}
