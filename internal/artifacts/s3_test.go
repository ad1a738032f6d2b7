package artifacts

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/cvgest/internal/config"
)

type fakeUploader struct {
	bucket, key, contentType string
	body                     []byte
	err                      error
}

func (f *fakeUploader) Upload(ctx context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	f.contentType = aws.ToString(in.ContentType)
	f.body, _ = io.ReadAll(in.Body)
	return &manager.UploadOutput{}, nil
}

func TestS3Store_Upload(t *testing.T) {
	up := &fakeUploader{}
	s := &S3Store{uploader: up, bucket: "cv-bucket", region: "eu-west-3"}

	url, err := s.Upload(context.Background(), "/resumes/u1/doc1.html", []byte("<html>"), "text/html; charset=utf-8")
	require.NoError(t, err)

	assert.Equal(t, "https://cv-bucket.s3.eu-west-3.amazonaws.com/resumes/u1/doc1.html", url)
	assert.Equal(t, "cv-bucket", up.bucket)
	assert.Equal(t, "resumes/u1/doc1.html", up.key)
	assert.Equal(t, "text/html; charset=utf-8", up.contentType)
	assert.Equal(t, "<html>", string(up.body))
}

func TestS3Store_UploadErrors(t *testing.T) {
	s := &S3Store{uploader: &fakeUploader{err: errors.New("denied")}, bucket: "b", region: "r"}

	_, err := s.Upload(context.Background(), "k", nil, "text/plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")

	_, err = s.Upload(context.Background(), "/", nil, "text/plain")
	assert.Error(t, err)
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), config.Config{AWSRegion: "us-east-2"})
	assert.Error(t, err)

	_, err = NewS3Store(context.Background(), config.Config{S3Bucket: "b"})
	assert.Error(t, err)
}

func TestResumeKey(t *testing.T) {
	assert.Equal(t, "resumes/u1/doc1.html", ResumeKey("u1", "doc1"))
}
