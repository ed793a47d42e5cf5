package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Backend stores each document as one JSON object in an S3-compatible
// bucket under site-data/<name>.json.
type S3Backend struct {
	client *s3.S3
	bucket string
}

type S3Config struct {
	// S3 compatible storage endpoint
	Endpoint string
	// S3 compatible storage region
	Region string
	// S3 compatible storage access key
	AccessKey string
	// S3 compatible storage secret key
	SecretKey string
	// S3 compatible storage bucket
	Bucket string
}

// NewS3Backend creates a new S3Backend instance.
func NewS3Backend(config S3Config) (*S3Backend, error) {
	sess, err := session.NewSession(&aws.Config{
		Endpoint:         aws.String(config.Endpoint),
		Region:           aws.String(config.Region),
		Credentials:      credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}

	return &S3Backend{
		client: s3.New(sess),
		bucket: config.Bucket,
	}, nil
}

func (s *S3Backend) Read(ctx context.Context, name string) ([]byte, error) {
	key := objectKey(name)
	obj, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) {
			switch aerr.Code() {
			case s3.ErrCodeNoSuchKey, "NotFound":
				return nil, ErrNotFound
			}
		}
		return nil, fmt.Errorf("failed to retrieve object %s from bucket %s: %w", key, s.bucket, err)
	}
	defer obj.Body.Close()

	value, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read contents of object %s from bucket %s: %w", key, s.bucket, err)
	}
	return value, nil
}

func (s *S3Backend) Write(ctx context.Context, name string, data []byte) error {
	key := objectKey(name)
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", key, s.bucket, err)
	}
	return nil
}

// objectKey maps a document name to its fixed remote path.
func objectKey(name string) string {
	return "site-data/" + name + ".json"
}
