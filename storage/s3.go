package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/spf13/viper"
)

// Bodies above this size go through the multipart uploader
const multipartLimit = 100 << 20

type S3Store struct {
	C       *s3.Client
	Presign *s3.PresignClient
}

var _ ObjectStore = (*S3Store)(nil)

// NewS3 builds an S3 client from the configuration and verifies that all
// three buckets exist before the server starts taking requests
func NewS3(buckets Buckets) (*S3Store, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("s3.access_key_id"),
			viper.GetString("s3.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if ep := viper.GetString("s3.endpoint"); ep != "" {
			o.BaseEndpoint = aws.String(ep)
		}
		o.Region = viper.GetString("s3.region")
	})

	for _, b := range []string{buckets.Images, buckets.ReelsPrivate, buckets.ReelsPublic} {
		_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
			Bucket: aws.String(b),
		})
		if err != nil {
			var apiErr smithy.APIError

			if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", b)
			}

			return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
		}
	}

	return &S3Store{
		C:       client,
		Presign: s3.NewPresignClient(client),
	}, nil
}

func (s *S3Store) Put(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}

	if size > multipartLimit {
		u := manager.NewUploader(s.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 5 << 20
		})

		if _, err := u.Upload(ctx, in); err != nil {
			return fmt.Errorf("failed to upload object, %w", err)
		}
		return nil
	}

	if _, err := s.C.PutObject(ctx, in); err != nil {
		return fmt.Errorf("failed to upload object, %w", err)
	}
	return nil
}

func (s *S3Store) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	req, err := s.Presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign object, %w", err)
	}

	return req.URL, nil
}

func (s *S3Store) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.C.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "NotFound", "NoSuchKey":
				return false, nil
			}
		}

		return false, fmt.Errorf("failed to check if object exists, %w", err)
	}

	return true, nil
}

func (s *S3Store) Delete(ctx context.Context, bucket string, keys ...string) error {
	for _, key := range keys {
		_, err := s.C.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return fmt.Errorf("failed to delete object %s, %w", key, err)
		}
	}
	return nil
}
