package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"chirp/internal/pkg/logx"
)

// s3Client implements ObjectStore against S3-compatible storage.
type s3Client struct {
	cfg      ServiceConfig
	s3Client *s3.Client
	uploader *manager.Uploader
}

// newS3Client initializes the S3 client with a custom endpoint, path-style
// addressing, and static credentials.
func newS3Client(cfg ServiceConfig) (*s3Client, error) {
	sdkCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		logx.Error(err, "Failed to load AWS SDK config")
		return nil, errors.New("failed to initialize S3 client configuration")
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &s3Client{
		cfg:      cfg,
		s3Client: client,
		uploader: manager.NewUploader(client),
	}, nil
}

// UploadDataURL validates the data URL and uploads its bytes under a fresh
// key below keyPrefix, returning the public URL.
func (c *s3Client) UploadDataURL(ctx context.Context, keyPrefix string, dataURLStr string) (string, error) {
	data, mimeType, ext, err := validateImage(dataURLStr)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s%s", keyPrefix, uuid.New().String(), ext)

	_, err = c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      &c.cfg.S3BucketName,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &mimeType,
	})
	if err != nil {
		logx.Error(err, "S3 upload failed", "key", key)
		return "", errors.New("failed to upload image")
	}

	return fmt.Sprintf("%s/%s", c.cfg.S3PublicBaseURL, key), nil
}

// Delete removes the object behind a public URL minted by UploadDataURL.
// URLs outside the public base are silently ignored.
func (c *s3Client) Delete(ctx context.Context, publicURL string) error {
	key, ok := keyFromPublicURL(c.cfg.S3PublicBaseURL, publicURL)
	if !ok {
		return nil
	}

	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &c.cfg.S3BucketName,
		Key:    &key,
	})

	if err != nil {
		logx.Error(err, "S3 delete failed", "key", key)
		return errors.New("failed to delete object")
	}

	return nil
}
