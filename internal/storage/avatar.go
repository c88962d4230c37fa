// Package storage uploads avatar images to S3-compatible object storage
// (AWS S3 or MinIO).  The rest of the application only sees the resulting
// storage key and public URL, which are persisted on the account document.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/iliyamo/user-account-service/internal/config"
	"github.com/iliyamo/user-account-service/internal/model"
)

// AvatarStore wraps an S3 client plus the bucket and public URL prefix used
// for uploaded avatars.
type AvatarStore struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewAvatarStore builds the S3 client from application config.  Static
// credentials and a custom endpoint keep this working against MinIO in
// development and plain S3 in production.
func NewAvatarStore(cfg config.Config) (*AvatarStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &AvatarStore{
		client:        client,
		bucket:        cfg.S3Bucket,
		publicBaseURL: strings.TrimRight(cfg.S3PublicBaseURL, "/"),
	}, nil
}

// storageKey returns a date-sharded object key for a new avatar.
func storageKey() string {
	d := time.Now().UTC()
	return fmt.Sprintf("avatars/%d/%02d/%v", d.Year(), d.Month(), uuid.New())
}

// Upload stores the image bytes and returns the avatar reference to persist.
// The call blocks until the object is written; registration aborts on error
// so no account is ever created with a dangling avatar reference.
func (s *AvatarStore) Upload(ctx context.Context, data []byte, contentType string) (model.Avatar, error) {
	key := storageKey()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return model.Avatar{}, fmt.Errorf("avatar upload: %w", err)
	}
	return model.Avatar{
		StorageID: key,
		URL:       s.publicBaseURL + "/" + key,
	}, nil
}
