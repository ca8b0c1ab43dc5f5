// Package storage provides the MinIO-backed artifact store for generated
// documents such as sanction letters.
package storage

import (
	"bytes"
	"context"
	"fmt"

	"loanflow_backend/platform/config"
	"loanflow_backend/platform/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArtifactStore stores generated documents in an S3-compatible bucket.
type ArtifactStore struct {
	client *minio.Client
	bucket string
	log    *logger.Logger
}

// NewArtifactStore connects to MinIO and ensures the bucket exists.
func NewArtifactStore(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (*ArtifactStore, error) {
	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to object storage: %w", err)
	}

	bucket := cfg.GetSanctionLetterBucket()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
		log.Info("created storage bucket", "bucket", bucket)
	}

	return &ArtifactStore{client: client, bucket: bucket, log: log}, nil
}

// Put uploads an object and returns its bucket-relative URL path.
func (s *ArtifactStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return fmt.Sprintf("/%s/%s", s.bucket, key), nil
}
