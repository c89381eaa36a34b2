package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/ibheros/studio/internal/config"
	"github.com/ibheros/studio/internal/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStore S3 兼容对象存储
type MinIOStore struct {
	client        *minio.Client
	bucket        string
	region        string
	publicBaseURL string

	mu          sync.Mutex
	bucketReady bool
}

// NewMinIOStore 创建 S3 兼容存储，存储桶在首次上传时检查
func NewMinIOStore(cfg config.MinIOMediaConfig) (*MinIOStore, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" || strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("minio endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}
	base := strings.TrimSpace(cfg.PublicBaseURL)
	if base == "" {
		scheme := "http://"
		if cfg.UseSSL {
			scheme = "https://"
		}
		base = scheme + cfg.Endpoint + "/" + cfg.Bucket
	}
	return &MinIOStore{
		client:        client,
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		publicBaseURL: base,
	}, nil
}

// Upload 上传对象
func (s *MinIOStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// PublicURL 返回对象访问地址
func (s *MinIOStore) PublicURL(key string) string {
	return joinURL(s.publicBaseURL, key)
}

// ensureBucket 检查存储桶，失败时下次上传重试
func (s *MinIOStore) ensureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bucketReady {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return err
		}
		logger.Infow("media_bucket_created", "bucket", s.bucket)
	}
	s.bucketReady = true
	return nil
}
