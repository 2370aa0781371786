package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/JaimeStill/legal-lab/internal/config"
)

// objectStore keeps blobs in a single S3-compatible bucket.
type objectStore struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewMinio creates an object store System. The bucket is created by Init when missing.
func NewMinio(cfg *config.MinioConfig, logger *slog.Logger) (System, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &objectStore{
		client: client,
		bucket: cfg.Bucket,
		logger: logger.With("system", "storage", "backend", "minio"),
	}, nil
}

func (o *objectStore) Init(ctx context.Context) error {
	exists, err := o.client.BucketExists(ctx, o.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := o.client.MakeBucket(ctx, o.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		o.logger.Info("bucket created", "bucket", o.bucket)
	}
	return nil
}

func (o *objectStore) Store(ctx context.Context, key string, data []byte) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}

	_, err = o.client.PutObject(ctx, o.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: http.DetectContentType(data)})
	if err != nil {
		return mapObjectError(err, "put object")
	}
	return nil
}

func (o *objectStore) Retrieve(ctx context.Context, key string) ([]byte, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}

	obj, err := o.client.GetObject(ctx, o.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapObjectError(err, "get object")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapObjectError(err, "read object")
	}
	return data, nil
}

func (o *objectStore) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}

	if err := o.client.RemoveObject(ctx, o.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if mapObjectError(err, "") == ErrNotFound {
			return nil
		}
		return mapObjectError(err, "remove object")
	}
	return nil
}

func (o *objectStore) Validate(ctx context.Context, key string) (bool, error) {
	key, err := cleanKey(key)
	if err != nil {
		return false, err
	}

	if _, err := o.client.StatObject(ctx, o.bucket, key, minio.StatObjectOptions{}); err != nil {
		mapped := mapObjectError(err, "stat object")
		if mapped == ErrNotFound {
			return false, nil
		}
		return false, mapped
	}
	return true, nil
}

func (o *objectStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	for obj := range o.client.ListObjects(ctx, o.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, mapObjectError(obj.Err, "list objects")
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func mapObjectError(err error, op string) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return ErrNotFound
	case "AccessDenied":
		return ErrPermissionDenied
	}
	return fmt.Errorf("%s: %w", op, err)
}
