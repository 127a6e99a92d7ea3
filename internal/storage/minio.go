package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abduss/docshelf/internal/blob"
	"github.com/abduss/docshelf/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const defaultObjectStoreTimeout = 5 * time.Second

// NewMinIOClient establishes a MinIO client using the provided configuration.
func NewMinIOClient(cfg config.MinIOConfig) (*minio.Client, error) {
	endpoint := cfg.Endpoint
	if !strings.Contains(endpoint, ":") {
		endpoint = fmt.Sprintf("%s:9000", endpoint)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return client, nil
}

// EnsureBucket creates the blob bucket when it does not exist yet.
func EnsureBucket(ctx context.Context, client *minio.Client, bucket, region string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultObjectStoreTimeout)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %q: %w", bucket, err)
	}
	return nil
}

// Probe reports whether a blob backend is reachable.
type Probe func(ctx context.Context) error

// NewBlobStore builds the configured blob backend along with a readiness probe.
func NewBlobStore(ctx context.Context, cfg config.Config, log *zap.Logger) (blob.Store, Probe, error) {
	switch cfg.Storage.Backend {
	case config.BackendMinIO:
		client, err := NewMinIOClient(cfg.MinIO)
		if err != nil {
			return nil, nil, err
		}
		if err := EnsureBucket(ctx, client, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
			return nil, nil, err
		}
		log.Info("using minio blob store",
			zap.String("endpoint", cfg.MinIO.Endpoint),
			zap.String("bucket", cfg.MinIO.Bucket),
		)
		probe := func(ctx context.Context) error {
			ok, err := client.BucketExists(ctx, cfg.MinIO.Bucket)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("bucket %q missing", cfg.MinIO.Bucket)
			}
			return nil
		}
		return blob.NewMinIOStore(client, cfg.MinIO.Bucket), probe, nil

	case config.BackendDisk:
		store, err := blob.NewDiskStore(cfg.Storage.ContentDir)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using disk blob store", zap.String("dir", store.Dir()))
		probe := func(ctx context.Context) error {
			_, err := store.List(ctx)
			return err
		}
		return store, probe, nil

	default:
		return nil, nil, fmt.Errorf("unknown blob backend %q", cfg.Storage.Backend)
	}
}
