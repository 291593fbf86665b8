// Package object mirrors produced output files to an S3-compatible
// bucket. Mirroring is optional and happens after the local write, so the
// filesystem output tree stays the source of truth.
package object

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/aliskhannn/background-replacer/internal/config"
)

// Mirror uploads output files into a bucket, keyed by their path relative
// to the output root so the bucket layout matches the local tree.
type Mirror struct {
	client *minio.Client
	bucket string
}

// NewMirror connects to the configured S3-compatible endpoint, creating
// the bucket if it does not exist yet.
func NewMirror(ctx context.Context, cfg config.Storage) (*Mirror, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.BucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.BucketName, err)
		}
	}

	return &Mirror{client: client, bucket: cfg.BucketName}, nil
}

// Upload copies the local file at localPath into the bucket under relPath.
// Object keys always use forward slashes regardless of the host OS.
func (m *Mirror) Upload(ctx context.Context, relPath, localPath string) error {
	object := filepath.ToSlash(relPath)

	_, err := m.client.FPutObject(ctx, m.bucket, object, localPath, minio.PutObjectOptions{
		ContentType: "image/png",
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", object, err)
	}
	return nil
}
