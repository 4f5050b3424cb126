// internal/storage/archive.go
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/config"
)

// UploadArchive keeps the raw spreadsheets around in S3-compatible
// storage so a bad pipeline run can be replayed against the originals.
type UploadArchive interface {
	Archive(ctx context.Context, source, filename string, r io.Reader, size int64) (string, error)
}

type minioArchive struct {
	client *minio.Client
	bucket string
}

type noopArchive struct{}

func NewUploadArchive(cfg config.ArchiveConfig) (UploadArchive, error) {
	if !cfg.Enabled {
		return &noopArchive{}, nil
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("archive endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("archive credentials must be provided")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create archive client: %w", err)
	}

	return &minioArchive{client: client, bucket: cfg.Bucket}, nil
}

func NewNoopArchive() UploadArchive {
	return &noopArchive{}
}

// Archive stores the upload under <source>/<date>/<filename> and
// returns the object key.
func (a *minioArchive) Archive(ctx context.Context, source, filename string, r io.Reader, size int64) (string, error) {
	key := path.Join(source, time.Now().UTC().Format("20060102"), filename)
	_, err := a.client.PutObject(ctx, a.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", key, err)
	}
	return key, nil
}

func (a *noopArchive) Archive(ctx context.Context, source, filename string, r io.Reader, size int64) (string, error) {
	return "", nil
}
