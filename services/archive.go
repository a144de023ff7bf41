package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
	"github.com/srad/videoanalyzer/conf"
)

// Archiver copies finished outputs to long term storage.
type Archiver interface {
	Archive(ctx context.Context, path string) error
}

type minioArchiver struct {
	client *minio.Client
	bucket string
}

// NewArchiver Returns nil when no archive endpoint is configured.
func NewArchiver(cfg *conf.Cfg) (Archiver, error) {
	if cfg.ArchiveEndpoint == "" {
		return nil, nil
	}

	client, err := minio.New(cfg.ArchiveEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.ArchiveAccessKey, cfg.ArchiveSecretKey, ""),
		Secure: cfg.ArchiveUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio connection: %w", err)
	}

	log.Infof("[Archive] Mirroring outputs to bucket '%s' at %s", cfg.ArchiveBucket, cfg.ArchiveEndpoint)

	return &minioArchiver{client: client, bucket: cfg.ArchiveBucket}, nil
}

func (a *minioArchiver) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
}

func (a *minioArchiver) Archive(ctx context.Context, path string) error {
	if err := a.ensureBucket(ctx); err != nil {
		return fmt.Errorf("bucket '%s': %w", a.bucket, err)
	}

	info, err := a.client.FPutObject(ctx, a.bucket, filepath.Base(path), path, minio.PutObjectOptions{
		ContentType: contentType(path),
	})
	if err != nil {
		return err
	}
	log.Infof("[Archive] Stored '%s' (%d bytes)", info.Key, info.Size)

	return nil
}

func contentType(path string) string {
	switch filepath.Ext(path) {
	case ".avi":
		return "video/x-msvideo"
	case ".mp4":
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}
