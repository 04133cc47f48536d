package publish

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/iiab/staticsearch"
)

// BucketConfig locates an S3-compatible bucket.
type BucketConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// BucketSink uploads files to an S3-compatible bucket.
type BucketSink struct {
	client      *minio.Client
	bucket      string
	prefix      string
	compression Compression
}

// NewBucketSink connects to the bucket described by cfg. Region is set on
// the client so no location lookup is made before the first upload.
func NewBucketSink(cfg BucketConfig, c Compression) (*BucketSink, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket sink needs an endpoint and a bucket")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       cfg.UseSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}
	return &BucketSink{
		client:      client,
		bucket:      cfg.Bucket,
		prefix:      cfg.Prefix,
		compression: c,
	}, nil
}

func (s *BucketSink) key(name string) string {
	return path.Join(s.prefix, name)
}

// Put uploads f, compressed, as <prefix>/<name><ext>.
func (s *BucketSink) Put(ctx context.Context, f staticsearch.File) error {
	var buf bytes.Buffer
	if err := compress(s.compression, f.Content, &buf); err != nil {
		return err
	}
	opts := minio.PutObjectOptions{ContentType: "application/json"}
	switch s.compression {
	case CompressionGzip:
		opts.ContentEncoding = "gzip"
	case CompressionZstd:
		opts.ContentEncoding = "zstd"
	}
	key := s.key(f.Name + s.compression.Ext())
	if _, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), opts); err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	return nil
}

// PutFile uploads a local file, such as the release archive, unchanged.
func (s *BucketSink) PutFile(ctx context.Context, localPath string) (string, error) {
	key := s.key(filepath.Base(localPath))
	_, err := s.client.FPutObject(ctx, s.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: "application/gzip",
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	return key, nil
}

// Close is a no-op.
func (s *BucketSink) Close() error { return nil }
