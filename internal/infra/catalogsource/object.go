package catalogsource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/ecoplot/internal/domain/catalog"
)

// ObjectSource reads the dataset from an S3-compatible bucket (R2, MinIO, S3).
type ObjectSource struct {
	client *minio.Client
	bucket string
	key    string
	logger *slog.Logger
}

// NewObjectSource constructs the bucket-backed source.
func NewObjectSource(endpoint, accessKey, secretKey, bucket, key, region string, logger *slog.Logger) (*ObjectSource, error) {
	useSSL := !strings.HasPrefix(strings.ToLower(strings.TrimSpace(endpoint)), "http://")
	client, err := minio.New(sanitizeEndpoint(endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	return &ObjectSource{
		client: client,
		bucket: bucket,
		key:    strings.TrimPrefix(key, "/"),
		logger: logger.With("component", "catalogsource.object"),
	}, nil
}

// Open implements catalog.Source.
func (s *ObjectSource) Open(ctx context.Context) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get catalog object: %w", err)
	}
	// GetObject is lazy; Stat surfaces a missing key before parsing starts.
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, fmt.Errorf("stat catalog object: %w", err)
	}
	s.logger.Debug("catalog object opened", "bucket", s.bucket, "key", s.key, "size", info.Size, "etag", info.ETag)
	return obj, nil
}

// Describe implements catalog.Source.
func (s *ObjectSource) Describe() string {
	return "object:" + s.bucket + "/" + s.key
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

var _ catalog.Source = (*ObjectSource)(nil)
