package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultBucket holds voice journals when no bucket is configured.
const DefaultBucket = "voice-journals"

const bucketCheckTimeout = 5 * time.Second

// MinioOptions locates the recording bucket. Endpoint may carry an http://
// or https:// scheme, which then decides UseSSL.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

func (o MinioOptions) normalized() (MinioOptions, error) {
	o.Endpoint = strings.TrimSpace(o.Endpoint)
	if strings.Contains(o.Endpoint, "://") {
		u, err := url.Parse(o.Endpoint)
		if err != nil || u.Host == "" {
			return o, fmt.Errorf("invalid minio endpoint %q", o.Endpoint)
		}
		o.UseSSL = u.Scheme == "https"
		o.Endpoint = u.Host
	}
	if o.Endpoint == "" {
		return o, errors.New("minio endpoint is required")
	}
	if o.AccessKey == "" || o.SecretKey == "" {
		return o, errors.New("minio credentials are required")
	}
	if o.Bucket = strings.TrimSpace(o.Bucket); o.Bucket == "" {
		o.Bucket = DefaultBucket
	}
	return o, nil
}

// MinioStore keeps voice journal recordings in a MinIO or S3 bucket and
// hands out time-limited playback links.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects and creates the bucket on first use.
func NewMinioStore(ctx context.Context, opts MinioOptions) (*MinioStore, error) {
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("connect minio: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, bucketCheckTimeout)
	defer cancel()
	found, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("look up bucket %s: %w", opts.Bucket, err)
	}
	if !found {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", opts.Bucket, err)
		}
	}
	return &MinioStore{client: client, bucket: opts.Bucket}, nil
}

func (m *MinioStore) Name() string { return "minio" }

// Bucket is the bucket recordings land in.
func (m *MinioStore) Bucket() string { return m.bucket }

func (m *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "private, no-store",
	})
	if err != nil {
		return fmt.Errorf("upload recording %s: %w", key, err)
	}
	return nil
}

// PresignGet links to the recording for in-browser playback.
func (m *MinioStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	params := url.Values{}
	params.Set("response-content-disposition", "inline")
	link, err := m.client.PresignedGetObject(ctx, m.bucket, key, expiry, params)
	if err != nil {
		return "", fmt.Errorf("sign playback link for %s: %w", key, err)
	}
	return link.String(), nil
}

func (m *MinioStore) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove recording %s: %w", key, err)
	}
	return nil
}
