package storage

import "testing"

func TestMinioOptionsNormalized(t *testing.T) {
	opts, err := MinioOptions{Endpoint: " https://s3.example.com:9000 ", AccessKey: "a", SecretKey: "s"}.normalized()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if opts.Endpoint != "s3.example.com:9000" || !opts.UseSSL || opts.Bucket != DefaultBucket {
		t.Fatalf("unexpected options %+v", opts)
	}

	opts, err = MinioOptions{Endpoint: "http://localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "journals", UseSSL: true}.normalized()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if opts.UseSSL || opts.Bucket != "journals" {
		t.Fatalf("scheme should decide ssl, got %+v", opts)
	}

	opts, err = MinioOptions{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "s", UseSSL: true}.normalized()
	if err != nil || !opts.UseSSL || opts.Endpoint != "minio:9000" {
		t.Fatalf("bare endpoint keeps UseSSL, got %+v %v", opts, err)
	}
}

func TestMinioOptionsRejectMissingFields(t *testing.T) {
	cases := []MinioOptions{
		{AccessKey: "a", SecretKey: "s"},
		{Endpoint: "minio:9000", AccessKey: "a"},
		{Endpoint: "https://", AccessKey: "a", SecretKey: "s"},
	}
	for _, c := range cases {
		if _, err := c.normalized(); err == nil {
			t.Fatalf("expected error for %+v", c)
		}
	}
}
