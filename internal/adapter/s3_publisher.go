package adapter

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Publisher copies rendered report documents to a secondary destination.
type Publisher interface {
	Publish(ctx context.Context, name string, content []byte) error
}

// S3Config configures an S3-compatible publication target.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// Enabled reports whether enough configuration is present to publish.
func (c S3Config) Enabled() bool {
	return strings.TrimSpace(c.Bucket) != ""
}

// S3Publisher uploads documents to a bucket with minio-go.
type S3Publisher struct {
	client     *minio.Client
	bucketName string
	region     string
	prefix     string
	initOnce   sync.Once
	initErr    error
}

// NewS3Publisher validates cfg and builds the client. No request is made
// until the first Publish.
func NewS3Publisher(cfg S3Config) (*S3Publisher, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}

	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)

	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}

	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Publisher{
		client:     client,
		bucketName: bucket,
		region:     region,
		prefix:     strings.Trim(strings.TrimSpace(cfg.Prefix), "/"),
	}, nil
}

func (p *S3Publisher) ensureBucket(ctx context.Context) error {
	p.initOnce.Do(func() {
		exists, err := p.client.BucketExists(ctx, p.bucketName)
		if err != nil {
			p.initErr = err
			return
		}

		if exists {
			return
		}

		p.initErr = p.client.MakeBucket(ctx, p.bucketName, minio.MakeBucketOptions{Region: p.region})
	})

	return p.initErr
}

// ObjectKey returns the key a document named name is stored under.
func (p *S3Publisher) ObjectKey(name string) string {
	if p.prefix == "" {
		return name
	}

	return path.Join(p.prefix, name)
}

// Publish uploads content as an object named after the document file.
func (p *S3Publisher) Publish(ctx context.Context, name string, content []byte) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("document name is required")
	}

	if err := p.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := p.client.PutObject(ctx, p.bucketName, p.ObjectKey(name), bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", p.ObjectKey(name), err)
	}

	return nil
}
