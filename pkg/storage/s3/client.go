package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mvidal/promptgallery-backend/pkg/config"
	"github.com/mvidal/promptgallery-backend/pkg/logger"
)

const pingTimeout = 5 * time.Second

// Client stores and deletes blobs in an S3-compatible bucket (R2, MinIO, S3).
type Client struct {
	cl     *minio.Client
	bucket string
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ObjectInfo is the subset of listing metadata the sweep job consumes.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
}

// NewClient connects to the configured bucket and verifies it is reachable.
func NewClient(ctx context.Context, cfg config.BlobConfig, logg *logger.Logger) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("blob bucket is required")
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}

	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("creating s3 client: %w", err)
	}

	client := &Client{cl: cl, bucket: cfg.Bucket}

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("blob store health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "blob store client initialized")
	}

	return client, nil
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	if c == nil {
		return ""
	}
	return c.bucket
}

// Ping verifies the bucket exists and is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.cl == nil {
		return errors.New("blob store client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	ok, err := c.cl.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", c.bucket)
	}
	return nil
}

// Put writes payload under key with the supplied content type.
func (c *Client) Put(ctx context.Context, key string, payload []byte, contentType string) error {
	if key == "" {
		return errors.New("blob key is required")
	}
	_, err := c.cl.PutObject(ctx, c.bucket, key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Delete removes the blob stored at key. A missing object is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("blob key is required")
	}
	err := c.cl.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// List walks every object under prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var infos []ObjectInfo
	for obj := range c.cl.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, obj.Err)
		}
		infos = append(infos, ObjectInfo{Key: obj.Key, LastModified: obj.LastModified})
	}
	return infos, nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == 404
}
