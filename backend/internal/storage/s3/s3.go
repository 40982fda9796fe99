package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Mecho90/BuildingManagement/backend/internal/service"
)

// Config carries the connection settings for an S3-compatible store. Endpoint
// is optional; when set (MinIO and friends) it overrides the AWS default.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

type Storage struct {
	client  *awss3.Client
	bucket  string
	baseURL string
}

// Ensure Storage implements the interface at compile time.
var _ service.ObjectStorage = (*Storage)(nil)
var _ service.SweepObjects = (*Storage)(nil)

func New(ctx context.Context, cfg Config) (*Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		// MinIO addresses buckets by path, not by virtual host.
		o.UsePathStyle = true
	})

	return &Storage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(cfg.Endpoint, "/"),
	}, nil
}

func (s *Storage) Save(ctx context.Context, fileData io.Reader, storedPath string) error {
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storedPath),
		Body:   fileData,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", storedPath, err)
	}
	return nil
}

func (s *Storage) Open(ctx context.Context, storedPath string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storedPath),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("attachment not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get object %s: %w", storedPath, err)
	}
	return out.Body, nil
}

func (s *Storage) Delete(ctx context.Context, storedPath string) error {
	// DeleteObject succeeds for keys that are already gone, matching the
	// filesystem backend.
	_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storedPath),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", storedPath, err)
	}
	return nil
}

// URL returns a path-style object address: <endpoint>/<bucket>/<key>.
func (s *Storage) URL(storedPath string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, strings.TrimLeft(storedPath, "/"))
}

// ListObjects returns every key in the bucket, paging through the listing.
func (s *Storage) ListObjects(ctx context.Context) ([]string, error) {
	var keys []string
	paginator := awss3.NewListObjectsV2Paginator(s.client, &awss3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// ObjectModTime reports the object's last-modified timestamp.
func (s *Storage) ObjectModTime(ctx context.Context, storedPath string) (time.Time, error) {
	out, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storedPath),
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to head object %s: %w", storedPath, err)
	}
	return aws.ToTime(out.LastModified), nil
}
