package file

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Backend stores share files in an S3-compatible object store. With this
// backend there is no local archive packaging; multi-file downloads happen
// per file.
type S3Backend struct {
	client *s3.Client
	bucket string
}

// NewS3Backend creates an S3 backend from static credentials
func NewS3Backend(cfg S3Config) (*S3Backend, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 backend requires a bucket")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3 backend requires credentials")
	}

	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	return &S3Backend{
		client: s3.New(opts),
		bucket: cfg.Bucket,
	}, nil
}

// Mkdir is a no-op: object stores have no directories
func (b *S3Backend) Mkdir(ctx context.Context, shareID string) error {
	return nil
}

// Put uploads a file
func (b *S3Backend) Put(ctx context.Context, shareID, fileID string, data io.Reader) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey(shareID, fileID)),
		Body:   data,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s/%s: %w", shareID, fileID, err)
	}
	return nil
}

// Get downloads a file
func (b *S3Backend) Get(ctx context.Context, shareID, fileID string) (io.ReadCloser, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey(shareID, fileID)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s/%s: %w", shareID, fileID, err)
	}
	return out.Body, nil
}

// Delete removes a single file
func (b *S3Backend) Delete(ctx context.Context, shareID, fileID string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey(shareID, fileID)),
	})
	return err
}

// DeleteAll removes every object below the share's prefix
func (b *S3Backend) DeleteAll(ctx context.Context, shareID string) error {
	prefix := "shares/" + shareID + "/"
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", prefix, err)
		}
		if len(page.Contents) == 0 {
			continue
		}

		objects := make([]s3types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			objects = append(objects, s3types.ObjectIdentifier{Key: obj.Key})
		}

		_, err = b.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(b.bucket),
			Delete: &s3types.Delete{Objects: objects},
		})
		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", prefix, err)
		}
	}
	return nil
}

func objectKey(shareID, fileID string) string {
	return "shares/" + shareID + "/" + fileID
}
