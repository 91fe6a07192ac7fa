package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"CityPulse/internal/config"
	"CityPulse/internal/domain"
	"CityPulse/internal/ports"
)

// objectAPI is the slice of the S3 client the store needs.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store uploads report photos to a bucket.
type S3Store struct {
	client        objectAPI
	bucket        string
	region        string
	prefix        string
	publicBaseURL string
}

var _ ports.ImageStore = (*S3Store)(nil)

// NewS3Store loads the default AWS credential chain for the configured region.
func NewS3Store(ctx context.Context, cfg config.ImagesConfig) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("images bucket is not configured")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	cfg.Region = awsCfg.Region
	return newS3Store(s3.NewFromConfig(awsCfg), cfg), nil
}

func newS3Store(client objectAPI, cfg config.ImagesConfig) *S3Store {
	return &S3Store{
		client:        client,
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		prefix:        strings.Trim(cfg.Prefix, "/"),
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}
}

// PutImage uploads the image under key (below the configured prefix) and returns its URL.
func (s *S3Store) PutImage(ctx context.Context, key string, img domain.Image) (string, error) {
	objectKey := s.objectKey(key)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(img.Data),
		ContentType:   aws.String(img.MIMEType),
		ContentLength: aws.Int64(int64(len(img.Data))),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload %s to S3: %w", objectKey, err)
	}

	return s.objectURL(objectKey), nil
}

// DeleteImage removes the object stored under key.
func (s *S3Store) DeleteImage(ctx context.Context, key string) error {
	objectKey := s.objectKey(key)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("unable to delete %s from S3: %w", objectKey, err)
	}
	return nil
}

func (s *S3Store) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

func (s *S3Store) objectURL(objectKey string) string {
	escaped := (&url.URL{Path: objectKey}).EscapedPath()
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + escaped
	}
	if s.region == "" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, escaped)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, escaped)
}
