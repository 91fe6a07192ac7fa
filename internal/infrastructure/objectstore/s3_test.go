package objectstore

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CityPulse/internal/config"
	"CityPulse/internal/domain"
)

type fakeS3 struct {
	input   *s3.PutObjectInput
	deleted *s3.DeleteObjectInput
	body    []byte
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = params
	return &s3.DeleteObjectOutput{}, nil
}

func TestPutImageUploadsUnderPrefix(t *testing.T) {
	t.Parallel()

	client := &fakeS3{}
	store := newS3Store(client, config.ImagesConfig{Bucket: "city", Region: "ap-south-1", Prefix: "/uploads/"})
	img := domain.Image{MIMEType: "image/png", Data: []byte("png-bytes")}

	url, err := store.PutImage(context.Background(), "reports/anonymous/1-r.png", img)
	require.NoError(t, err)

	assert.Equal(t, "https://city.s3.ap-south-1.amazonaws.com/uploads/reports/anonymous/1-r.png", url)
	assert.Equal(t, "city", aws.ToString(client.input.Bucket))
	assert.Equal(t, "uploads/reports/anonymous/1-r.png", aws.ToString(client.input.Key))
	assert.Equal(t, "image/png", aws.ToString(client.input.ContentType))
	assert.EqualValues(t, 9, aws.ToInt64(client.input.ContentLength))
	assert.Equal(t, img.Data, client.body)
}

func TestPutImagePublicBaseURL(t *testing.T) {
	t.Parallel()

	store := newS3Store(&fakeS3{}, config.ImagesConfig{Bucket: "city", PublicBaseURL: "https://cdn.example.com/"})
	url, err := store.PutImage(context.Background(), "reports/a b/1-r.jpg", domain.Image{MIMEType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/reports/a%20b/1-r.jpg", url)

	store = newS3Store(&fakeS3{}, config.ImagesConfig{Bucket: "city"})
	url, err = store.PutImage(context.Background(), "k.png", domain.Image{})
	require.NoError(t, err)
	assert.Equal(t, "https://city.s3.amazonaws.com/k.png", url)
}

func TestPutImageError(t *testing.T) {
	t.Parallel()

	store := newS3Store(&fakeS3{err: errors.New("AccessDenied")}, config.ImagesConfig{Bucket: "city"})
	_, err := store.PutImage(context.Background(), "k.png", domain.Image{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	t.Parallel()

	_, err := NewS3Store(context.Background(), config.ImagesConfig{})
	require.Error(t, err)
}

func TestDeleteImage(t *testing.T) {
	t.Parallel()

	client := &fakeS3{}
	store := newS3Store(client, config.ImagesConfig{Bucket: "city", Prefix: "uploads"})

	require.NoError(t, store.DeleteImage(context.Background(), "reports/anonymous/1-r.png"))
	assert.Equal(t, "city", aws.ToString(client.deleted.Bucket))
	assert.Equal(t, "uploads/reports/anonymous/1-r.png", aws.ToString(client.deleted.Key))

	failing := newS3Store(&fakeS3{err: errors.New("throttled")}, config.ImagesConfig{Bucket: "city"})
	assert.Error(t, failing.DeleteImage(context.Background(), "k.png"))
}
