package s3util

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	put     *s3.PutObjectInput
	body    []byte
	expires time.Duration
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func (f *fakeS3) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	opts := &s3.PresignOptions{}
	for _, fn := range optFns {
		fn(opts)
	}
	f.expires = opts.Expires
	return &v4.PresignedHTTPRequest{URL: "https://" + *in.Bucket + ".example/" + *in.Key}, nil
}

func TestUploadBytes(t *testing.T) {
	fake := &fakeS3{}
	err := UploadBytes(context.Background(), fake, "bucket", "scripts/a.txt", "text/plain", []byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, "bucket", *fake.put.Bucket)
	assert.Equal(t, "scripts/a.txt", *fake.put.Key)
	assert.Equal(t, "text/plain", *fake.put.ContentType)
	assert.Equal(t, int64(5), *fake.put.ContentLength)
	assert.Equal(t, []byte("hello"), fake.body)

	fake = &fakeS3{err: errors.New("access denied")}
	err = UploadBytes(context.Background(), fake, "bucket", "k", "text/plain", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestGeneratePresignedURL(t *testing.T) {
	fake := &fakeS3{}
	url, err := GeneratePresignedURL(context.Background(), fake, "bucket", "k", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example/k", url)
	assert.Equal(t, 15*time.Minute, fake.expires)

	_, err = GeneratePresignedURL(context.Background(), &fakeS3{err: errors.New("no creds")}, "bucket", "k", time.Minute)
	require.Error(t, err)
}
