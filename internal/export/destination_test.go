package export

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ncruces/zenity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDestination(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	d := NewLocalDestination(dir, false)

	loc, err := d.Save(context.Background(), "rain_script.txt", []byte("Shooting Script: Rain\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "rain_script.txt"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "Shooting Script: Rain\n", string(data))
}

func TestLocalDestination_Dialog(t *testing.T) {
	dir := t.TempDir()
	chosen := filepath.Join(dir, "picked.txt")
	var offered string
	d := &LocalDestination{Dir: dir, Dialog: true, saveDialog: func(p string) (string, error) {
		offered = p
		return chosen, nil
	}}

	loc, err := d.Save(context.Background(), "rain_script.txt", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "rain_script.txt"), offered)
	assert.Equal(t, chosen, loc)

	d.saveDialog = func(string) (string, error) { return "", zenity.ErrCanceled }
	_, err = d.Save(context.Background(), "rain_script.txt", []byte("x"))
	assert.ErrorIs(t, err, ErrCanceled)
}

type fakeS3 struct {
	bucket, key, contentType string
	body                     []byte
	err                      error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket, f.key, f.contentType = *in.Bucket, *in.Key, *in.ContentType
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

type fakePresigner struct {
	expires time.Duration
}

func (f *fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	f.expires = opts.Expires
	return &v4.PresignedHTTPRequest{
		URL:    "https://" + *in.Bucket + ".s3.amazonaws.com/" + *in.Key + "?X-Amz-Signature=abc",
		Method: http.MethodGet,
	}, nil
}

func TestS3Destination(t *testing.T) {
	put := &fakeS3{}
	presign := &fakePresigner{}
	d := &S3Destination{Client: put, Presigner: presign, Bucket: "scripts", Prefix: "/exports/"}

	url, err := d.Save(context.Background(), "rain_script.txt", []byte("Shooting Script: Rain\n"))
	require.NoError(t, err)
	assert.Equal(t, "scripts", put.bucket)
	assert.Equal(t, "exports/rain_script.txt", put.key)
	assert.Equal(t, ContentType, put.contentType)
	assert.Equal(t, "Shooting Script: Rain\n", string(put.body))
	assert.Equal(t, DefaultURLExpiry, presign.expires)
	assert.Contains(t, url, "exports/rain_script.txt")

	put.err = errors.New("access denied")
	_, err = d.Save(context.Background(), "rain_script.txt", []byte("x"))
	assert.ErrorContains(t, err, "access denied")
}
