package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// compressedPrefix marks values written by CompressedStore. Values without it
// are returned unchanged so uncompressed snapshots stay readable.
const compressedPrefix = "zstd:"

// CompressedStore wraps another Store, compressing values with zstd and
// storing them base64-encoded.
type CompressedStore struct {
	inner   Store
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

var _ Store = (*CompressedStore)(nil)

// Compressed wraps inner.
func Compressed(inner Store) (*CompressedStore, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &CompressedStore{inner: inner, encoder: enc, decoder: dec}, nil
}

func (c *CompressedStore) Get(ctx context.Context, key string) (string, bool, error) {
	raw, ok, err := c.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	encoded, found := strings.CutPrefix(raw, compressedPrefix)
	if !found {
		return raw, true, nil
	}
	compressed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", false, fmt.Errorf("decode %s: %w", key, err)
	}
	plain, err := c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return "", false, fmt.Errorf("decompress %s: %w", key, err)
	}
	return string(plain), true, nil
}

func (c *CompressedStore) Put(ctx context.Context, key, value string) error {
	compressed := c.encoder.EncodeAll([]byte(value), nil)
	return c.inner.Put(ctx, key, compressedPrefix+base64.StdEncoding.EncodeToString(compressed))
}

func (c *CompressedStore) Close() error {
	c.decoder.Close()
	return errors.Join(c.encoder.Close(), c.inner.Close())
}
