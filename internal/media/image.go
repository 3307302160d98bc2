package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ImageInfo describes a decoded image header.
type ImageInfo struct {
	Width  int
	Height int
	Format string
}

// InspectImage decodes only the image header of data. It fails for empty or
// non-image input.
func InspectImage(data []byte) (*ImageInfo, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	return &ImageInfo{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}
