package media

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evanoberholster/imagemeta"
)

// exifMIMETypes are the image types whose EXIF block is worth reading.
var exifMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/heic": true,
	"image/heif": true,
	"image/tiff": true,
}

// CaptureInfo is the camera metadata of a photo attachment. GPS is never
// read.
type CaptureInfo struct {
	CameraMake  string
	CameraModel string
	Taken       time.Time
}

// ReadCapture decodes the EXIF block of data. Date falls back from
// DateTimeOriginal to CreateDate.
func ReadCapture(data []byte) (*CaptureInfo, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}
	exifData, err := imagemeta.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode EXIF metadata: %w", err)
	}

	info := &CaptureInfo{
		CameraMake:  strings.TrimSpace(exifData.Make),
		CameraModel: strings.TrimSpace(exifData.Model),
	}
	if t := exifData.DateTimeOriginal(); !t.IsZero() {
		info.Taken = t
	} else if t := exifData.CreateDate(); !t.IsZero() {
		info.Taken = t
	}
	if info.Empty() {
		return nil, errors.New("no camera metadata")
	}
	return info, nil
}

// Empty reports whether nothing useful was found.
func (c *CaptureInfo) Empty() bool {
	return c == nil || (c.CameraMake == "" && c.CameraModel == "" && c.Taken.IsZero())
}

// Lines renders the metadata as prompt context lines.
func (c *CaptureInfo) Lines() []string {
	if c.Empty() {
		return nil
	}
	var lines []string
	if camera := strings.TrimSpace(c.CameraMake + " " + c.CameraModel); camera != "" {
		lines = append(lines, "Camera: "+camera)
	}
	if !c.Taken.IsZero() {
		lines = append(lines, "Captured: "+c.Taken.Format("January 2, 2006 3:04 PM"))
	}
	return lines
}
