package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReadCapture_NoMetadata(t *testing.T) {
	_, err := ReadCapture(nil)
	assert.Error(t, err)

	_, err = ReadCapture([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestCaptureInfo_Lines(t *testing.T) {
	var none *CaptureInfo
	assert.True(t, none.Empty())
	assert.Nil(t, none.Lines())

	info := &CaptureInfo{
		CameraMake:  "Canon",
		CameraModel: "EOS R6",
		Taken:       time.Date(2025, time.March, 4, 17, 30, 0, 0, time.UTC),
	}
	assert.Equal(t, []string{"Camera: Canon EOS R6", "Captured: March 4, 2025 5:30 PM"}, info.Lines())

	assert.Equal(t, []string{"Camera: Pixel 8"}, (&CaptureInfo{CameraModel: "Pixel 8"}).Lines())
}
