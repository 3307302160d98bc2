// Package media converts user-supplied files into inline attachments for AI
// requests and inspects images returned by the image model.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fpang/idea-studio/internal/domain"
	"github.com/rs/zerolog/log"
)

// SupportedImageExtensions maps image file extensions to MIME types.
var SupportedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
}

// SupportedVideoExtensions maps video file extensions to MIME types.
var SupportedVideoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
}

// SupportedDocumentExtensions covers audio tracks and design exports.
var SupportedDocumentExtensions = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".html": "text/html",
}

// chunkSize is how many bytes are read between context checks.
const chunkSize = 256 * 1024

// Attachment is an encoded file ready to travel alongside a prompt.
type Attachment struct {
	Name     string
	MIMEType string
	// Payload is the base64 (standard encoding) form of the file bytes.
	Payload string
	Size    int64
	// Capture is set for photos that carry camera metadata.
	Capture *CaptureInfo
}

// Bytes decodes the payload back into raw bytes for transport.
func (a *Attachment) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(a.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: decode payload for %s: %v", domain.ErrEncoding, a.Name, err)
	}
	return data, nil
}

// EncodeFile opens filePath and encodes its full contents.
func EncodeFile(ctx context.Context, filePath string) (*Attachment, error) {
	log.Debug().Str("path", filePath).Msg("Encoding media file")

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: file not found: %s", domain.ErrEncoding, filePath)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", domain.ErrEncoding, filePath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: path is a directory, not a file: %s", domain.ErrEncoding, filePath)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrEncoding, filePath, err)
	}
	defer f.Close()

	return Encode(ctx, f, filepath.Base(filePath))
}

// Encode reads r to the end and returns it as an attachment named name.
// The caller is suspended until the stream is fully read; cancellation of ctx
// is observed between chunks.
func Encode(ctx context.Context, r io.Reader, name string) (*Attachment, error) {
	var raw []byte
	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrEncoding, name, err)
		}
		n, err := r.Read(buf)
		raw = append(raw, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrEncoding, name, err)
		}
	}

	mimeType := DetectMIMEType(name, raw)
	att := &Attachment{
		Name:     name,
		MIMEType: mimeType,
		Payload:  base64.StdEncoding.EncodeToString(raw),
		Size:     int64(len(raw)),
	}
	if exifMIMETypes[mimeType] {
		capture, err := ReadCapture(raw)
		if err != nil {
			log.Debug().Err(err).Str("name", name).Msg("No camera metadata")
		} else {
			att.Capture = capture
		}
	}

	log.Info().
		Str("name", name).
		Str("mime_type", mimeType).
		Int64("size_bytes", att.Size).
		Msg("Media file encoded")

	return att, nil
}

// DetectMIMEType resolves the content type from the file extension, falling
// back to content sniffing for unknown extensions.
func DetectMIMEType(name string, head []byte) string {
	if mimeType, err := GetMIMEType(filepath.Ext(name)); err == nil {
		return mimeType
	}
	if len(head) > 512 {
		head = head[:512]
	}
	mimeType := http.DetectContentType(head)
	// Drop parameters such as "; charset=utf-8".
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}

// GetMIMEType returns the MIME type for a given file extension.
func GetMIMEType(ext string) (string, error) {
	ext = strings.ToLower(ext)

	if mimeType, ok := SupportedImageExtensions[ext]; ok {
		return mimeType, nil
	}
	if mimeType, ok := SupportedVideoExtensions[ext]; ok {
		return mimeType, nil
	}
	if mimeType, ok := SupportedDocumentExtensions[ext]; ok {
		return mimeType, nil
	}

	return "", fmt.Errorf("unsupported file extension: %s", ext)
}

// Kind classifies the attachment as "image", "video", "audio" or "document",
// by extension first and MIME type second.
func (a *Attachment) Kind() string {
	ext := filepath.Ext(a.Name)
	switch {
	case IsImage(ext) || strings.HasPrefix(a.MIMEType, "image/"):
		return "image"
	case IsVideo(ext) || strings.HasPrefix(a.MIMEType, "video/"):
		return "video"
	case strings.HasPrefix(a.MIMEType, "audio/"):
		return "audio"
	default:
		return "document"
	}
}

// IsImage returns true if the file extension corresponds to an image.
func IsImage(ext string) bool {
	_, ok := SupportedImageExtensions[strings.ToLower(ext)]
	return ok
}

// IsVideo returns true if the file extension corresponds to a video.
func IsVideo(ext string) bool {
	_, ok := SupportedVideoExtensions[strings.ToLower(ext)]
	return ok
}
