package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/fpang/idea-studio/internal/domain"
)

func TestGetMIMEType(t *testing.T) {
	tests := []struct {
		ext          string
		expectedMIME string
		expectError  bool
	}{
		{".jpg", "image/jpeg", false},
		{".JPEG", "image/jpeg", false},
		{".png", "image/png", false},
		{".webp", "image/webp", false},
		{".mp4", "video/mp4", false},
		{".mov", "video/quicktime", false},
		{".mp3", "audio/mpeg", false},
		{".pdf", "application/pdf", false},
		{".xyz", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			mime, err := GetMIMEType(tt.ext)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error for %q, got nil", tt.ext)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error for %q: %v", tt.ext, err)
			}
			if mime != tt.expectedMIME {
				t.Errorf("GetMIMEType(%q) = %q, want %q", tt.ext, mime, tt.expectedMIME)
			}
		})
	}
}

func TestIsImageIsVideo(t *testing.T) {
	if !IsImage(".PNG") || IsImage(".mp4") {
		t.Error("IsImage misclassified")
	}
	if !IsVideo(".MOV") || IsVideo(".jpg") {
		t.Error("IsVideo misclassified")
	}
}

func TestAttachmentKind(t *testing.T) {
	tests := []struct {
		name string
		att  Attachment
		want string
	}{
		{"image by extension", Attachment{Name: "a.HEIC"}, "image"},
		{"video by extension", Attachment{Name: "cut.mov"}, "video"},
		{"image by sniffed type", Attachment{Name: "upload", MIMEType: "image/png"}, "image"},
		{"video by sniffed type", Attachment{Name: "clip.bin", MIMEType: "video/mp4"}, "video"},
		{"audio", Attachment{Name: "track.mp3", MIMEType: "audio/mpeg"}, "audio"},
		{"document", Attachment{Name: "deck.pdf", MIMEType: "application/pdf"}, "document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.att.Kind(); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("frame"), chunkSize/2) // spans several chunks
	att, err := Encode(context.Background(), bytes.NewReader(data), "clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if att.MIMEType != "video/mp4" {
		t.Errorf("MIMEType = %q, want video/mp4", att.MIMEType)
	}
	if att.Size != int64(len(data)) {
		t.Errorf("Size = %d, want %d", att.Size, len(data))
	}
	if att.Payload != base64.StdEncoding.EncodeToString(data) {
		t.Error("payload is not the base64 form of the input")
	}
	decoded, err := att.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Error("decoded bytes differ from input")
	}
}

func TestEncode_SniffsUnknownExtension(t *testing.T) {
	att, err := Encode(context.Background(), bytes.NewReader([]byte("%PDF-1.7 body")), "brief.bin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if att.MIMEType != "application/pdf" {
		t.Errorf("MIMEType = %q, want application/pdf", att.MIMEType)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestEncode_ReadFailure(t *testing.T) {
	_, err := Encode(context.Background(), failingReader{}, "broken.jpg")
	if !errors.Is(err, domain.ErrEncoding) {
		t.Fatalf("expected ErrEncoding, got %v", err)
	}
}

func TestEncode_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Encode(ctx, bytes.NewReader([]byte("x")), "a.png")
	if !errors.Is(err, domain.ErrEncoding) {
		t.Fatalf("expected ErrEncoding, got %v", err)
	}
}

func TestEncodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poster.png")
	if err := os.WriteFile(path, []byte("not really a png"), 0o600); err != nil {
		t.Fatal(err)
	}

	att, err := EncodeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if att.Name != "poster.png" || att.MIMEType != "image/png" {
		t.Errorf("got name=%q mime=%q", att.Name, att.MIMEType)
	}

	if _, err := EncodeFile(context.Background(), filepath.Join(dir, "missing.png")); !errors.Is(err, domain.ErrEncoding) {
		t.Errorf("missing file: expected ErrEncoding, got %v", err)
	}
	if _, err := EncodeFile(context.Background(), dir); !errors.Is(err, domain.ErrEncoding) {
		t.Errorf("directory: expected ErrEncoding, got %v", err)
	}
}

func TestInspectImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 9, 16))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	info, err := InspectImage(buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Width != 9 || info.Height != 16 || info.Format != "png" {
		t.Errorf("got %+v", info)
	}

	if _, err := InspectImage(nil); err == nil {
		t.Error("expected error for empty data")
	}
	if _, err := InspectImage([]byte("garbage")); err == nil {
		t.Error("expected error for non-image data")
	}
}
