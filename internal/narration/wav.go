package narration

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Defaults for the raw PCM returned by the TTS model.
const (
	defaultSampleRate = 24000
	bitsPerSample     = 16
	channels          = 1
)

// WAVSink writes each utterance to Dir/<target>.wav, wrapping raw 16-bit PCM
// in a RIFF header. Audio that is already WAV is written unchanged.
type WAVSink struct {
	Dir string

	// Written receives the path of each file, for the CLI to report.
	Written func(path string)
}

func (s *WAVSink) Play(ctx context.Context, target string, audio Audio) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data := audio.Data
	if !strings.HasPrefix(strings.ToLower(audio.MIMEType), "audio/wav") {
		rate, err := sampleRate(audio.MIMEType)
		if err != nil {
			return err
		}
		data = WrapPCM(audio.Data, rate)
	}

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("create narration directory: %w", err)
	}
	path := filepath.Join(s.Dir, target+".wav")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("bytes", len(data)).Msg("Narration written")
	if s.Written != nil {
		s.Written(path)
	}
	return nil
}

// sampleRate reads the rate parameter of an "audio/L16;rate=24000" MIME type.
func sampleRate(mimeType string) (int, error) {
	if mimeType == "" {
		return defaultSampleRate, nil
	}
	mediaType, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return 0, fmt.Errorf("parse audio MIME type %q: %w", mimeType, err)
	}
	if !strings.EqualFold(mediaType, "audio/l16") && !strings.EqualFold(mediaType, "audio/pcm") {
		return 0, fmt.Errorf("unsupported audio format %q", mediaType)
	}
	raw, ok := params["rate"]
	if !ok {
		return defaultSampleRate, nil
	}
	rate, err := strconv.Atoi(raw)
	if err != nil || rate <= 0 {
		return 0, fmt.Errorf("invalid sample rate %q", raw)
	}
	return rate, nil
}

// WrapPCM prefixes mono 16-bit little-endian PCM with a 44-byte WAV header.
func WrapPCM(pcm []byte, rate int) []byte {
	blockAlign := channels * bitsPerSample / 8
	var b bytes.Buffer
	b.Grow(44 + len(pcm))
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+len(pcm)))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&b, binary.LittleEndian, uint16(channels))
	binary.Write(&b, binary.LittleEndian, uint32(rate))
	binary.Write(&b, binary.LittleEndian, uint32(rate*blockAlign))
	binary.Write(&b, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&b, binary.LittleEndian, uint16(bitsPerSample))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(len(pcm)))
	b.Write(pcm)
	return b.Bytes()
}
