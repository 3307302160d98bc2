package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fpang/idea-studio/internal/s3util"
	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
)

// ErrCanceled is returned when the user dismisses the save dialog.
var ErrCanceled = errors.New("export canceled")

// ContentType is the MIME type of an exported script.
const ContentType = "text/plain; charset=utf-8"

// Destination stores an exported script and returns where it went (a file
// path or URL).
type Destination interface {
	Save(ctx context.Context, fileName string, content []byte) (string, error)
}

// LocalDestination writes scripts into Dir. With Dialog set, a native save
// dialog pre-filled with Dir/fileName chooses the final path.
type LocalDestination struct {
	Dir    string
	Dialog bool

	// saveDialog is swapped in tests.
	saveDialog func(defaultPath string) (string, error)
}

func NewLocalDestination(dir string, dialog bool) *LocalDestination {
	return &LocalDestination{Dir: dir, Dialog: dialog, saveDialog: zenitySave}
}

func zenitySave(defaultPath string) (string, error) {
	return zenity.SelectFileSave(
		zenity.Title("Save shooting script"),
		zenity.Filename(defaultPath),
		zenity.ConfirmOverwrite(),
		zenity.FileFilters{{Name: "Text files", Patterns: []string{"*.txt"}}},
	)
}

func (d *LocalDestination) Save(ctx context.Context, fileName string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target := filepath.Join(d.Dir, fileName)

	if d.Dialog && d.saveDialog != nil {
		chosen, err := d.saveDialog(target)
		if err != nil {
			if errors.Is(err, zenity.ErrCanceled) {
				return "", ErrCanceled
			}
			return "", fmt.Errorf("save dialog: %w", err)
		}
		target = chosen
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	if err := os.WriteFile(target, content, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	log.Info().Str("path", target).Int("bytes", len(content)).Msg("Script exported")
	return target, nil
}

// S3Destination uploads scripts under Prefix in Bucket and returns a presigned
// download URL valid for Expiry.
type S3Destination struct {
	Client    s3util.PutObjectAPI
	Presigner s3util.PresignAPI
	Bucket    string
	Prefix    string
	Expiry    time.Duration
}

// DefaultURLExpiry is used when S3Destination.Expiry is zero.
const DefaultURLExpiry = 24 * time.Hour

func (d *S3Destination) Save(ctx context.Context, fileName string, content []byte) (string, error) {
	key := path.Join(strings.Trim(d.Prefix, "/"), fileName)
	if err := s3util.UploadBytes(ctx, d.Client, d.Bucket, key, ContentType, content); err != nil {
		return "", err
	}
	expiry := d.Expiry
	if expiry == 0 {
		expiry = DefaultURLExpiry
	}
	url, err := s3util.GeneratePresignedURL(ctx, d.Presigner, d.Bucket, key, expiry)
	if err != nil {
		return "", err
	}
	log.Info().Str("bucket", d.Bucket).Str("key", key).Msg("Script exported to S3")
	return url, nil
}
