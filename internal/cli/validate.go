package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fpang/idea-studio/internal/auth"
	"github.com/fpang/idea-studio/internal/domain"
	"github.com/rs/zerolog/log"
)

// ValidateAndResolveFile checks that the path exists and is a regular file,
// then returns the absolute path.
func ValidateAndResolveFile(filePath string) (string, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: file not found: %s", domain.ErrEncoding, filePath)
		}
		return "", fmt.Errorf("%w: failed to access %s: %w", domain.ErrEncoding, filePath, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", domain.ErrEncoding, filePath)
	}

	if absPath, err := filepath.Abs(filePath); err == nil {
		filePath = absPath
	}
	return filePath, nil
}

// HandleValidationError processes auth.ValidationError and exits with appropriate messaging.
func HandleValidationError(err error) {
	var validationErr *auth.ValidationError
	if errors.As(err, &validationErr) {
		switch validationErr.Type {
		case auth.ErrTypeNoKey:
			log.Fatal().Msg("No API key configured. Set GEMINI_API_KEY or store it in SSM (SSM_API_KEY_PARAM)")
		case auth.ErrTypeInvalidKey:
			log.Fatal().Err(err).Msg("Invalid API key. Please check your API key and try again")
		case auth.ErrTypeNetworkError:
			log.Fatal().Err(err).Msg("Network error. Please check your internet connection")
		case auth.ErrTypeQuotaExceeded:
			log.Fatal().Err(err).Msg("API quota exceeded. Please try again later or check your usage limits")
		default:
			log.Fatal().Err(err).Msg("API key validation failed")
		}
	} else {
		log.Fatal().Err(err).Msg("unexpected error during API key validation")
	}
	os.Exit(1)
}

// IsValidationError reports whether err came from API key resolution or
// validation.
func IsValidationError(err error) bool {
	var validationErr *auth.ValidationError
	return errors.As(err, &validationErr)
}
