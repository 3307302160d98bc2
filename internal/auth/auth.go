// Package auth resolves and validates the Gemini API key.
package auth

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// DefaultSSMParam is used when SSM_API_KEY_PARAM is unset.
const DefaultSSMParam = "/idea-studio/gemini-api-key"

// ParameterGetter is the subset of *ssm.Client used to read the key.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// GetAPIKey retrieves the Gemini API key from available sources.
// Priority order:
//  1. GEMINI_API_KEY environment variable
//  2. SSM Parameter Store at paramName (SecureString, decrypted), when ssmClient is non-nil
func GetAPIKey(ctx context.Context, ssmClient ParameterGetter, paramName string) (string, error) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		log.Debug().Msg("Using API key from environment variable")
		return key, nil
	}

	if ssmClient == nil {
		return "", &ValidationError{Type: ErrTypeNoKey, Message: "API key not found. Set GEMINI_API_KEY or SSM_API_KEY_PARAM"}
	}

	key, err := getFromSSM(ctx, ssmClient, paramName)
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve API key")
		return "", &ValidationError{Type: ErrTypeNoKey, Message: "API key not found. Set GEMINI_API_KEY or SSM_API_KEY_PARAM", Err: err}
	}
	log.Debug().Str("param", paramName).Msg("Using API key from SSM Parameter Store")
	return key, nil
}

func getFromSSM(ctx context.Context, ssmClient ParameterGetter, paramName string) (string, error) {
	if paramName == "" {
		paramName = DefaultSSMParam
	}
	start := time.Now()
	out, err := ssmClient.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("read SSM parameter %s: %w", paramName, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("SSM parameter %s has no value", paramName)
	}
	key := strings.TrimSpace(*out.Parameter.Value)
	if key == "" {
		return "", fmt.Errorf("SSM parameter %s is empty", paramName)
	}
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(start)).Msg("Gemini API key loaded from SSM")
	return key, nil
}
