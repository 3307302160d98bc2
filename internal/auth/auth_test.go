package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeSSM struct {
	value *string
	err   error
	name  string
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.name = aws.ToString(in.Name)
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: f.value}}, nil
}

func TestGetAPIKeyFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-api-key-12345")

	key, err := GetAPIKey(context.Background(), &fakeSSM{err: errors.New("must not be called")}, "")
	require.NoError(t, err)
	assert.Equal(t, "test-api-key-12345", key)
}

func TestGetAPIKeyFromSSM(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	fake := &fakeSSM{value: aws.String("  ssm-key \n")}

	key, err := GetAPIKey(context.Background(), fake, "")
	require.NoError(t, err)
	assert.Equal(t, "ssm-key", key)
	assert.Equal(t, DefaultSSMParam, fake.name)

	_, err = GetAPIKey(context.Background(), fake, "/custom/param")
	require.NoError(t, err)
	assert.Equal(t, "/custom/param", fake.name)
}

func TestGetAPIKeyNoSource(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := GetAPIKey(context.Background(), nil, "")
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, ErrTypeNoKey, valErr.Type)

	_, err = GetAPIKey(context.Background(), &fakeSSM{err: errors.New("access denied")}, "")
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, ErrTypeNoKey, valErr.Type)

	_, err = GetAPIKey(context.Background(), &fakeSSM{value: aws.String("")}, "")
	assert.Error(t, err)
}

type fakeModels struct {
	resp *genai.GenerateContentResponse
	err  error
}

func (f *fakeModels) GenerateContent(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return f.resp, f.err
}

func (f *fakeModels) GenerateImages(context.Context, string, string, *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	return nil, errors.New("unused")
}

func TestValidateAPIKey(t *testing.T) {
	ok := &fakeModels{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}}
	assert.NoError(t, ValidateAPIKey(context.Background(), ok, "m"))

	empty := &fakeModels{resp: &genai.GenerateContentResponse{}}
	var valErr *ValidationError
	require.ErrorAs(t, ValidateAPIKey(context.Background(), empty, "m"), &valErr)
	assert.Equal(t, ErrTypeUnknown, valErr.Type)

	quota := &fakeModels{err: errors.New("RESOURCE EXHAUSTED: quota")}
	require.ErrorAs(t, ValidateAPIKey(context.Background(), quota, "m"), &valErr)
	assert.Equal(t, ErrTypeQuotaExceeded, valErr.Type)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		msg  string
		want ValidationErrorType
	}{
		{"API key not valid. Please pass a valid API key.", ErrTypeInvalidKey},
		{"permission denied", ErrTypeInvalidKey},
		{"rate limit reached", ErrTypeQuotaExceeded},
		{"dial tcp: no such host", ErrTypeNetworkError},
		{"context deadline exceeded (timeout)", ErrTypeNetworkError},
		{"something odd", ErrTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			got := classifyError(errors.New(tt.msg))
			assert.Equal(t, tt.want, got.Type)
			assert.ErrorContains(t, got, tt.msg)
		})
	}
	assert.Nil(t, classifyError(nil))
}

func TestValidationErrorTypeString(t *testing.T) {
	assert.Equal(t, "invalid", ErrTypeInvalidKey.String())
	assert.Equal(t, "quota", ErrTypeQuotaExceeded.String())
	assert.Equal(t, "unknown", ErrTypeUnknown.String())
}
