// Package chat is the boundary to the Gemini API. It turns built requests into
// genai calls and returns raw response text or bytes; decoding and validation
// belong to the result package.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/fpang/idea-studio/internal/domain"
	"github.com/fpang/idea-studio/internal/prompt"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Models is the subset of *genai.Models used by Client.
type Models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Options selects the models used for each kind of call. Empty fields fall
// back to the Get*ModelName defaults.
type Options struct {
	TextModel  string
	ImageModel string
	TTSModel   string
}

// Client issues structured, image and speech calls against Gemini.
type Client struct {
	models     Models
	textModel  string
	imageModel string
	ttsModel   string
}

// NewGeminiClient creates a genai client for the Gemini Developer API.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// NewClient wraps models (normally genaiClient.Models).
func NewClient(models Models, opts Options) *Client {
	c := &Client{
		models:     models,
		textModel:  opts.TextModel,
		imageModel: opts.ImageModel,
		ttsModel:   opts.TTSModel,
	}
	if c.textModel == "" {
		c.textModel = GetModelName()
	}
	if c.imageModel == "" {
		c.imageModel = GetImageModelName()
	}
	if c.ttsModel == "" {
		c.ttsModel = GetTTSModelName()
	}
	return c
}

// TextModel returns the model used for structured generation.
func (c *Client) TextModel() string { return c.textModel }

// GenerateStructured sends req as a schema-constrained JSON request and returns
// the raw response text.
func (c *Client) GenerateStructured(ctx context.Context, req *prompt.Request) (string, error) {
	parts, err := requestParts(req)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemInstruction}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	log.Debug().
		Str("operation", string(req.Operation)).
		Str("model", c.textModel).
		Int("prompt_length", len(req.Prompt)).
		Int("attachment_count", len(req.Attachments)).
		Msg("Starting Gemini API call")

	callStart := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.textModel, contents, config)
	duration := time.Since(callStart)
	if err != nil {
		log.Error().Err(err).Str("operation", string(req.Operation)).Dur("duration", duration).Msg("Gemini API call failed")
		return "", fmt.Errorf("%w: %s: %w", domain.ErrServiceCall, req.Operation, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: %s: empty response", domain.ErrServiceCall, req.Operation)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: %s: response has no text", domain.ErrServiceCall, req.Operation)
	}

	log.Debug().
		Str("operation", string(req.Operation)).
		Int("response_length", len(text)).
		Dur("duration", duration).
		Msg("Gemini API response received")
	return text, nil
}

// GenerateImage requests a single image and returns its bytes and MIME type.
func (c *Client) GenerateImage(ctx context.Context, req *prompt.ImageRequest) ([]byte, string, error) {
	config := &genai.GenerateImagesConfig{
		NumberOfImages: int32(req.Count),
		OutputMIMEType: req.OutputMIMEType,
		AspectRatio:    req.AspectRatio,
	}

	log.Debug().
		Str("model", c.imageModel).
		Str("prompt", truncateString(req.Prompt, 100)).
		Str("aspect_ratio", req.AspectRatio).
		Msg("Starting image generation")

	callStart := time.Now()
	resp, err := c.models.GenerateImages(ctx, c.imageModel, req.Prompt, config)
	duration := time.Since(callStart)
	if err != nil {
		log.Error().Err(err).Dur("duration", duration).Msg("Image generation failed")
		return nil, "", fmt.Errorf("%w: image: %w", domain.ErrServiceCall, err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, "", fmt.Errorf("%w: image: no image returned", domain.ErrServiceCall)
	}

	img := resp.GeneratedImages[0].Image
	if len(img.ImageBytes) == 0 {
		return nil, "", fmt.Errorf("%w: image: empty image bytes", domain.ErrServiceCall)
	}
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = req.OutputMIMEType
	}

	log.Info().
		Int("image_bytes", len(img.ImageBytes)).
		Str("mime_type", mimeType).
		Dur("duration", duration).
		Msg("Image generated")
	return img.ImageBytes, mimeType, nil
}

// Synthesize renders text as speech with a prebuilt voice and returns the raw
// audio and its MIME type (PCM, e.g. "audio/L16;codec=pcm;rate=24000").
func (c *Client) Synthesize(ctx context.Context, text, languageCode, voiceName string) ([]byte, string, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			LanguageCode: languageCode,
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voiceName},
			},
		},
	}
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: text}}}}

	resp, err := c.models.GenerateContent(ctx, c.ttsModel, contents, config)
	if err != nil {
		return nil, "", fmt.Errorf("%w: speech: %w", domain.ErrServiceCall, err)
	}
	blob := firstInlineData(resp)
	if blob == nil {
		return nil, "", fmt.Errorf("%w: speech: no audio returned", domain.ErrServiceCall)
	}

	log.Debug().
		Str("voice", voiceName).
		Str("language", languageCode).
		Int("audio_bytes", len(blob.Data)).
		Msg("Speech synthesised")
	return blob.Data, blob.MIMEType, nil
}

// requestParts places attachments before the text prompt.
func requestParts(req *prompt.Request) ([]*genai.Part, error) {
	parts := make([]*genai.Part, 0, len(req.Attachments)+1)
	for _, att := range req.Attachments {
		data, err := att.Bytes()
		if err != nil {
			return nil, err
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: att.MIMEType, Data: data},
		})
	}
	parts = append(parts, &genai.Part{Text: req.Prompt})
	return parts, nil
}

func firstInlineData(resp *genai.GenerateContentResponse) *genai.Blob {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData
			}
		}
	}
	return nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
