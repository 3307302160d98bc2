package chat

import "os"

// Gemini Model IDs
//
// | Model Name                  | API Model ID                  | Use Case                      |
// |-----------------------------|-------------------------------|-------------------------------|
// | Gemini 3 Flash (Preview)    | gemini-3-flash-preview        | Ideas, scripts, assessments   |
// | Gemini 2.5 Flash            | gemini-2.5-flash              | Stable fallback               |
// | Imagen 4                    | imagen-4.0-generate-001       | Concept image generation      |
// | Gemini 2.5 Flash TTS        | gemini-2.5-flash-preview-tts  | Scene narration               |
const (
	// ModelGemini3FlashPreview is best for speed + intelligence.
	ModelGemini3FlashPreview = "gemini-3-flash-preview"

	// ModelGemini25Flash is stable, balanced performance.
	ModelGemini25Flash = "gemini-2.5-flash"

	// ModelImagen4 generates images from text prompts.
	ModelImagen4 = "imagen-4.0-generate-001"

	// ModelGemini25FlashTTS synthesises speech.
	ModelGemini25FlashTTS = "gemini-2.5-flash-preview-tts"
)

// Defaults, overridable via GEMINI_MODEL, GEMINI_IMAGE_MODEL and GEMINI_TTS_MODEL.
const (
	DefaultModelName      = ModelGemini3FlashPreview
	DefaultImageModelName = ModelImagen4
	DefaultTTSModelName   = ModelGemini25FlashTTS
)

// GetModelName returns the text model used for structured generation.
func GetModelName() string {
	return envOr("GEMINI_MODEL", DefaultModelName)
}

// GetImageModelName returns the model used for concept images.
func GetImageModelName() string {
	return envOr("GEMINI_IMAGE_MODEL", DefaultImageModelName)
}

// GetTTSModelName returns the model used for narration.
func GetTTSModelName() string {
	return envOr("GEMINI_TTS_MODEL", DefaultTTSModelName)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
