// Package narration speaks script scenes aloud. A Player owns the single
// process-wide playback slot; starting a new utterance stops the previous one.
package narration

import (
	"strings"

	"github.com/fpang/idea-studio/internal/domain"
)

// Voice is a prebuilt TTS voice paired with the language code it is
// requested with.
type Voice struct {
	Name   string
	Locale string
}

// Voices is the catalogue offered to SelectVoice. The first entry is the
// default voice.
var Voices = []Voice{
	{Name: "Kore", Locale: "en-US"},
	{Name: "Puck", Locale: "en-US"},
	{Name: "Charon", Locale: "en-GB"},
	{Name: "Aoede", Locale: "en-AU"},
	{Name: "Leda", Locale: "en-IN"},
	{Name: "Orus", Locale: "hi-IN"},
	{Name: "Fenrir", Locale: "es-US"},
	{Name: "Zephyr", Locale: "fr-FR"},
}

// Text is what gets spoken for a scene: the visual description followed by
// the audio description.
func Text(scene domain.ScriptScene) string {
	return scene.VisualDescription + " " + scene.Audio
}

// SelectVoice picks the voice for preferredLocale: an exact locale match
// first, then the first voice of the same language, else voices[0]. ok is
// false only when voices is empty.
func SelectVoice(voices []Voice, preferredLocale string) (Voice, bool) {
	if len(voices) == 0 {
		return Voice{}, false
	}
	preferredLocale = strings.ReplaceAll(preferredLocale, "_", "-")
	for _, v := range voices {
		if strings.EqualFold(v.Locale, preferredLocale) {
			return v, true
		}
	}
	lang := language(preferredLocale)
	for _, v := range voices {
		if lang != "" && strings.EqualFold(language(v.Locale), lang) {
			return v, true
		}
	}
	return voices[0], true
}

func language(locale string) string {
	lang, _, _ := strings.Cut(locale, "-")
	return lang
}
