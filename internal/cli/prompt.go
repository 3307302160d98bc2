package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/fpang/idea-studio/internal/media"
	"github.com/mattn/go-isatty"
	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
)

// ErrNoFileSelected is returned when the file picker is dismissed.
var ErrNoFileSelected = errors.New("no file selected")

// PromptForValue prompts the user interactively for a value. Returns def if
// the user enters nothing. A terminal gets a huh input; piped stdin is read
// line by line.
func PromptForValue(label, def string) string {
	if !isInteractive() {
		return promptFrom(os.Stdin, os.Stdout, label, def)
	}
	value, err := promptForm(label, def).run()
	if err != nil {
		if !errors.Is(err, huh.ErrUserAborted) {
			log.Warn().Err(err).Str("field", label).Msg("Prompt failed, using default")
		}
		return def
	}
	if value = strings.TrimSpace(value); value == "" {
		return def
	}
	return value
}

func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// inputForm is a single-field huh form bound to its own value.
type inputForm struct {
	form  *huh.Form
	value *string
}

func (f inputForm) run() (string, error) {
	if err := f.form.Run(); err != nil {
		return "", err
	}
	return *f.value, nil
}

func promptForm(label, def string) inputForm {
	value := new(string)
	input := huh.NewInput().
		Title(label).
		Value(value)
	if def != "" {
		input = input.Placeholder(def)
	}
	form := huh.NewForm(huh.NewGroup(input)).WithShowHelp(false)
	return inputForm{form: form, value: value}
}

func promptFrom(in io.Reader, out io.Writer, label, def string) string {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}

	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && input != "") {
		log.Warn().Err(err).Str("field", label).Msg("Failed to read input, using default")
		return def
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return def
	}
	return input
}

// PickAttachment opens a native file picker filtered to supported attachment
// types.
func PickAttachment(title string) (string, error) {
	path, err := zenity.SelectFile(
		zenity.Title(title),
		zenity.FileFilters{
			{Name: "Supported files", Patterns: AttachmentPatterns()},
		},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", ErrNoFileSelected
		}
		return "", fmt.Errorf("file picker failed: %w", err)
	}
	return path, nil
}

// AttachmentPatterns lists glob patterns for every supported attachment
// extension, sorted.
func AttachmentPatterns() []string {
	var patterns []string
	for _, table := range []map[string]string{
		media.SupportedImageExtensions,
		media.SupportedVideoExtensions,
		media.SupportedDocumentExtensions,
	} {
		for ext := range maps.Keys(table) {
			patterns = append(patterns, "*"+ext)
		}
	}
	slices.Sort(patterns)
	return patterns
}
