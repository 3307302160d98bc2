// Package export renders shooting scripts as plain text and delivers them to a
// destination (local file or S3 object).
package export

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/fpang/idea-studio/internal/domain"
)

// ErrMalformedScript is returned by ParseScript for text RenderScript could
// not have produced.
var ErrMalformedScript = errors.New("malformed script text")

const (
	headerPrefix = "Shooting Script: "
	scenePrefix  = "Scene "
	shotSep      = " / Shot "
	continuation = "  "
)

// sceneFields lists the labelled lines of a scene block in render order.
var sceneFields = []struct {
	label string
	get   func(*domain.ScriptScene) *string
}{
	{"Camera Angle: ", func(s *domain.ScriptScene) *string { return &s.CameraAngle }},
	{"Camera Movement: ", func(s *domain.ScriptScene) *string { return &s.CameraMovement }},
	{"Description: ", func(s *domain.ScriptScene) *string { return &s.VisualDescription }},
	{"Sound: ", func(s *domain.ScriptScene) *string { return &s.Audio }},
	{"Duration: ", func(s *domain.ScriptScene) *string { return &s.ApproxDuration }},
}

// shotEscaper escapes "/" in shot labels so the last " / Shot " of a scene
// header is always the separator.
var (
	shotEscaper   = strings.NewReplacer(`\`, `\\`, `/`, `\/`)
	shotUnescaper = strings.NewReplacer(`\\`, `\`, `\/`, `/`)
)

// RenderScript renders scenes in order under a concept header. Line breaks
// inside a field value become continuation lines indented by two spaces.
// Slashes and backslashes in shot labels are written backslash-escaped.
func RenderScript(conceptName string, scenes []domain.ScriptScene) string {
	var b strings.Builder
	b.WriteString(headerPrefix)
	writeValue(&b, conceptName)
	b.WriteString("\n")

	for i := range scenes {
		s := &scenes[i]
		b.WriteString("\n")
		b.WriteString(scenePrefix)
		writeValue(&b, s.Scene+shotSep+shotEscaper.Replace(s.Shot))
		b.WriteString("\n")
		for _, f := range sceneFields {
			b.WriteString(f.label)
			writeValue(&b, *f.get(s))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeValue(b *strings.Builder, v string) {
	b.WriteString(strings.ReplaceAll(v, "\n", "\n"+continuation))
}

// ParseScript reads text produced by RenderScript back into the concept name
// and scenes.
func ParseScript(text string) (string, []domain.ScriptScene, error) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) == 0 || !strings.HasPrefix(lines[0], headerPrefix) {
		return "", nil, fmt.Errorf("%w: missing %q header", ErrMalformedScript, strings.TrimSpace(headerPrefix))
	}

	i := 0
	concept := readValue(lines, &i, strings.TrimPrefix(lines[0], headerPrefix))

	var scenes []domain.ScriptScene
	for i < len(lines) {
		if lines[i] != "" {
			return "", nil, fmt.Errorf("%w: line %d: expected blank line before scene", ErrMalformedScript, i+1)
		}
		i++
		if i >= len(lines) {
			break
		}

		rest, ok := strings.CutPrefix(lines[i], scenePrefix)
		if !ok {
			return "", nil, fmt.Errorf("%w: line %d: expected scene header", ErrMalformedScript, i+1)
		}
		headerLine := i + 1
		header := readValue(lines, &i, rest)
		sep := strings.LastIndex(header, shotSep)
		if sep < 0 {
			return "", nil, fmt.Errorf("%w: line %d: missing shot", ErrMalformedScript, headerLine)
		}
		scene := header[:sep]
		shot := shotUnescaper.Replace(header[sep+len(shotSep):])
		s := domain.ScriptScene{Scene: scene, Shot: shot}

		for _, f := range sceneFields {
			if i >= len(lines) {
				return "", nil, fmt.Errorf("%w: scene %s/%s truncated", ErrMalformedScript, scene, shot)
			}
			first, ok := strings.CutPrefix(lines[i], f.label)
			if !ok {
				return "", nil, fmt.Errorf("%w: line %d: expected %q", ErrMalformedScript, i+1, strings.TrimSpace(f.label))
			}
			*f.get(&s) = readValue(lines, &i, first)
		}
		scenes = append(scenes, s)
	}
	return concept, scenes, nil
}

// readValue consumes the continuation lines following lines[*i] and leaves
// *i on the next unconsumed line.
func readValue(lines []string, i *int, first string) string {
	parts := []string{first}
	*i++
	for *i < len(lines) && strings.HasPrefix(lines[*i], continuation) {
		parts = append(parts, strings.TrimPrefix(lines[*i], continuation))
		*i++
	}
	return strings.Join(parts, "\n")
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	pathSeparator = regexp.MustCompile(`[/\\]`)
)

// FileName derives the export file name from a concept name: lowercased,
// whitespace runs replaced by "_", suffixed "_script.txt".
func FileName(conceptName string) string {
	name := whitespaceRun.ReplaceAllString(strings.ToLower(conceptName), "_")
	name = pathSeparator.ReplaceAllString(name, "-")
	return name + "_script.txt"
}
