// Package jsonutil provides utilities for extracting and parsing JSON from
// LLM responses that may be wrapped in markdown code fences or embedded in prose.
//
// Every failure wraps domain.ErrMalformedPayload: if these helpers fail, the
// response was not structured data at all.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fpang/idea-studio/internal/domain"
)

// StripMarkdownFences removes ```json ... ``` or ``` ... ``` wrapping from text.
// Returns the content between the fences, or the original text if no fences are found.
func StripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}

	endIdx := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			endIdx = i
			break
		}
	}

	return strings.Join(lines[1:endIdx], "\n")
}

// ExtractJSON finds and returns the JSON content (object or array) from text
// that may contain surrounding non-JSON content.
// It finds the first { or [ and matches it with the last corresponding } or ].
func ExtractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)

	objIdx := strings.Index(text, "{")
	arrIdx := strings.Index(text, "[")

	if objIdx == -1 && arrIdx == -1 {
		return "", fmt.Errorf("%w: no JSON content found", domain.ErrMalformedPayload)
	}

	var startIdx int
	var endChar string
	if arrIdx == -1 || (objIdx != -1 && objIdx <= arrIdx) {
		startIdx = objIdx
		endChar = "}"
	} else {
		startIdx = arrIdx
		endChar = "]"
	}

	text = text[startIdx:]
	endIdx := strings.LastIndex(text, endChar)
	if endIdx == -1 {
		return "", fmt.Errorf("%w: no closing %s found", domain.ErrMalformedPayload, endChar)
	}

	return text[:endIdx+1], nil
}

// Clean strips fences and surrounding prose and returns the bare JSON text.
func Clean(raw string) (string, error) {
	jsonStr, err := ExtractJSON(StripMarkdownFences(raw))
	if err != nil {
		return "", fmt.Errorf("%w (raw length: %d)", err, len(raw))
	}
	if !json.Valid([]byte(jsonStr)) {
		return "", fmt.Errorf("%w: invalid JSON (text: %s)", domain.ErrMalformedPayload, preview(jsonStr))
	}
	return jsonStr, nil
}

// ParseJSON strips markdown fences from raw LLM response text, extracts JSON
// content (object or array), and unmarshals it into the provided type T.
func ParseJSON[T any](raw string) (T, error) {
	var zero T
	jsonStr, err := Clean(raw)
	if err != nil {
		return zero, err
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("%w: %v (text: %s)", domain.ErrMalformedPayload, err, preview(jsonStr))
	}
	return result, nil
}

// DecodeStrict unmarshals data into T, rejecting unknown object keys. The
// returned error is the raw decoder error; callers decide its kind.
func DecodeStrict[T any](data []byte) (T, error) {
	var result T
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&result); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// preview truncates text for inclusion in error messages.
func preview(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
