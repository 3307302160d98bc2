package studio

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/fpang/idea-studio/internal/domain"
	"github.com/fpang/idea-studio/internal/media"
	"github.com/fpang/idea-studio/internal/prompt"
)

// WorkField holds the subject of an assessment. Text and attachment are
// mutually exclusive: whichever was set last wins and clears the other.
type WorkField struct {
	text       string
	attachment *media.Attachment
}

// SetText sets pasted work and drops any attachment.
func (w *WorkField) SetText(text string) {
	w.text = text
	w.attachment = nil
}

// Attach sets an already-encoded file and drops any pasted text.
func (w *WorkField) Attach(att *media.Attachment) {
	w.attachment = att
	w.text = ""
}

// AttachFile encodes the file at path and attaches it. On failure the field
// keeps its previous content.
func (w *WorkField) AttachFile(ctx context.Context, path string) error {
	att, err := media.EncodeFile(ctx, path)
	if err != nil {
		return err
	}
	w.Attach(att)
	return nil
}

// Work returns the field as builder input.
func (w *WorkField) Work() prompt.Work {
	return prompt.Work{Text: w.text, Attachment: w.attachment}
}

func (w *WorkField) empty() bool {
	return w.attachment == nil && strings.TrimSpace(w.text) == ""
}

// AssessmentForm collects a media-work assessment.
type AssessmentForm struct {
	WorkField
	MediaType string
	Goal      string
}

// Validate reports missing required fields as domain.ErrInputValidation.
func (f *AssessmentForm) Validate() error {
	return requireFields(f.empty(), map[string]string{"media type": f.MediaType, "goal": f.Goal})
}

// Input converts the form into builder input.
func (f *AssessmentForm) Input() prompt.AssessmentInput {
	return prompt.AssessmentInput{Work: f.Work(), Goal: f.Goal, MediaType: f.MediaType}
}

// DesignForm collects a design-artifact assessment.
type DesignForm struct {
	WorkField
	Concept  string
	Audience string
	Goal     string
}

func (f *DesignForm) Validate() error {
	return requireFields(f.empty(), map[string]string{"concept": f.Concept, "audience": f.Audience, "goal": f.Goal})
}

func (f *DesignForm) Input() prompt.DesignInput {
	return prompt.DesignInput{Work: f.Work(), Concept: f.Concept, Audience: f.Audience, Goal: f.Goal}
}

func requireFields(workEmpty bool, fields map[string]string) error {
	var missing []string
	if workEmpty {
		missing = append(missing, "work")
	}
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if strings.TrimSpace(fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &FieldError{Missing: missing}
}

// FieldError lists the blank required fields of a form.
type FieldError struct {
	Missing []string
}

func (e *FieldError) Error() string {
	return domain.ErrInputValidation.Error() + ": missing " + strings.Join(e.Missing, ", ")
}

func (e *FieldError) Unwrap() error {
	return domain.ErrInputValidation
}
