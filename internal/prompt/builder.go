// Package prompt builds the exact request payloads sent to the AI service:
// prompt text, expected response schema and inline attachments.
//
// Every builder is pure. Prompt text comes from embedded templates; response
// schemas are generated from the same field and criterion key lists that the
// result package validates against.
package prompt

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fpang/idea-studio/internal/domain"
	"github.com/fpang/idea-studio/internal/media"
	"github.com/fpang/idea-studio/internal/rubric"
	"google.golang.org/genai"
)

// Operation names a kind of AI request.
type Operation string

const (
	OpIdeas            Operation = "ideas"
	OpImage            Operation = "image"
	OpScript           Operation = "script"
	OpAssessment       Operation = "assessment"
	OpDesignAssessment Operation = "design-assessment"
)

// Image request defaults.
const (
	ImageCount          = 1
	ImageOutputMIMEType = "image/jpeg"
	ImageAspectRatio    = "9:16"
)

// IdeasRequested is the number of ideas the prompt asks for. The count is
// advisory; the parser accepts any non-empty list.
const IdeasRequested = 3

// Request is a structured-generation request.
type Request struct {
	Operation         Operation
	SystemInstruction string
	Prompt            string
	Schema            *genai.Schema
	Attachments       []*media.Attachment
	// ScoreKeys is the exact score key set an assessment response must carry.
	// Empty for non-assessment requests.
	ScoreKeys []string
}

// ImageRequest asks the image model for generated images.
type ImageRequest struct {
	Prompt         string
	Count          int
	OutputMIMEType string
	AspectRatio    string
}

// IdeaInput is the brief for idea generation. Duration is optional.
type IdeaInput struct {
	Topic    string
	Audience string
	Goal     string
	Duration string
}

// Work is the subject of an assessment: either pasted text or an attached
// file. When Attachment is set the text is never sent.
type Work struct {
	Text       string
	Attachment *media.Attachment
}

// AssessmentInput describes a media-work assessment.
type AssessmentInput struct {
	Work      Work
	Goal      string
	MediaType string
}

// DesignInput describes a design-artifact assessment.
type DesignInput struct {
	Work     Work
	Concept  string
	Audience string
	Goal     string
}

// BuildIdeaRequest builds the idea-generation request.
func BuildIdeaRequest(in IdeaInput) (*Request, error) {
	if err := required(map[string]string{"topic": in.Topic, "audience": in.Audience, "goal": in.Goal}); err != nil {
		return nil, err
	}
	text, err := render(ideasTmpl, struct {
		IdeaInput
		Count int
	}{in, IdeasRequested})
	if err != nil {
		return nil, err
	}
	return &Request{
		Operation:         OpIdeas,
		SystemInstruction: SystemInstruction,
		Prompt:            text,
		Schema:            IdeaListSchema(),
	}, nil
}

// BuildImageRequest builds a single portrait image request for an idea.
func BuildImageRequest(idea *domain.Idea) (*ImageRequest, error) {
	if idea == nil || (strings.TrimSpace(idea.VisualAudioDirection) == "" && strings.TrimSpace(idea.ShortPlot) == "") {
		return nil, fmt.Errorf("%w: idea has no visual direction or plot", domain.ErrInputValidation)
	}
	text, err := render(imageTmpl, idea)
	if err != nil {
		return nil, err
	}
	return &ImageRequest{
		Prompt:         text,
		Count:          ImageCount,
		OutputMIMEType: ImageOutputMIMEType,
		AspectRatio:    ImageAspectRatio,
	}, nil
}

// BuildScriptRequest builds the shooting-script request for an idea.
func BuildScriptRequest(idea *domain.Idea) (*Request, error) {
	if idea == nil {
		return nil, fmt.Errorf("%w: no idea", domain.ErrInputValidation)
	}
	if err := required(map[string]string{"conceptName": idea.ConceptName, "shortPlot": idea.ShortPlot}); err != nil {
		return nil, err
	}
	text, err := render(scriptTmpl, idea)
	if err != nil {
		return nil, err
	}
	return &Request{
		Operation:         OpScript,
		SystemInstruction: SystemInstruction,
		Prompt:            text,
		Schema:            ScriptSchema(),
	}, nil
}

type assessmentView struct {
	Title          string
	Role           string
	Context        []string
	WorkText       string
	AttachmentName string
	AttachmentKind string
	Criteria       []domain.RubricCriterion
}

// BuildAssessmentRequest builds a media-work assessment whose score schema is
// generated from the rubric of in.MediaType.
func BuildAssessmentRequest(in AssessmentInput) (*Request, error) {
	if err := requireWork(in.Work); err != nil {
		return nil, err
	}
	if err := required(map[string]string{"goal": in.Goal}); err != nil {
		return nil, err
	}

	criteria := rubric.CriteriaFor(in.MediaType)
	keys := rubric.Keys(in.MediaType)

	view := assessmentView{
		Title:    "Media Work Assessment",
		Role:     "critic and producer of " + mediaTypeLabel(in.MediaType),
		Context:  []string{"Media type: " + mediaTypeLabel(in.MediaType), "Creator's goal: " + in.Goal},
		Criteria: criteria,
	}
	setWork(&view, in.Work)

	return assessmentRequest(OpAssessment, view, keys, in.Work)
}

// BuildDesignAssessmentRequest builds a design assessment with the fixed
// five-criterion score schema.
func BuildDesignAssessmentRequest(in DesignInput) (*Request, error) {
	if err := requireWork(in.Work); err != nil {
		return nil, err
	}
	if err := required(map[string]string{"concept": in.Concept, "audience": in.Audience, "goal": in.Goal}); err != nil {
		return nil, err
	}

	view := assessmentView{
		Title: "Design Assessment",
		Role:  "product and visual designer",
		Context: []string{
			"Design concept: " + in.Concept,
			"Target audience: " + in.Audience,
			"Design goal: " + in.Goal,
		},
		Criteria: rubric.DesignCriteria(),
	}
	setWork(&view, in.Work)

	return assessmentRequest(OpDesignAssessment, view, rubric.DesignKeys(), in.Work)
}

func assessmentRequest(op Operation, view assessmentView, keys []string, work Work) (*Request, error) {
	text, err := render(assessmentTmpl, view)
	if err != nil {
		return nil, err
	}
	req := &Request{
		Operation:         op,
		SystemInstruction: SystemInstruction,
		Prompt:            text,
		Schema:            AssessmentSchema(keys),
		ScoreKeys:         keys,
	}
	if work.Attachment != nil {
		req.Attachments = []*media.Attachment{work.Attachment}
	}
	return req, nil
}

// setWork renders either the attachment placeholder or the pasted text,
// never both.
func setWork(view *assessmentView, work Work) {
	if work.Attachment != nil {
		name := work.Attachment.Name
		if name == "" {
			name = work.Attachment.MIMEType
		}
		view.AttachmentName = name
		view.AttachmentKind = work.Attachment.Kind()
		view.Context = append(view.Context, work.Attachment.Capture.Lines()...)
		return
	}
	view.WorkText = strings.TrimSpace(work.Text)
}

func requireWork(w Work) error {
	if w.Attachment == nil && strings.TrimSpace(w.Text) == "" {
		return fmt.Errorf("%w: work requires text or an attached file", domain.ErrInputValidation)
	}
	return nil
}

// required checks that every named field is non-blank.
func required(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("%w: missing %s", domain.ErrInputValidation, strings.Join(missing, ", "))
}

func mediaTypeLabel(mediaType string) string {
	if !rubric.IsKnown(mediaType) {
		return "general creative work"
	}
	return strings.ReplaceAll(mediaType, "-", " ")
}
