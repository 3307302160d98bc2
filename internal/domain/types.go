// Package domain holds the records produced by the studio's generation and
// assessment flows, plus the error kinds shared by every layer.
package domain

import (
	"encoding/base64"
	"fmt"
)

// Idea is one proposed short-video concept.
//
// ID is assigned locally when the batch is created and is the only identity
// used to target later image/script operations. ImageURL and Script are
// filled in by those operations and replaced (never appended) on regeneration.
type Idea struct {
	ID                   string        `json:"id"`
	ConceptName          string        `json:"conceptName"`
	Format               string        `json:"format"`
	ShortPlot            string        `json:"shortPlot"`
	VisualAudioDirection string        `json:"visualAudioDirection"`
	Hook                 string        `json:"hook"`
	ImageURL             string        `json:"imageUrl,omitempty"`
	Script               []ScriptScene `json:"script,omitempty"`
}

// HasScript reports whether a script has been generated for the idea.
func (i *Idea) HasScript() bool {
	return len(i.Script) > 0
}

// Clone returns a deep copy so callers cannot mutate studio state.
func (i Idea) Clone() Idea {
	if i.Script != nil {
		scenes := make([]ScriptScene, len(i.Script))
		copy(scenes, i.Script)
		i.Script = scenes
	}
	return i
}

// ScriptScene is one shot of a shooting script. Order within a script is the
// playback and rendering order.
type ScriptScene struct {
	Scene             string `json:"scene"`
	Shot              string `json:"shot"`
	CameraAngle       string `json:"cameraAngle"`
	CameraMovement    string `json:"cameraMovement"`
	VisualDescription string `json:"visualDescription"`
	Audio             string `json:"audio"`
	ApproxDuration    string `json:"approxDuration"`
}

// Feedback is the qualitative half of an assessment.
type Feedback struct {
	Strengths    string `json:"strengths"`
	Improvements string `json:"improvements"`
}

// AssessmentResult scores a media work against the rubric of its media type.
// The key set of Scores equals the rubric's key set.
type AssessmentResult struct {
	MediaType string         `json:"mediaType"`
	Scores    map[string]int `json:"scores"`
	Feedback  Feedback       `json:"feedback"`
}

// DesignScores is the fixed five-criterion score block of a design assessment.
type DesignScores struct {
	VisualAppeal      int `json:"visualAppeal"`
	UsabilityClarity  int `json:"usabilityClarity"`
	Originality       int `json:"originality"`
	DesignComposition int `json:"designComposition"`
	AlignmentWithGoal int `json:"alignmentWithGoal"`
}

// Values returns the scores keyed by their wire names.
func (d DesignScores) Values() map[string]int {
	return map[string]int{
		"visualAppeal":      d.VisualAppeal,
		"usabilityClarity":  d.UsabilityClarity,
		"originality":       d.Originality,
		"designComposition": d.DesignComposition,
		"alignmentWithGoal": d.AlignmentWithGoal,
	}
}

// DesignAssessmentResult is the fixed-schema assessment of a design artifact.
type DesignAssessmentResult struct {
	Scores   DesignScores `json:"scores"`
	Feedback Feedback     `json:"feedback"`
}

// RubricCriterion is one scoring criterion. Key is the machine identifier used
// in schemas and validation; Label is the description embedded in prompts.
type RubricCriterion struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// GeneratedImage is a decoded image returned by the image model.
type GeneratedImage struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
}

// DataURL renders the image as an inline data URL suitable for Idea.ImageURL.
func (g *GeneratedImage) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", g.MIMEType, base64.StdEncoding.EncodeToString(g.Data))
}

// Portrait reports whether the image is taller than it is wide.
func (g *GeneratedImage) Portrait() bool {
	return g.Height > g.Width
}

// User is the identity captured by the login form.
type User struct {
	Name  string `json:"user"`
	Email string `json:"email"`
}
