package prompt

import "google.golang.org/genai"

// Wire keys of the idea and scene objects, in the order the model is asked
// to emit them.
var (
	IdeaFields = []string{"conceptName", "format", "shortPlot", "visualAudioDirection", "hook"}

	SceneFields = []string{
		"scene", "shot", "cameraAngle", "cameraMovement",
		"visualDescription", "audio", "approxDuration",
	}

	FeedbackFields = []string{"strengths", "improvements"}
)

var (
	minScore = 1.0
	maxScore = 10.0
)

// stringObject builds an object schema whose fields are all required strings.
func stringObject(fields []string) *genai.Schema {
	props := make(map[string]*genai.Schema, len(fields))
	for _, f := range fields {
		props[f] = &genai.Schema{Type: genai.TypeString}
	}
	return &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       props,
		Required:         append([]string(nil), fields...),
		PropertyOrdering: append([]string(nil), fields...),
	}
}

// IdeaListSchema is an array of idea objects.
func IdeaListSchema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: stringObject(IdeaFields)}
}

// ScriptSchema is an ordered array of scene objects.
func ScriptSchema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: stringObject(SceneFields)}
}

// ScoresSchema turns an ordered criterion key list into a score object where
// every key is a required integer in [1,10].
func ScoresSchema(keys []string) *genai.Schema {
	props := make(map[string]*genai.Schema, len(keys))
	for _, k := range keys {
		props[k] = &genai.Schema{Type: genai.TypeInteger, Minimum: &minScore, Maximum: &maxScore}
	}
	return &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       props,
		Required:         append([]string(nil), keys...),
		PropertyOrdering: append([]string(nil), keys...),
	}
}

// AssessmentSchema wraps a score object with the feedback pair.
func AssessmentSchema(keys []string) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"scores":   ScoresSchema(keys),
			"feedback": stringObject(FeedbackFields),
		},
		Required:         []string{"scores", "feedback"},
		PropertyOrdering: []string{"scores", "feedback"},
	}
}
