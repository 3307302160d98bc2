package result

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/fpang/idea-studio/internal/domain"
	"github.com/fpang/idea-studio/internal/rubric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ideaJSON = `{"conceptName":"%s","format":"POV","shortPlot":"plot","visualAudioDirection":"warm","hook":"look"}`

func ideaList(names ...string) string {
	items := make([]string, len(names))
	for i, n := range names {
		items[i] = fmt.Sprintf(ideaJSON, n)
	}
	return "[" + strings.Join(items, ",") + "]"
}

func TestParseIdeas(t *testing.T) {
	ideas, err := ParseIdeas("```json\n" + ideaList("A", "B", "C") + "\n```")
	require.NoError(t, err)
	require.Len(t, ideas, 3)

	seen := map[string]bool{}
	for i, idea := range ideas {
		assert.NotEmpty(t, idea.ID)
		assert.False(t, seen[idea.ID], "duplicate id %s", idea.ID)
		seen[idea.ID] = true
		assert.Equal(t, string(rune('A'+i)), idea.ConceptName)
		assert.Empty(t, idea.ImageURL)
		assert.False(t, idea.HasScript())
	}
}

func TestParseIdeas_IDsUniqueAcrossBatches(t *testing.T) {
	first, err := ParseIdeas(ideaList("A", "B"))
	require.NoError(t, err)
	second, err := ParseIdeas(ideaList("A", "B"))
	require.NoError(t, err)

	for _, a := range first {
		for _, b := range second {
			assert.NotEqual(t, a.ID, b.ID)
		}
	}
}

func TestParseIdeas_AcceptsAnyNonEmptyCount(t *testing.T) {
	ideas, err := ParseIdeas(ideaList("only"))
	require.NoError(t, err)
	assert.Len(t, ideas, 1)
}

func TestParseIdeas_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"prose", "I cannot help with that", domain.ErrMalformedPayload},
		{"truncated", `[{"conceptName":"A"`, domain.ErrMalformedPayload},
		{"object not array", `{"conceptName":"A"}`, domain.ErrSchemaViolation},
		{"empty list", `[]`, domain.ErrSchemaViolation},
		{"missing hook", `[{"conceptName":"A","format":"f","shortPlot":"p","visualAudioDirection":"v"}]`, domain.ErrSchemaViolation},
		{"blank field", `[{"conceptName":" ","format":"f","shortPlot":"p","visualAudioDirection":"v","hook":"h"}]`, domain.ErrSchemaViolation},
		{"wrong type", `[{"conceptName":1,"format":"f","shortPlot":"p","visualAudioDirection":"v","hook":"h"}]`, domain.ErrSchemaViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ideas, err := ParseIdeas(tt.raw)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, ideas)
		})
	}
}

func TestParseScript(t *testing.T) {
	raw := `[
	  {"scene":"1","shot":"1","cameraAngle":"wide","cameraMovement":"static","visualDescription":"cafe","audio":"birds","approxDuration":"3s"},
	  {"scene":"1","shot":"2","cameraAngle":"close","cameraMovement":"push in","visualDescription":"cup","audio":"pour","approxDuration":"2s"}
	]`
	scenes, err := ParseScript(raw)
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	assert.Equal(t, "wide", scenes[0].CameraAngle)
	assert.Equal(t, "2", scenes[1].Shot)
	assert.Equal(t, "pour", scenes[1].Audio)

	_, err = ParseScript(`[{"scene":"1","shot":"1"}]`)
	require.ErrorIs(t, err, domain.ErrSchemaViolation)
	assert.Contains(t, err.Error(), "cameraAngle")
}

func TestParseImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 9, 16))))

	img, err := ParseImage(buf.Bytes(), "")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, 9, img.Width)
	assert.Equal(t, 16, img.Height)
	assert.True(t, img.Portrait())

	_, err = ParseImage([]byte("not an image"), "image/jpeg")
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestParseImage_LandscapeAccepted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 9))))

	img, err := ParseImage(buf.Bytes(), "image/png")
	require.NoError(t, err)
	assert.False(t, img.Portrait())
}

// assessmentJSON builds a response whose scores carry every key with value.
func assessmentJSON(keys []string, value string) string {
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%q:%s", k, value)
	}
	return `{"scores":{` + strings.Join(pairs, ",") + `},"feedback":{"strengths":"bold","improvements":"tighter edit"}}`
}

func TestParseAssessment(t *testing.T) {
	for _, mt := range rubric.MediaTypes() {
		t.Run(mt, func(t *testing.T) {
			keys := rubric.Keys(mt)
			res, err := ParseAssessment(assessmentJSON(keys, "7"), keys)
			require.NoError(t, err)
			assert.Len(t, res.Scores, len(keys))
			for _, k := range keys {
				assert.Equal(t, 7, res.Scores[k])
			}
			assert.Equal(t, "bold", res.Feedback.Strengths)
			assert.Equal(t, "tighter edit", res.Feedback.Improvements)
		})
	}
}

func TestParseAssessment_KeySetMismatch(t *testing.T) {
	keys := rubric.Keys("film")

	extra := strings.Replace(assessmentJSON(keys, "5"), `"scores":{`, `"scores":{"vibes":5,`, 1)
	res, err := ParseAssessment(extra, keys)
	require.ErrorIs(t, err, domain.ErrSchemaViolation)
	assert.Contains(t, err.Error(), "unexpected vibes")
	assert.Nil(t, res)

	res, err = ParseAssessment(assessmentJSON(keys[1:], "5"), keys)
	require.ErrorIs(t, err, domain.ErrSchemaViolation)
	assert.Contains(t, err.Error(), "missing "+keys[0])
	assert.Nil(t, res)

	// Another rubric's keys are not accepted in place of the requested one.
	res, err = ParseAssessment(assessmentJSON(rubric.Keys("photography"), "5"), keys)
	assert.ErrorIs(t, err, domain.ErrSchemaViolation)
	assert.Nil(t, res)
}

func TestParseAssessment_ScoreValues(t *testing.T) {
	keys := rubric.Keys("documentary")
	tests := []struct {
		value string
		want  error
	}{
		{"0", domain.ErrOutOfRangeScore},
		{"11", domain.ErrOutOfRangeScore},
		{"-3", domain.ErrOutOfRangeScore},
		{"7.5", domain.ErrSchemaViolation},
		{`"8"`, domain.ErrSchemaViolation},
		{"null", domain.ErrSchemaViolation},
		{"1", nil},
		{"10", nil},
		{"6.0", nil},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			res, err := ParseAssessment(assessmentJSON(keys, tt.value), keys)
			if tt.want == nil {
				require.NoError(t, err)
				assert.NotNil(t, res)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, res)
		})
	}
}

func TestParseAssessment_Feedback(t *testing.T) {
	keys := rubric.Keys("other")
	noFeedback := strings.Split(assessmentJSON(keys, "5"), `,"feedback"`)[0] + "}"
	_, err := ParseAssessment(noFeedback, keys)
	assert.ErrorIs(t, err, domain.ErrSchemaViolation)

	blank := strings.Replace(assessmentJSON(keys, "5"), `"bold"`, `""`, 1)
	_, err = ParseAssessment(blank, keys)
	assert.ErrorIs(t, err, domain.ErrSchemaViolation)

	_, err = ParseAssessment(`{"feedback":{"strengths":"a","improvements":"b"}}`, keys)
	assert.ErrorIs(t, err, domain.ErrSchemaViolation)
}

func TestParseDesignAssessment(t *testing.T) {
	raw := `{"scores":{"visualAppeal":8,"usabilityClarity":7,"originality":9,"designComposition":6,"alignmentWithGoal":10},
	  "feedback":{"strengths":"strong palette","improvements":"larger buttons"}}`
	res, err := ParseDesignAssessment(raw)
	require.NoError(t, err)
	assert.Equal(t, domain.DesignScores{
		VisualAppeal: 8, UsabilityClarity: 7, Originality: 9, DesignComposition: 6, AlignmentWithGoal: 10,
	}, res.Scores)
	assert.Equal(t, "larger buttons", res.Feedback.Improvements)
}

func TestParseDesignAssessment_WholeNumberFloats(t *testing.T) {
	raw := `{"scores":{"visualAppeal":7.0,"usabilityClarity":7,"originality":9.0,"designComposition":6,"alignmentWithGoal":1e1},
	  "feedback":{"strengths":"s","improvements":"i"}}`
	res, err := ParseDesignAssessment(raw)
	require.NoError(t, err)
	assert.Equal(t, domain.DesignScores{
		VisualAppeal: 7, UsabilityClarity: 7, Originality: 9, DesignComposition: 6, AlignmentWithGoal: 10,
	}, res.Scores)

	media, err := ParseAssessment(`{"scores":{"a":7.0},"feedback":{"strengths":"s","improvements":"i"}}`, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, res.Scores.VisualAppeal, media.Scores["a"], "both score paths accept the same numbers")
}

func TestParseDesignAssessment_Failures(t *testing.T) {
	full := `"visualAppeal":8,"usabilityClarity":7,"originality":9,"designComposition":6,"alignmentWithGoal":%s`
	fb := `,"feedback":{"strengths":"s","improvements":"i"}}`
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"missing key", `{"scores":{"visualAppeal":8}` + fb, domain.ErrSchemaViolation},
		{"unknown key", `{"scores":{` + fmt.Sprintf(full, "5") + `,"storytelling":5}` + fb, domain.ErrSchemaViolation},
		{"zero", `{"scores":{` + fmt.Sprintf(full, "0") + `}` + fb, domain.ErrOutOfRangeScore},
		{"eleven", `{"scores":{` + fmt.Sprintf(full, "11") + `}` + fb, domain.ErrOutOfRangeScore},
		{"fraction", `{"scores":{` + fmt.Sprintf(full, "4.5") + `}` + fb, domain.ErrSchemaViolation},
		{"null score", `{"scores":{` + fmt.Sprintf(full, "null") + `}` + fb, domain.ErrSchemaViolation},
		{"string score", `{"scores":{` + fmt.Sprintf(full, `"7"`) + `}` + fb, domain.ErrSchemaViolation},
		{"whole float out of range", `{"scores":{` + fmt.Sprintf(full, "11.0") + `}` + fb, domain.ErrOutOfRangeScore},
		{"no scores", `{"feedback":{"strengths":"s","improvements":"i"}}`, domain.ErrSchemaViolation},
		{"not json", `scores: all good`, domain.ErrMalformedPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseDesignAssessment(tt.raw)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, res)
		})
	}
}
