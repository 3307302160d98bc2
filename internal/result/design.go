package result

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fpang/idea-studio/internal/domain"
	"github.com/fpang/idea-studio/internal/jsonutil"
)

// wireDesignScores keeps each score raw so presence and integer form can be
// checked per field. An empty value means the key was absent.
type wireDesignScores struct {
	VisualAppeal      json.RawMessage `json:"visualAppeal"`
	UsabilityClarity  json.RawMessage `json:"usabilityClarity"`
	Originality       json.RawMessage `json:"originality"`
	DesignComposition json.RawMessage `json:"designComposition"`
	AlignmentWithGoal json.RawMessage `json:"alignmentWithGoal"`
}

type wireDesignAssessment struct {
	Scores   json.RawMessage `json:"scores"`
	Feedback *wireFeedback   `json:"feedback"`
}

// ParseDesignAssessment decodes the fixed five-criterion design assessment.
// Unknown score keys, missing scores and non-integer values are schema
// violations; whole-number floats such as 7.0 count as integers. Values
// outside [1,10] are out of range.
func ParseDesignAssessment(raw string) (*domain.DesignAssessmentResult, error) {
	jsonStr, err := jsonutil.Clean(raw)
	if err != nil {
		return nil, err
	}
	var w wireDesignAssessment
	if err := json.Unmarshal([]byte(jsonStr), &w); err != nil {
		return nil, fmt.Errorf("%w: design assessment: %v", domain.ErrSchemaViolation, err)
	}
	if len(w.Scores) == 0 || string(w.Scores) == "null" {
		return nil, fmt.Errorf("%w: design assessment missing scores", domain.ErrSchemaViolation)
	}

	ws, err := jsonutil.DecodeStrict[wireDesignScores](w.Scores)
	if err != nil {
		return nil, fmt.Errorf("%w: design scores: %v", domain.ErrSchemaViolation, err)
	}

	var scores domain.DesignScores
	named := []struct {
		key   string
		raw   json.RawMessage
		value *int
	}{
		{"visualAppeal", ws.VisualAppeal, &scores.VisualAppeal},
		{"usabilityClarity", ws.UsabilityClarity, &scores.UsabilityClarity},
		{"originality", ws.Originality, &scores.Originality},
		{"designComposition", ws.DesignComposition, &scores.DesignComposition},
		{"alignmentWithGoal", ws.AlignmentWithGoal, &scores.AlignmentWithGoal},
	}
	var missing []string
	for _, n := range named {
		if len(n.raw) == 0 {
			missing = append(missing, n.key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: design scores missing %s", domain.ErrSchemaViolation, strings.Join(missing, ", "))
	}
	for _, n := range named {
		v, err := integerScore(n.raw)
		if err != nil {
			return nil, fmt.Errorf("%w: design score %q: %v", domain.ErrSchemaViolation, n.key, err)
		}
		if err := checkRange(n.key, v); err != nil {
			return nil, err
		}
		*n.value = v
	}

	feedback, err := parseFeedback(w.Feedback)
	if err != nil {
		return nil, err
	}
	return &domain.DesignAssessmentResult{Scores: scores, Feedback: feedback}, nil
}
