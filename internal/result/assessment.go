package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/fpang/idea-studio/internal/domain"
	"github.com/fpang/idea-studio/internal/jsonutil"
)

type wireFeedback struct {
	Strengths    *string `json:"strengths"`
	Improvements *string `json:"improvements"`
}

type wireAssessment struct {
	Scores   map[string]json.RawMessage `json:"scores"`
	Feedback *wireFeedback              `json:"feedback"`
}

// ParseAssessment decodes a media-work assessment. The returned score key set
// must equal keys exactly; keys is the ScoreKeys slice of the request that
// produced raw.
func ParseAssessment(raw string, keys []string) (*domain.AssessmentResult, error) {
	jsonStr, err := jsonutil.Clean(raw)
	if err != nil {
		return nil, err
	}
	var w wireAssessment
	if err := json.Unmarshal([]byte(jsonStr), &w); err != nil {
		return nil, fmt.Errorf("%w: assessment: %v", domain.ErrSchemaViolation, err)
	}
	if w.Scores == nil {
		return nil, fmt.Errorf("%w: assessment missing scores", domain.ErrSchemaViolation)
	}
	if err := matchKeySet(w.Scores, keys); err != nil {
		return nil, err
	}

	scores := make(map[string]int, len(keys))
	for _, k := range keys {
		v, err := integerScore(w.Scores[k])
		if err != nil {
			return nil, fmt.Errorf("%w: score %q: %v", domain.ErrSchemaViolation, k, err)
		}
		if err := checkRange(k, v); err != nil {
			return nil, err
		}
		scores[k] = v
	}

	feedback, err := parseFeedback(w.Feedback)
	if err != nil {
		return nil, err
	}
	return &domain.AssessmentResult{Scores: scores, Feedback: feedback}, nil
}

// matchKeySet fails when got has any key missing from want or not in want.
func matchKeySet(got map[string]json.RawMessage, want []string) error {
	var missing, extra []string
	for _, k := range want {
		if _, ok := got[k]; !ok {
			missing = append(missing, k)
		}
	}
	for k := range got {
		if !slices.Contains(want, k) {
			extra = append(extra, k)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	slices.Sort(extra)
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing "+strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		parts = append(parts, "unexpected "+strings.Join(extra, ", "))
	}
	return fmt.Errorf("%w: score keys %s", domain.ErrSchemaViolation, strings.Join(parts, "; "))
}

// integerScore accepts JSON numbers with no fractional part.
func integerScore(raw json.RawMessage) (int, error) {
	var f float64
	if string(raw) == "null" {
		return 0, errors.New("null score")
	}
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("not a number: %s", string(raw))
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer: %s", string(raw))
	}
	// Clamp so huge values still fail the range check rather than overflow.
	return int(math.Max(math.Min(f, math.MaxInt32), math.MinInt32)), nil
}

func checkRange(key string, v int) error {
	if v < domain.MinScore || v > domain.MaxScore {
		return fmt.Errorf("%w: %q = %d, want %d-%d", domain.ErrOutOfRangeScore, key, v, domain.MinScore, domain.MaxScore)
	}
	return nil
}

func parseFeedback(w *wireFeedback) (domain.Feedback, error) {
	if w == nil {
		return domain.Feedback{}, fmt.Errorf("%w: missing feedback", domain.ErrSchemaViolation)
	}
	if err := requireFields("feedback", 0, []field{
		{"strengths", w.Strengths},
		{"improvements", w.Improvements},
	}); err != nil {
		return domain.Feedback{}, err
	}
	return domain.Feedback{Strengths: *w.Strengths, Improvements: *w.Improvements}, nil
}
