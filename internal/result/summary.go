package result

import (
	"math"

	"github.com/fpang/idea-studio/internal/domain"
	"github.com/fpang/idea-studio/internal/rubric"
)

// ScoreLine is one criterion row ready for display.
type ScoreLine struct {
	Key     string
	Label   string
	Score   int
	Percent int
}

// Percent converts a 1-10 score to the bar width shown in the UI.
func Percent(score int) int {
	return score * 100 / domain.MaxScore
}

// Average returns the mean score rounded to one decimal place, or 0 for an
// empty set.
func Average(scores map[string]int) float64 {
	if len(scores) == 0 {
		return 0
	}
	total := 0
	for _, v := range scores {
		total += v
	}
	return math.Round(float64(total)/float64(len(scores))*10) / 10
}

// Lines orders an assessment's scores by the rubric of its media type.
func Lines(res *domain.AssessmentResult) []ScoreLine {
	criteria := rubric.CriteriaFor(res.MediaType)
	lines := make([]ScoreLine, 0, len(criteria))
	for _, c := range criteria {
		v, ok := res.Scores[c.Key]
		if !ok {
			continue
		}
		lines = append(lines, ScoreLine{Key: c.Key, Label: c.Label, Score: v, Percent: Percent(v)})
	}
	return lines
}

// DesignLines orders a design assessment's scores by the design rubric.
func DesignLines(res *domain.DesignAssessmentResult) []ScoreLine {
	values := res.Scores.Values()
	criteria := rubric.DesignCriteria()
	lines := make([]ScoreLine, 0, len(criteria))
	for _, c := range criteria {
		v := values[c.Key]
		lines = append(lines, ScoreLine{Key: c.Key, Label: c.Label, Score: v, Percent: Percent(v)})
	}
	return lines
}
