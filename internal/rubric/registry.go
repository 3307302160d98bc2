// Package rubric provides the immutable table of scoring criteria per media
// type, plus the fixed design-assessment criteria.
//
// The table is embedded as YAML and parsed once on first use. The same ordered
// key lists returned here drive both the outbound response schema and the
// inbound score validation, so the two can never diverge.
package rubric

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/fpang/idea-studio/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed rubrics.yaml
var rubricsYAML []byte

// Fallback is the media type whose criteria are used for unknown types.
const Fallback = "other"

// Criteria count bounds for every media type.
const (
	minCriteria = 4
	maxCriteria = 6
)

type yamlMediaType struct {
	Type     string                   `yaml:"type"`
	Criteria []domain.RubricCriterion `yaml:"criteria"`
}

type yamlRegistry struct {
	Fallback string                   `yaml:"fallback"`
	Design   []domain.RubricCriterion `yaml:"design"`
	Media    []yamlMediaType          `yaml:"media"`
}

type registry struct {
	order    []string
	byType   map[string][]domain.RubricCriterion
	design   []domain.RubricCriterion
	fallback string
}

var (
	loadOnce sync.Once
	loaded   *registry
)

func table() *registry {
	loadOnce.Do(func() {
		r, err := parse(rubricsYAML)
		if err != nil {
			// The table is compiled in; a broken table is a programming error.
			panic(fmt.Sprintf("rubric: invalid embedded table: %v", err))
		}
		loaded = r
	})
	return loaded
}

// parse decodes and validates a rubric table.
func parse(data []byte) (*registry, error) {
	var doc yamlRegistry
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	r := &registry{
		byType:   make(map[string][]domain.RubricCriterion, len(doc.Media)),
		fallback: doc.Fallback,
	}
	for _, mt := range doc.Media {
		if mt.Type == "" {
			return nil, fmt.Errorf("media type with empty name")
		}
		if _, dup := r.byType[mt.Type]; dup {
			return nil, fmt.Errorf("media type %q declared twice", mt.Type)
		}
		if n := len(mt.Criteria); n < minCriteria || n > maxCriteria {
			return nil, fmt.Errorf("media type %q has %d criteria, want %d-%d", mt.Type, n, minCriteria, maxCriteria)
		}
		if err := checkCriteria(mt.Criteria); err != nil {
			return nil, fmt.Errorf("media type %q: %w", mt.Type, err)
		}
		r.order = append(r.order, mt.Type)
		r.byType[mt.Type] = mt.Criteria
	}

	if _, ok := r.byType[r.fallback]; !ok {
		return nil, fmt.Errorf("fallback media type %q not declared", r.fallback)
	}
	if err := checkCriteria(doc.Design); err != nil {
		return nil, fmt.Errorf("design: %w", err)
	}
	r.design = doc.Design
	return r, nil
}

func checkCriteria(criteria []domain.RubricCriterion) error {
	if len(criteria) == 0 {
		return fmt.Errorf("no criteria")
	}
	seen := make(map[string]struct{}, len(criteria))
	for _, c := range criteria {
		if c.Key == "" || c.Label == "" {
			return fmt.Errorf("criterion with empty key or label")
		}
		if _, dup := seen[c.Key]; dup {
			return fmt.Errorf("duplicate key %q", c.Key)
		}
		seen[c.Key] = struct{}{}
	}
	return nil
}

// CriteriaFor returns the ordered criteria for mediaType. Unknown media types
// get the fallback criteria. The returned slice is a copy.
func CriteriaFor(mediaType string) []domain.RubricCriterion {
	t := table()
	criteria, ok := t.byType[mediaType]
	if !ok {
		criteria = t.byType[t.fallback]
	}
	out := make([]domain.RubricCriterion, len(criteria))
	copy(out, criteria)
	return out
}

// Keys returns the ordered criterion keys for mediaType.
func Keys(mediaType string) []string {
	return keysOf(CriteriaFor(mediaType))
}

// IsKnown reports whether mediaType has its own criteria set.
func IsKnown(mediaType string) bool {
	_, ok := table().byType[mediaType]
	return ok
}

// MediaTypes lists every media type in table order.
func MediaTypes() []string {
	t := table()
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// DesignCriteria returns the fixed five design-assessment criteria.
func DesignCriteria() []domain.RubricCriterion {
	t := table()
	out := make([]domain.RubricCriterion, len(t.design))
	copy(out, t.design)
	return out
}

// DesignKeys returns the ordered design-assessment keys.
func DesignKeys() []string {
	return keysOf(DesignCriteria())
}

// Label returns the human-facing label for key within mediaType's rubric,
// or the key itself if not found.
func Label(mediaType, key string) string {
	for _, c := range CriteriaFor(mediaType) {
		if c.Key == key {
			return c.Label
		}
	}
	for _, c := range DesignCriteria() {
		if c.Key == key {
			return c.Label
		}
	}
	return key
}

func keysOf(criteria []domain.RubricCriterion) []string {
	keys := make([]string, len(criteria))
	for i, c := range criteria {
		keys[i] = c.Key
	}
	return keys
}
