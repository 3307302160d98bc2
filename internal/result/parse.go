// Package result decodes AI responses into typed domain records and validates
// them against the contract of the request that produced them.
//
// The service is asked for schema-constrained JSON but is not trusted: every
// required field is re-checked, score key sets are compared exactly, and
// scores outside [1,10] are rejected. No partial record is returned on error.
package result

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fpang/idea-studio/internal/domain"
	"github.com/fpang/idea-studio/internal/ident"
	"github.com/fpang/idea-studio/internal/jsonutil"
	"github.com/fpang/idea-studio/internal/media"
	"github.com/rs/zerolog/log"
)

type wireIdea struct {
	ConceptName          *string `json:"conceptName"`
	Format               *string `json:"format"`
	ShortPlot            *string `json:"shortPlot"`
	VisualAudioDirection *string `json:"visualAudioDirection"`
	Hook                 *string `json:"hook"`
}

type wireScene struct {
	Scene             *string `json:"scene"`
	Shot              *string `json:"shot"`
	CameraAngle       *string `json:"cameraAngle"`
	CameraMovement    *string `json:"cameraMovement"`
	VisualDescription *string `json:"visualDescription"`
	Audio             *string `json:"audio"`
	ApproxDuration    *string `json:"approxDuration"`
}

// field pairs a wire key with its decoded value for presence checks.
type field struct {
	name  string
	value *string
}

// ParseIdeas decodes an idea-generation response. Any non-empty list is
// accepted; each idea receives a fresh local identifier.
func ParseIdeas(raw string) ([]domain.Idea, error) {
	items, err := decodeArray(raw, "idea")
	if err != nil {
		return nil, err
	}

	ideas := make([]domain.Idea, 0, len(items))
	for i, item := range items {
		var w wireIdea
		if err := json.Unmarshal(item, &w); err != nil {
			return nil, fmt.Errorf("%w: idea %d: %v", domain.ErrSchemaViolation, i, err)
		}
		if err := requireFields("idea", i, []field{
			{"conceptName", w.ConceptName},
			{"format", w.Format},
			{"shortPlot", w.ShortPlot},
			{"visualAudioDirection", w.VisualAudioDirection},
			{"hook", w.Hook},
		}); err != nil {
			return nil, err
		}
		ideas = append(ideas, domain.Idea{
			ConceptName:          *w.ConceptName,
			Format:               *w.Format,
			ShortPlot:            *w.ShortPlot,
			VisualAudioDirection: *w.VisualAudioDirection,
			Hook:                 *w.Hook,
		})
	}

	// IDs are assigned only once the whole batch is valid.
	for i := range ideas {
		ideas[i].ID = ident.NewIdeaID()
	}

	log.Debug().Int("idea_count", len(ideas)).Msg("Idea response parsed")
	return ideas, nil
}

// ParseScript decodes a shooting-script response, preserving scene order.
func ParseScript(raw string) ([]domain.ScriptScene, error) {
	items, err := decodeArray(raw, "scene")
	if err != nil {
		return nil, err
	}

	scenes := make([]domain.ScriptScene, 0, len(items))
	for i, item := range items {
		var w wireScene
		if err := json.Unmarshal(item, &w); err != nil {
			return nil, fmt.Errorf("%w: scene %d: %v", domain.ErrSchemaViolation, i, err)
		}
		if err := requireFields("scene", i, []field{
			{"scene", w.Scene},
			{"shot", w.Shot},
			{"cameraAngle", w.CameraAngle},
			{"cameraMovement", w.CameraMovement},
			{"visualDescription", w.VisualDescription},
			{"audio", w.Audio},
			{"approxDuration", w.ApproxDuration},
		}); err != nil {
			return nil, err
		}
		scenes = append(scenes, domain.ScriptScene{
			Scene:             *w.Scene,
			Shot:              *w.Shot,
			CameraAngle:       *w.CameraAngle,
			CameraMovement:    *w.CameraMovement,
			VisualDescription: *w.VisualDescription,
			Audio:             *w.Audio,
			ApproxDuration:    *w.ApproxDuration,
		})
	}

	log.Debug().Int("scene_count", len(scenes)).Msg("Script response parsed")
	return scenes, nil
}

// ParseImage validates generated image bytes. A missing MIME type is derived
// from the decoded format.
func ParseImage(data []byte, mimeType string) (*domain.GeneratedImage, error) {
	info, err := media.InspectImage(data)
	if err != nil {
		return nil, fmt.Errorf("%w: generated image: %v", domain.ErrMalformedPayload, err)
	}
	if mimeType == "" {
		mimeType = "image/" + info.Format
	}
	img := &domain.GeneratedImage{
		Data:     data,
		MIMEType: mimeType,
		Width:    info.Width,
		Height:   info.Height,
	}
	if !img.Portrait() {
		log.Warn().
			Int("width", info.Width).
			Int("height", info.Height).
			Msg("Generated image is not portrait")
	}
	return img, nil
}

// decodeArray cleans raw and splits a non-empty top-level JSON array.
func decodeArray(raw, what string) ([]json.RawMessage, error) {
	jsonStr, err := jsonutil.Clean(raw)
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &items); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array of %ss: %v", domain.ErrSchemaViolation, what, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty %s list", domain.ErrSchemaViolation, what)
	}
	return items, nil
}

func requireFields(what string, index int, fields []field) error {
	var missing []string
	for _, f := range fields {
		if f.value == nil || strings.TrimSpace(*f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s %d missing %s", domain.ErrSchemaViolation, what, index, strings.Join(missing, ", "))
	}
	return nil
}
