package studio

import (
	"context"
	"fmt"
	"time"

	"github.com/fpang/idea-studio/internal/domain"
	"github.com/fpang/idea-studio/internal/prompt"
	"github.com/fpang/idea-studio/internal/result"
	"github.com/fpang/idea-studio/internal/rubric"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// GenerateIdeas replaces the idea list with a fresh batch. Image and script
// state of the previous ideas is dropped and playback is released.
func (s *Studio) GenerateIdeas(ctx context.Context, in prompt.IdeaInput) ([]domain.Idea, error) {
	req, err := prompt.BuildIdeaRequest(in)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	token := s.begin(KindIdeas, "")

	var ideas []domain.Idea
	raw, err := s.gen.GenerateStructured(ctx, req)
	if err == nil {
		ideas, err = result.ParseIdeas(raw)
	}

	err = s.finish(KindIdeas, "", token, started, err, func() error {
		s.ideas = ideas
		s.selected = ""
		for key := range s.slots {
			if key.kind == KindImage || key.kind == KindScript {
				delete(s.slots, key)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.player != nil {
		s.player.Stop()
	}
	log.Info().Int("count", len(ideas)).Str("topic", in.Topic).Msg("Ideas generated")
	s.persistIdeas(ctx)
	return cloneIdeas(ideas), nil
}

// GenerateImage generates (or regenerates) the concept image of one idea.
func (s *Studio) GenerateImage(ctx context.Context, ideaID string) (domain.Idea, error) {
	idea, ok := s.Idea(ideaID)
	if !ok {
		return domain.Idea{}, fmt.Errorf("%w: %s", ErrUnknownIdea, ideaID)
	}
	req, err := prompt.BuildImageRequest(&idea)
	if err != nil {
		return domain.Idea{}, err
	}

	started := time.Now()
	token := s.begin(KindImage, ideaID)

	var img *domain.GeneratedImage
	data, mimeType, err := s.gen.GenerateImage(ctx, req)
	if err == nil {
		img, err = result.ParseImage(data, mimeType)
	}

	var updated domain.Idea
	err = s.finish(KindImage, ideaID, token, started, err, func() error {
		i := s.indexLocked(ideaID)
		if i < 0 {
			return ErrUnknownIdea
		}
		s.ideas[i].ImageURL = img.DataURL()
		updated = s.ideas[i].Clone()
		return nil
	})
	if err != nil {
		return domain.Idea{}, err
	}

	log.Info().Str("idea", ideaID).Int("width", img.Width).Int("height", img.Height).Msg("Concept image generated")
	s.persistIdeas(ctx)
	return updated, nil
}

// ImageOutcome is the per-idea result of GenerateAllImages.
type ImageOutcome struct {
	IdeaID string
	Err    error
}

// GenerateAllImages generates images for every current idea concurrently.
// One idea's failure does not cancel the others; outcomes follow list order.
func (s *Studio) GenerateAllImages(ctx context.Context) []ImageOutcome {
	ideas := s.Ideas()
	outcomes := make([]ImageOutcome, len(ideas))

	var g errgroup.Group
	for i, idea := range ideas {
		g.Go(func() error {
			_, err := s.GenerateImage(ctx, idea.ID)
			outcomes[i] = ImageOutcome{IdeaID: idea.ID, Err: err}
			if err != nil {
				return fmt.Errorf("%s: %w", idea.ConceptName, err)
			}
			return nil
		})
	}
	firstErr := g.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	if firstErr != nil {
		log.Warn().Err(firstErr).Int("total", len(outcomes)).Int("failed", failed).Msg("Batch image generation had failures")
		return outcomes
	}
	log.Info().Int("total", len(outcomes)).Msg("Batch image generation complete")
	return outcomes
}

// GenerateScript generates (or regenerates) the shooting script of one idea.
// A new script releases narration of that idea.
func (s *Studio) GenerateScript(ctx context.Context, ideaID string) (domain.Idea, error) {
	idea, ok := s.Idea(ideaID)
	if !ok {
		return domain.Idea{}, fmt.Errorf("%w: %s", ErrUnknownIdea, ideaID)
	}
	req, err := prompt.BuildScriptRequest(&idea)
	if err != nil {
		return domain.Idea{}, err
	}

	started := time.Now()
	token := s.begin(KindScript, ideaID)

	var scenes []domain.ScriptScene
	raw, err := s.gen.GenerateStructured(ctx, req)
	if err == nil {
		scenes, err = result.ParseScript(raw)
	}

	var updated domain.Idea
	err = s.finish(KindScript, ideaID, token, started, err, func() error {
		i := s.indexLocked(ideaID)
		if i < 0 {
			return ErrUnknownIdea
		}
		s.ideas[i].Script = scenes
		updated = s.ideas[i].Clone()
		return nil
	})
	if err != nil {
		return domain.Idea{}, err
	}

	s.releaseNarration(ideaID)
	log.Info().Str("idea", ideaID).Int("scenes", len(scenes)).Msg("Script generated")
	s.persistIdeas(ctx)
	return updated, nil
}

// Assess scores a media work against the rubric of the form's media type.
// Unknown media types are assessed with the fallback rubric.
func (s *Studio) Assess(ctx context.Context, form *AssessmentForm) (*domain.AssessmentResult, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	req, err := prompt.BuildAssessmentRequest(form.Input())
	if err != nil {
		return nil, err
	}

	mediaType := form.MediaType
	if !rubric.IsKnown(mediaType) {
		mediaType = rubric.Fallback
	}

	started := time.Now()
	token := s.begin(KindAssessment, "")

	var res *domain.AssessmentResult
	raw, err := s.gen.GenerateStructured(ctx, req)
	if err == nil {
		res, err = result.ParseAssessment(raw, req.ScoreKeys)
	}

	err = s.finish(KindAssessment, "", token, started, err, func() error {
		res.MediaType = mediaType
		s.assessment = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// AssessDesign scores a design artifact on the fixed design rubric.
func (s *Studio) AssessDesign(ctx context.Context, form *DesignForm) (*domain.DesignAssessmentResult, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	req, err := prompt.BuildDesignAssessmentRequest(form.Input())
	if err != nil {
		return nil, err
	}

	started := time.Now()
	token := s.begin(KindDesignAssessment, "")

	var res *domain.DesignAssessmentResult
	raw, err := s.gen.GenerateStructured(ctx, req)
	if err == nil {
		res, err = result.ParseDesignAssessment(raw)
	}

	err = s.finish(KindDesignAssessment, "", token, started, err, func() error {
		s.design = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
