package studio

import (
	"context"
	"fmt"
	"strings"

	"github.com/fpang/idea-studio/internal/domain"
	"github.com/fpang/idea-studio/internal/export"
	"github.com/fpang/idea-studio/internal/narration"
	"github.com/rs/zerolog/log"
)

// NarrationTarget names the playback target of one scene.
func NarrationTarget(ideaID string, sceneIndex int) string {
	return fmt.Sprintf("%s-scene-%d", ideaID, sceneIndex+1)
}

// SelectIdea makes id the current idea. Switching to a different idea
// releases playback of the previous one.
func (s *Studio) SelectIdea(id string) error {
	s.mu.Lock()
	if s.indexLocked(id) < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownIdea, id)
	}
	previous := s.selected
	s.selected = id
	s.mu.Unlock()

	if previous != "" && previous != id {
		s.releaseNarration(previous)
	}
	return nil
}

// Selected returns the current idea ID, or "" when none is selected.
func (s *Studio) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Narrate selects the idea and reads one scene of its script aloud. Any
// utterance already playing is stopped first.
func (s *Studio) Narrate(ctx context.Context, ideaID string, sceneIndex int) error {
	if s.player == nil {
		return fmt.Errorf("narration %w", ErrUnavailable)
	}
	scene, err := s.scene(ideaID, sceneIndex)
	if err != nil {
		return err
	}
	if err := s.SelectIdea(ideaID); err != nil {
		return err
	}
	s.player.Play(ctx, NarrationTarget(ideaID, sceneIndex), narration.Text(scene))
	return nil
}

// StopNarration stops whatever is playing.
func (s *Studio) StopNarration() {
	if s.player != nil {
		s.player.Stop()
	}
}

// releaseNarration stops playback if it belongs to ideaID.
func (s *Studio) releaseNarration(ideaID string) {
	if s.player == nil {
		return
	}
	state, target := s.player.State()
	if state == narration.Playing && strings.HasPrefix(target, ideaID+"-scene-") {
		log.Debug().Str("idea", ideaID).Str("target", target).Msg("Releasing narration")
		s.player.Release(target)
	}
}

func (s *Studio) scene(ideaID string, sceneIndex int) (domain.ScriptScene, error) {
	idea, ok := s.Idea(ideaID)
	if !ok {
		return domain.ScriptScene{}, fmt.Errorf("%w: %s", ErrUnknownIdea, ideaID)
	}
	if !idea.HasScript() {
		return domain.ScriptScene{}, fmt.Errorf("%w: idea %s has no script", domain.ErrInputValidation, ideaID)
	}
	if sceneIndex < 0 || sceneIndex >= len(idea.Script) {
		return domain.ScriptScene{}, fmt.Errorf("%w: scene %d out of range 1-%d", domain.ErrInputValidation, sceneIndex+1, len(idea.Script))
	}
	return idea.Script[sceneIndex], nil
}

// ExportScript renders the idea's script and saves it to the configured
// destination, returning where it was written.
func (s *Studio) ExportScript(ctx context.Context, ideaID string) (string, error) {
	if s.destination == nil {
		return "", fmt.Errorf("export %w", ErrUnavailable)
	}
	idea, ok := s.Idea(ideaID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownIdea, ideaID)
	}
	if !idea.HasScript() {
		return "", fmt.Errorf("%w: idea %s has no script", domain.ErrInputValidation, ideaID)
	}

	content := export.RenderScript(idea.ConceptName, idea.Script)
	location, err := s.destination.Save(ctx, export.FileName(idea.ConceptName), []byte(content))
	if err != nil {
		return "", err
	}
	log.Info().Str("idea", ideaID).Str("location", location).Msg("Script exported")
	return location, nil
}
