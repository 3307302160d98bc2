// Package studio orchestrates the creative-assistant flows: idea generation,
// per-idea images and scripts, assessments, narration, export and the
// last-session snapshot.
//
// Each operation kind keeps a state per target (an idea ID, or "" for the
// single ideas list and assessment slots): Idle, InFlight, Succeeded or
// Failed. Starting an operation on a target that already has one in flight
// supersedes it; the older call runs to completion but its result is
// discarded. Success replaces the target's record, failure leaves it intact.
package studio

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fpang/idea-studio/internal/audit"
	"github.com/fpang/idea-studio/internal/domain"
	"github.com/fpang/idea-studio/internal/export"
	"github.com/fpang/idea-studio/internal/metrics"
	"github.com/fpang/idea-studio/internal/narration"
	"github.com/fpang/idea-studio/internal/prompt"
	"github.com/fpang/idea-studio/internal/store"
	"github.com/rs/zerolog/log"
)

var (
	// ErrSuperseded is returned by an operation whose result was discarded
	// because a newer operation on the same target started after it.
	ErrSuperseded = errors.New("superseded by a newer request")

	// ErrUnknownIdea is returned when the targeted idea is not in the
	// current list.
	ErrUnknownIdea = errors.New("unknown idea")

	// ErrUnavailable is returned when a feature's backend is not configured.
	ErrUnavailable = errors.New("not configured")
)

// Snapshot keys.
const (
	IdeasKey = "idea-studio.ideas"
	UserKey  = "idea-studio.user"
)

// DefaultAuditTimeout bounds the detached login audit call.
const DefaultAuditTimeout = 5 * time.Second

// Generator is the AI service. *chat.Client implements it.
type Generator interface {
	GenerateStructured(ctx context.Context, req *prompt.Request) (string, error)
	GenerateImage(ctx context.Context, req *prompt.ImageRequest) ([]byte, string, error)
}

type Kind string

const (
	KindIdeas            Kind = "ideas"
	KindImage            Kind = "image"
	KindScript           Kind = "script"
	KindAssessment       Kind = "assessment"
	KindDesignAssessment Kind = "design-assessment"
)

type Phase int

const (
	Idle Phase = iota
	InFlight
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case InFlight:
		return "in-flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// OpState is the observable state of one (kind, target) slot. Message is the
// user-facing failure text when Phase is Failed.
type OpState struct {
	Phase   Phase
	Message string
	Err     error
}

type stateKey struct {
	kind   Kind
	target string
}

type slot struct {
	state OpState
	token uint64
}

// Options wires the studio's optional boundaries. Nil fields disable the
// corresponding feature; Store defaults to an in-memory store.
type Options struct {
	Store        store.Store
	Player       *narration.Player
	Publisher    audit.Publisher
	Destination  export.Destination
	AuditTimeout time.Duration
}

// Studio is safe for concurrent use.
type Studio struct {
	gen          Generator
	store        store.Store
	player       *narration.Player
	publisher    audit.Publisher
	destination  export.Destination
	auditTimeout time.Duration

	mu         sync.Mutex
	ideas      []domain.Idea
	assessment *domain.AssessmentResult
	design     *domain.DesignAssessmentResult
	user       *domain.User
	selected   string
	slots      map[stateKey]*slot
	nextToken  uint64

	persistMu  sync.Mutex
	background sync.WaitGroup
}

func New(gen Generator, opts Options) *Studio {
	s := &Studio{
		gen:          gen,
		store:        opts.Store,
		player:       opts.Player,
		publisher:    opts.Publisher,
		destination:  opts.Destination,
		auditTimeout: opts.AuditTimeout,
		slots:        make(map[stateKey]*slot),
	}
	if s.store == nil {
		s.store = store.NewMemoryStore()
	}
	if s.publisher == nil {
		s.publisher = audit.Nop{}
	}
	if s.auditTimeout == 0 {
		s.auditTimeout = DefaultAuditTimeout
	}
	return s
}

// Wait blocks until detached background work (audit publishing) finishes.
func (s *Studio) Wait() {
	s.background.Wait()
}

// State returns the state of kind for target; targets never used are Idle.
func (s *Studio) State(kind Kind, target string) OpState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.slots[stateKey{kind, target}]; ok {
		return sl.state
	}
	return OpState{Phase: Idle}
}

// Ideas returns a copy of the current idea list.
func (s *Studio) Ideas() []domain.Idea {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneIdeas(s.ideas)
}

// Idea returns a copy of the idea with id.
func (s *Studio) Idea(id string) (domain.Idea, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.ideas[i].Clone(), true
	}
	return domain.Idea{}, false
}

// Assessment returns the latest media-work assessment, if any.
func (s *Studio) Assessment() *domain.AssessmentResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assessment
}

// DesignAssessment returns the latest design assessment, if any.
func (s *Studio) DesignAssessment() *domain.DesignAssessmentResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.design
}

// User returns the logged-in user, if any.
func (s *Studio) User() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// begin marks (kind, target) in flight and returns the token its completion
// must present.
func (s *Studio) begin(kind Kind, target string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := stateKey{kind, target}
	s.nextToken++
	sl, ok := s.slots[key]
	if !ok {
		sl = &slot{}
		s.slots[key] = sl
	} else if sl.state.Phase == InFlight {
		log.Debug().Str("kind", string(kind)).Str("target", target).Msg("Superseding in-flight operation")
	}
	sl.token = s.nextToken
	sl.state = OpState{Phase: InFlight}
	return sl.token
}

// finish settles an operation. A stale token discards the outcome. On
// success apply runs under the lock; an apply error marks the slot failed.
func (s *Studio) finish(kind Kind, target string, token uint64, started time.Time, err error, apply func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := stateKey{kind, target}
	sl, ok := s.slots[key]
	switch {
	case !ok && target != "":
		// The idea list was replaced while the call ran.
		metrics.Operation(string(kind), "discarded", time.Since(started))
		return ErrUnknownIdea
	case !ok || sl.token != token:
		metrics.Operation(string(kind), "superseded", time.Since(started))
		return ErrSuperseded
	}

	if err == nil {
		err = apply()
	}
	if errors.Is(err, ErrUnknownIdea) {
		delete(s.slots, key)
		metrics.Operation(string(kind), "discarded", time.Since(started))
		return err
	}
	if err != nil {
		sl.state = OpState{Phase: Failed, Message: domain.UserMessage(err), Err: err}
		log.Warn().Err(err).Str("kind", string(kind)).Str("target", target).Msg("Operation failed")
		metrics.Operation(string(kind), "failure", time.Since(started))
		return err
	}
	sl.state = OpState{Phase: Succeeded}
	metrics.Operation(string(kind), "success", time.Since(started))
	return nil
}

func (s *Studio) indexLocked(id string) int {
	for i := range s.ideas {
		if s.ideas[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneIdeas(ideas []domain.Idea) []domain.Idea {
	if ideas == nil {
		return nil
	}
	out := make([]domain.Idea, len(ideas))
	for i := range ideas {
		out[i] = ideas[i].Clone()
	}
	return out
}
