package narration

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// Synthesizer turns text into audio. *chat.Client implements it.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, languageCode, voiceName string) ([]byte, string, error)
}

// Audio is synthesised speech.
type Audio struct {
	Data     []byte
	MIMEType string
}

// Sink plays or stores synthesised audio for target.
type Sink interface {
	Play(ctx context.Context, target string, audio Audio) error
}

type EventKind int

const (
	Started EventKind = iota
	Stopped
	Failed
)

func (k EventKind) String() string {
	switch k {
	case Started:
		return "started"
	case Stopped:
		return "stopped"
	default:
		return "failed"
	}
}

// Event reports a playback transition for Target. Err is set for Failed.
type Event struct {
	Kind   EventKind
	Target string
	Err    error
}

type State int

const (
	Idle State = iota
	Playing
)

type utterance struct {
	target string
	cancel context.CancelFunc
}

// Player is the single owned playback resource. All methods are safe for
// concurrent use.
type Player struct {
	synth    Synthesizer
	sink     Sink
	voice    Voice
	observer func(Event)

	mu      sync.Mutex
	current *utterance
	wg      sync.WaitGroup
}

// NewPlayer creates a Player speaking with voice. observer may be nil.
func NewPlayer(synth Synthesizer, sink Sink, voice Voice, observer func(Event)) *Player {
	if observer == nil {
		observer = func(Event) {}
	}
	return &Player{synth: synth, sink: sink, voice: voice, observer: observer}
}

// Play stops any current utterance and starts speaking text for target in
// the background.
func (p *Player) Play(ctx context.Context, target, text string) {
	p.mu.Lock()
	p.stopLocked()
	uctx, cancel := context.WithCancel(ctx)
	u := &utterance{target: target, cancel: cancel}
	p.current = u
	p.wg.Add(1)
	p.mu.Unlock()

	go p.run(uctx, u, text)
}

func (p *Player) run(ctx context.Context, u *utterance, text string) {
	defer p.wg.Done()
	defer u.cancel()

	p.observer(Event{Kind: Started, Target: u.target})
	err := p.speak(ctx, u.target, text)

	p.mu.Lock()
	if p.current == u {
		p.current = nil
	}
	p.mu.Unlock()

	switch {
	case err == nil, errors.Is(err, context.Canceled):
		p.observer(Event{Kind: Stopped, Target: u.target})
	default:
		log.Warn().Err(err).Str("target", u.target).Msg("Narration failed")
		p.observer(Event{Kind: Failed, Target: u.target, Err: err})
	}
}

func (p *Player) speak(ctx context.Context, target, text string) error {
	data, mimeType, err := p.synth.Synthesize(ctx, text, p.voice.Locale, p.voice.Name)
	if err != nil {
		return err
	}
	// A superseded utterance must not reach the sink.
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.sink.Play(ctx, target, Audio{Data: data, MIMEType: mimeType})
}

// Stop ends the current utterance, if any.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.current != nil {
		p.current.cancel()
		p.current = nil
	}
}

// Release stops playback only if it belongs to target.
func (p *Player) Release(target string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil && p.current.target == target {
		p.stopLocked()
	}
}

// State returns the playback state and the target being spoken.
func (p *Player) State() (State, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return Idle, ""
	}
	return Playing, p.current.target
}

// Wait blocks until every started utterance has finished.
func (p *Player) Wait() {
	p.wg.Wait()
}
