package narration

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fpang/idea-studio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	scene := domain.ScriptScene{VisualDescription: "Steam rises from the cup.", Audio: "Soft piano."}
	assert.Equal(t, "Steam rises from the cup. Soft piano.", Text(scene))
}

func TestSelectVoice(t *testing.T) {
	voices := []Voice{{"Default", "en-US"}, {"British", "en-GB"}, {"Indian", "en-IN"}, {"Hindi", "hi-IN"}}

	tests := []struct {
		locale string
		want   string
	}{
		{"en-IN", "Indian"},
		{"en_in", "Indian"},
		{"hi-IN", "Hindi"},
		{"en-NZ", "Default"},
		{"hi", "Hindi"},
		{"ja-JP", "Default"},
		{"", "Default"},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			v, ok := SelectVoice(voices, tt.locale)
			require.True(t, ok)
			assert.Equal(t, tt.want, v.Name)
		})
	}

	_, ok := SelectVoice(nil, "en-IN")
	assert.False(t, ok)
}

func TestSelectVoice_Catalogue(t *testing.T) {
	v, ok := SelectVoice(Voices, "en-IN")
	require.True(t, ok)
	assert.Equal(t, "en-IN", v.Locale)
}

// blockingSynth returns audio for a text only once release[text] is closed,
// or fails with the configured error.
type blockingSynth struct {
	mu      sync.Mutex
	release map[string]chan struct{}
	fail    map[string]error
}

func newBlockingSynth() *blockingSynth {
	return &blockingSynth{release: map[string]chan struct{}{}, fail: map[string]error{}}
}

func (b *blockingSynth) gate(text string) chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.release[text]
	if !ok {
		ch = make(chan struct{})
		b.release[text] = ch
	}
	return ch
}

func (b *blockingSynth) Synthesize(ctx context.Context, text, _, _ string) ([]byte, string, error) {
	b.mu.Lock()
	err := b.fail[text]
	b.mu.Unlock()
	if err != nil {
		return nil, "", err
	}
	select {
	case <-b.gate(text):
		return []byte(text), "audio/L16;codec=pcm;rate=24000", nil
	case <-ctx.Done():
		return nil, "", ctx.Err()
	}
}

type recordingSink struct {
	mu      sync.Mutex
	targets []string
}

func (r *recordingSink) Play(_ context.Context, target string, _ Audio) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets = append(r.targets, target)
	return nil
}

func (r *recordingSink) played() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.targets...)
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (e *eventLog) observe(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func (e *eventLog) kinds(target string) []EventKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []EventKind
	for _, ev := range e.events {
		if ev.Target == target {
			out = append(out, ev.Kind)
		}
	}
	return out
}

func TestPlayer_PlayToCompletion(t *testing.T) {
	synth := newBlockingSynth()
	sink := &recordingSink{}
	events := &eventLog{}
	p := NewPlayer(synth, sink, Voice{"Leda", "en-IN"}, events.observe)

	p.Play(context.Background(), "a", "hello")
	state, target := p.State()
	assert.Equal(t, Playing, state)
	assert.Equal(t, "a", target)

	close(synth.gate("hello"))
	p.Wait()

	state, _ = p.State()
	assert.Equal(t, Idle, state)
	assert.Equal(t, []string{"a"}, sink.played())
	assert.Equal(t, []EventKind{Started, Stopped}, events.kinds("a"))
}

func TestPlayer_NewUtteranceStopsPrevious(t *testing.T) {
	synth := newBlockingSynth()
	sink := &recordingSink{}
	events := &eventLog{}
	p := NewPlayer(synth, sink, Voice{}, events.observe)

	p.Play(context.Background(), "a", "first")
	p.Play(context.Background(), "b", "second")

	_, target := p.State()
	assert.Equal(t, "b", target)

	close(synth.gate("first"))
	close(synth.gate("second"))
	p.Wait()

	assert.Equal(t, []string{"b"}, sink.played(), "superseded utterance must not play")
	assert.Equal(t, []EventKind{Started, Stopped}, events.kinds("a"))
	assert.Equal(t, []EventKind{Started, Stopped}, events.kinds("b"))
}

func TestPlayer_StopAndRelease(t *testing.T) {
	synth := newBlockingSynth()
	sink := &recordingSink{}
	p := NewPlayer(synth, sink, Voice{}, nil)

	p.Play(context.Background(), "a", "x")
	p.Release("other")
	state, _ := p.State()
	assert.Equal(t, Playing, state, "release of another target is a no-op")

	p.Release("a")
	state, _ = p.State()
	assert.Equal(t, Idle, state)

	p.Play(context.Background(), "b", "y")
	p.Stop()
	p.Wait()
	state, _ = p.State()
	assert.Equal(t, Idle, state)
	assert.Empty(t, sink.played())
}

func TestPlayer_FailureResetsState(t *testing.T) {
	synth := newBlockingSynth()
	synth.fail["boom"] = errors.New("tts unavailable")
	events := &eventLog{}
	p := NewPlayer(synth, &recordingSink{}, Voice{}, events.observe)

	p.Play(context.Background(), "a", "boom")
	p.Wait()

	state, _ := p.State()
	assert.Equal(t, Idle, state)
	assert.Equal(t, []EventKind{Started, Failed}, events.kinds("a"))
}

func TestWAVSink(t *testing.T) {
	dir := t.TempDir()
	var written string
	s := &WAVSink{Dir: dir, Written: func(p string) { written = p }}

	pcm := make([]byte, 480)
	require.NoError(t, s.Play(context.Background(), "idea-1-scene-1", Audio{Data: pcm, MIMEType: "audio/L16;codec=pcm;rate=24000"}))
	assert.Equal(t, filepath.Join(dir, "idea-1-scene-1.wav"), written)

	data, err := os.ReadFile(written)
	require.NoError(t, err)
	require.Len(t, data, 44+len(pcm))
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, uint32(24000), binary.LittleEndian.Uint32(data[24:28]))
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(data[40:44]))

	err = s.Play(context.Background(), "x", Audio{Data: pcm, MIMEType: "audio/mpeg"})
	assert.ErrorContains(t, err, "unsupported audio format")

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	assert.Error(t, s.Play(ctx, "y", Audio{Data: pcm}))
}
