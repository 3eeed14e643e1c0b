package voice

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeRecognizer lets tests drive recognition events by hand.
type fakeRecognizer struct {
	mu       sync.Mutex
	cb       RecognizerCallbacks
	startErr error
	started  int
	stopped  int
	canceled int
}

func (f *fakeRecognizer) Start(cb RecognizerCallbacks) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.cb = cb
	f.started++
	return nil
}

func (f *fakeRecognizer) Stop() {
	f.mu.Lock()
	cb := f.cb
	f.stopped++
	f.mu.Unlock()
	if cb.OnEnd != nil {
		cb.OnEnd()
	}
}

func (f *fakeRecognizer) Cancel() {
	f.mu.Lock()
	f.canceled++
	f.mu.Unlock()
}

type fakeSynth struct {
	mu       sync.Mutex
	spoken   []string
	canceled int
	speakErr error
	done     func()
}

func (f *fakeSynth) Speak(text, lang string, done func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.speakErr != nil {
		return f.speakErr
	}
	f.spoken = append(f.spoken, text)
	f.done = done
	return nil
}

func (f *fakeSynth) Cancel() {
	f.mu.Lock()
	done := f.done
	f.done = nil
	f.canceled++
	f.mu.Unlock()
	if done != nil {
		done()
	}
}

func (f *fakeSynth) finish() {
	f.mu.Lock()
	done := f.done
	f.done = nil
	f.mu.Unlock()
	if done != nil {
		done()
	}
}

func TestListen_PartialsReplaceFinalsAccumulate(t *testing.T) {
	rec := &fakeRecognizer{}
	p := NewPipeline(rec, nil, "hi-IN", nil)

	require.True(t, p.Listen())
	require.True(t, p.Listening())

	rec.cb.OnPartial("tam")
	assert.Equal(t, "tam", p.Transcript())
	rec.cb.OnPartial("tamatar")
	assert.Equal(t, "tamatar", p.Transcript())

	rec.cb.OnFinal("tamatar bechna hai")
	rec.cb.OnPartial("sau")
	assert.Equal(t, "tamatar bechna hai sau", p.Transcript())
	rec.cb.OnFinal("sau kilo")
	assert.Equal(t, "tamatar bechna hai sau kilo", p.Transcript())
}

func TestStopListening_DispatchesTranscript(t *testing.T) {
	var got string
	rec := &fakeRecognizer{}
	p := NewPipeline(rec, nil, "hi-IN", func(text string) { got = text })

	require.True(t, p.Listen())
	rec.cb.OnFinal("sell 100kg tomato")
	p.StopListening()

	assert.False(t, p.Listening())
	assert.Equal(t, "sell 100kg tomato", got)
}

func TestStopListening_ShortTranscriptDropped(t *testing.T) {
	dispatched := false
	rec := &fakeRecognizer{}
	p := NewPipeline(rec, nil, "hi-IN", func(string) { dispatched = true })

	require.True(t, p.Listen())
	rec.cb.OnFinal("ok")
	p.StopListening()

	assert.False(t, dispatched)

	// Exactly at the threshold is still dropped.
	require.True(t, p.Listen())
	rec.cb.OnFinal("yes")
	p.StopListening()
	assert.False(t, dispatched)

	// One past it goes through.
	require.True(t, p.Listen())
	rec.cb.OnFinal("haan")
	p.StopListening()
	assert.True(t, dispatched)
}

func TestStopListening_ThresholdCountsCharactersNotBytes(t *testing.T) {
	dispatched := false
	rec := &fakeRecognizer{}
	p := NewPipeline(rec, nil, "hi-IN", func(string) { dispatched = true })

	// Two Devanagari characters span six bytes but are still noise.
	require.True(t, p.Listen())
	rec.cb.OnFinal("दो")
	p.StopListening()
	assert.False(t, dispatched)

	require.True(t, p.Listen())
	rec.cb.OnFinal("टमाटर")
	p.StopListening()
	assert.True(t, dispatched)
}

func TestCancelListening_DiscardsEverything(t *testing.T) {
	dispatched := false
	rec := &fakeRecognizer{}
	p := NewPipeline(rec, nil, "hi-IN", func(string) { dispatched = true })

	require.True(t, p.Listen())
	rec.cb.OnFinal("sell 100kg tomato")
	p.CancelListening()

	assert.False(t, p.Listening())
	assert.Empty(t, p.Transcript())
	assert.False(t, dispatched)
	assert.Equal(t, 1, rec.canceled)
}

func TestListen_NoRecognizer(t *testing.T) {
	p := NewPipeline(nil, nil, "hi-IN", nil)
	assert.False(t, p.Listen())
	assert.False(t, p.Listening())
}

func TestListen_StartFailureResetsToIdle(t *testing.T) {
	rec := &fakeRecognizer{startErr: errors.New("mic busy")}
	p := NewPipeline(rec, nil, "hi-IN", nil)
	assert.False(t, p.Listen())
	assert.False(t, p.Listening())

	// Next attempt is a fresh session once the engine recovers.
	rec.startErr = nil
	assert.True(t, p.Listen())
	assert.True(t, p.Listening())
	p.CancelListening()
}

func TestRecognizerError_ResetsWithoutDispatch(t *testing.T) {
	dispatched := false
	rec := &fakeRecognizer{}
	p := NewPipeline(rec, nil, "hi-IN", func(string) { dispatched = true })

	require.True(t, p.Listen())
	rec.cb.OnFinal("sell 100kg tomato")
	rec.cb.OnError(errors.New("network"))

	assert.False(t, p.Listening())
	assert.Empty(t, p.Transcript())
	assert.False(t, dispatched)
}

func TestSpeak_CancelsPriorUtterance(t *testing.T) {
	synth := &fakeSynth{}
	p := NewPipeline(nil, synth, "hi-IN", nil)

	require.True(t, p.Speak("first reply"))
	assert.True(t, p.Speaking())

	require.True(t, p.Speak("second reply"))
	assert.Equal(t, 1, synth.canceled)
	assert.Equal(t, []string{"first reply", "second reply"}, synth.spoken)
	assert.True(t, p.Speaking())

	synth.finish()
	assert.False(t, p.Speaking())
}

func TestSpeak_SupersededUtteranceCanStillBeSilenced(t *testing.T) {
	synth := &fakeSynth{}
	p := NewPipeline(nil, synth, "hi-IN", nil)

	require.True(t, p.Speak("first reply"))
	// Superseding "first" kills it, which fires its completion callback
	// while "second" is audible. That callback must not mark playback over.
	require.True(t, p.Speak("second reply"))
	require.True(t, p.Speaking())

	p.StopSpeaking()
	assert.False(t, p.Speaking())
	assert.Equal(t, 2, synth.canceled)
}

func TestSpeak_FailureResetsToIdle(t *testing.T) {
	synth := &fakeSynth{speakErr: errors.New("no audio device")}
	p := NewPipeline(nil, synth, "hi-IN", nil)

	assert.False(t, p.Speak("hello"))
	assert.False(t, p.Speaking())
}

func TestSpeak_EmptyOrNoSynth(t *testing.T) {
	p := NewPipeline(nil, nil, "hi-IN", nil)
	assert.False(t, p.Speak("hello"))

	synth := &fakeSynth{}
	p = NewPipeline(nil, synth, "hi-IN", nil)
	assert.False(t, p.Speak("   "))
	assert.Empty(t, synth.spoken)
}

func TestStopSpeaking_SafeWhenIdle(t *testing.T) {
	synth := &fakeSynth{}
	p := NewPipeline(nil, synth, "hi-IN", nil)

	p.StopSpeaking()
	assert.Zero(t, synth.canceled)

	require.True(t, p.Speak("reply"))
	p.StopSpeaking()
	assert.False(t, p.Speaking())
	assert.Equal(t, 1, synth.canceled)

	p.StopSpeaking()
	assert.Equal(t, 1, synth.canceled)
}

func TestListenWhileSpeaking_Independent(t *testing.T) {
	rec := &fakeRecognizer{}
	synth := &fakeSynth{}
	p := NewPipeline(rec, synth, "hi-IN", nil)

	require.True(t, p.Speak("previous answer"))
	require.True(t, p.Listen())
	assert.True(t, p.Speaking())
	assert.True(t, p.Listening())

	p.StopSpeaking()
	assert.True(t, p.Listening())
	p.CancelListening()
}
