// Package voice drives the push-to-talk capture loop and spoken playback.
// Recognition and synthesis engines are platform capabilities supplied by
// the caller; the pipeline only sequences them and decides when a finished
// transcript is worth dispatching.
package voice

import (
	"strings"
	"sync"
	"unicode/utf8"

	"foodchain/internal/logging"
)

// A Recognizer converts microphone audio into text. Start begins a capture
// session and reports results through the callbacks until Stop or Cancel is
// called or the engine ends the session on its own. Callbacks may fire from
// an engine-owned goroutine.
type Recognizer interface {
	Start(cb RecognizerCallbacks) error
	Stop()
	Cancel()
}

// RecognizerCallbacks receive recognition events. Any field may be nil.
type RecognizerCallbacks struct {
	// OnPartial delivers an interim hypothesis for the current phrase.
	// Each partial replaces the previous one.
	OnPartial func(text string)
	// OnFinal delivers a settled phrase. Finals accumulate across the
	// session in arrival order.
	OnFinal func(text string)
	// OnEnd fires when the capture session finishes for any reason.
	OnEnd func()
	// OnError reports an engine fault. The session is considered over.
	OnError func(err error)
}

// A Synthesizer speaks text aloud. Speak begins playback of one utterance
// and calls done when playback finishes or is cancelled. Cancel stops the
// current utterance, if any.
type Synthesizer interface {
	Speak(text, lang string, done func()) error
	Cancel()
}

// minDispatchLen is the shortest final transcript worth sending onward,
// measured in characters, not bytes. Anything at or under this length is
// treated as noise and discarded.
const minDispatchLen = 3

// Pipeline sequences a Recognizer and a Synthesizer. Listening and speaking
// are independent: starting capture while a reply is being spoken is allowed,
// and speaking a new reply silences the previous one. All methods are safe
// for concurrent use.
type Pipeline struct {
	mu        sync.Mutex
	rec       Recognizer
	synth     Synthesizer
	lang      string
	listening bool
	speaking  bool
	speakGen  uint64
	finals    []string
	partial   string

	// onTranscript receives the joined transcript after a capture session
	// ends with enough content to act on.
	onTranscript func(text string)
}

// NewPipeline wires a pipeline over the given engines. Either engine may be
// nil, in which case the corresponding half of the pipeline is inert: Listen
// and Speak report unavailability through their return values.
func NewPipeline(rec Recognizer, synth Synthesizer, lang string, onTranscript func(string)) *Pipeline {
	return &Pipeline{
		rec:          rec,
		synth:        synth,
		lang:         lang,
		onTranscript: onTranscript,
	}
}

// Listening reports whether a capture session is in progress.
func (p *Pipeline) Listening() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.listening
}

// Speaking reports whether an utterance is being played back.
func (p *Pipeline) Speaking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speaking
}

// Transcript returns the text accumulated so far in the current or most
// recent capture session: settled phrases in order, with the live interim
// hypothesis appended.
func (p *Pipeline) Transcript() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transcriptLocked()
}

func (p *Pipeline) transcriptLocked() string {
	parts := p.finals
	if p.partial != "" {
		parts = append(append([]string{}, p.finals...), p.partial)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// Listen starts a capture session. It reports false when no recognizer is
// available or one could not start; the caller can then fall back to typed
// input. Calling Listen during an active session is a no-op returning true.
func (p *Pipeline) Listen() bool {
	p.mu.Lock()
	if p.listening {
		p.mu.Unlock()
		return true
	}
	if p.rec == nil {
		p.mu.Unlock()
		return false
	}
	p.listening = true
	p.finals = nil
	p.partial = ""
	p.mu.Unlock()

	err := p.rec.Start(RecognizerCallbacks{
		OnPartial: p.handlePartial,
		OnFinal:   p.handleFinal,
		OnEnd:     p.handleEnd,
		OnError:   p.handleError,
	})
	if err != nil {
		logging.Warn(logging.CategoryVoice, "recognizer start failed: %v", err)
		p.mu.Lock()
		p.listening = false
		p.mu.Unlock()
		return false
	}
	return true
}

// StopListening ends the capture session and lets any settled transcript
// flow to the dispatch callback via the engine's end event. Safe to call
// when idle.
func (p *Pipeline) StopListening() {
	p.mu.Lock()
	active := p.listening
	rec := p.rec
	p.mu.Unlock()
	if active && rec != nil {
		rec.Stop()
	}
}

// CancelListening aborts the capture session and discards everything heard
// so far. Nothing is dispatched.
func (p *Pipeline) CancelListening() {
	p.mu.Lock()
	active := p.listening
	rec := p.rec
	p.listening = false
	p.finals = nil
	p.partial = ""
	p.mu.Unlock()
	if active && rec != nil {
		rec.Cancel()
	}
}

func (p *Pipeline) handlePartial(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.listening {
		return
	}
	p.partial = text
}

func (p *Pipeline) handleFinal(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.listening {
		return
	}
	p.partial = ""
	if text = strings.TrimSpace(text); text != "" {
		p.finals = append(p.finals, text)
	}
}

func (p *Pipeline) handleEnd() {
	p.mu.Lock()
	if !p.listening {
		p.mu.Unlock()
		return
	}
	p.listening = false
	text := p.transcriptLocked()
	cb := p.onTranscript
	p.mu.Unlock()

	if utf8.RuneCountInString(text) <= minDispatchLen {
		logging.Debug(logging.CategoryVoice, "dropping short transcript %q", text)
		return
	}
	logging.Info(logging.CategoryVoice, "transcript settled: %q", text)
	if cb != nil {
		cb(text)
	}
}

// handleError resets to idle without dispatching. Engine faults are
// recoverable: the next Listen starts a fresh session.
func (p *Pipeline) handleError(err error) {
	logging.Warn(logging.CategoryVoice, "recognizer error: %v", err)
	p.mu.Lock()
	p.listening = false
	p.finals = nil
	p.partial = ""
	p.mu.Unlock()
}

// Speak plays text aloud, silencing any utterance already in progress.
// It reports false when no synthesizer is available or playback could not
// start; the text is still on screen either way, so callers treat a false
// return as cosmetic.
func (p *Pipeline) Speak(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	p.mu.Lock()
	synth := p.synth
	wasSpeaking := p.speaking
	var gen uint64
	if synth != nil {
		p.speakGen++
		gen = p.speakGen
		p.speaking = true
	}
	lang := p.lang
	p.mu.Unlock()

	if synth == nil {
		return false
	}
	if wasSpeaking {
		synth.Cancel()
	}
	// The done callback belongs to this utterance. A superseded utterance's
	// callback can fire after a newer Speak has taken over, so only the
	// callback whose generation is still current may clear the flag.
	err := synth.Speak(text, lang, func() {
		p.mu.Lock()
		if p.speakGen == gen {
			p.speaking = false
		}
		p.mu.Unlock()
	})
	if err != nil {
		logging.Warn(logging.CategoryVoice, "synthesis failed: %v", err)
		p.mu.Lock()
		if p.speakGen == gen {
			p.speaking = false
		}
		p.mu.Unlock()
		return false
	}
	return true
}

// StopSpeaking silences the current utterance. Safe to call when nothing
// is playing.
func (p *Pipeline) StopSpeaking() {
	p.mu.Lock()
	synth := p.synth
	active := p.speaking
	p.speaking = false
	p.speakGen++
	p.mu.Unlock()
	if active && synth != nil {
		synth.Cancel()
	}
}
