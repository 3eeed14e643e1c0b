package voice

import (
	"os/exec"
	"sync"

	"foodchain/internal/logging"
)

// speakCommands are tried in order when looking for a playback binary.
var speakCommands = []string{"espeak-ng", "espeak", "say"}

// CommandSynthesizer speaks through a local text-to-speech binary. Each
// utterance runs as its own process; Cancel kills the running one.
type CommandSynthesizer struct {
	binary string

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewCommandSynthesizer probes PATH for a text-to-speech binary. It returns
// nil when none is installed, which callers treat as synthesis unavailable.
func NewCommandSynthesizer() *CommandSynthesizer {
	for _, name := range speakCommands {
		if path, err := exec.LookPath(name); err == nil {
			logging.Info(logging.CategoryVoice, "using %s for speech playback", path)
			return &CommandSynthesizer{binary: path}
		}
	}
	logging.Info(logging.CategoryVoice, "no speech binary found, playback disabled")
	return nil
}

// Speak starts playback of one utterance and reports completion via done.
func (s *CommandSynthesizer) Speak(text, lang string, done func()) error {
	args := []string{text}
	if lang != "" && s.binary != "say" {
		args = []string{"-v", lang, text}
	}
	cmd := exec.Command(s.binary, args...)
	if err := cmd.Start(); err != nil {
		return err
	}

	s.mu.Lock()
	s.cmd = cmd
	s.mu.Unlock()

	go func() {
		_ = cmd.Wait()
		s.mu.Lock()
		if s.cmd == cmd {
			s.cmd = nil
		}
		s.mu.Unlock()
		if done != nil {
			done()
		}
	}()
	return nil
}

// Cancel kills the in-flight utterance, if any.
func (s *CommandSynthesizer) Cancel() {
	s.mu.Lock()
	cmd := s.cmd
	s.cmd = nil
	s.mu.Unlock()
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}
