package farmer

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"foodchain/internal/dispatch"
	"foodchain/internal/types"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case transcriptMsg:
		// A finished voice transcript dispatches exactly like a typed one,
		// then we rearm the channel read.
		model, cmd := m.submit(msg.text)
		return model, tea.Batch(cmd, model.(Model).waitTranscript())

	case dispatchMsg:
		if msg.id != m.dispatchID {
			return m, nil
		}
		return m.applyEnvelope(msg.env)

	case historyMsg:
		// Drop charts for a commodity we are no longer looking at.
		if msg.crop != m.chartCrop {
			return m, nil
		}
		chart := msg.chart
		m.chart = &chart
		return m, nil

	case routeMsg:
		// Drop paths to a vendor that is no longer selected.
		if msg.dest != m.routeDest {
			return m, nil
		}
		m.routeCoords = msg.coords
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.pipeline.StopSpeaking()
		m.pipeline.CancelListening()
		return m, tea.Quit

	case "ctrl+v":
		if m.pipeline.Listening() {
			m.pipeline.StopListening()
		} else {
			m.pipeline.Listen()
		}
		return m, nil

	case "ctrl+s":
		m.pipeline.StopSpeaking()
		return m, nil

	case "ctrl+h":
		m.showHelp = !m.showHelp
		return m, nil

	case "tab":
		return m.selectVendor(m.activeVendor + 1)

	case "shift+tab":
		return m.selectVendor(m.activeVendor - 1)

	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.processing {
			return m, nil
		}
		m.input.SetValue("")
		return m.submit(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit dispatches an utterance under a fresh id. Any in-flight dispatch
// result becomes stale the moment the id changes.
func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.dispatchID = uuid.New()
	m.processing = true
	m.err = nil
	return m, m.dispatchCmd(m.dispatchID, text)
}

// applyEnvelope swaps in a dispatch result. Replacing the envelope pointer
// clears all state derived from the previous variant at once; the followup
// fetches then rebuild what the new variant needs.
func (m Model) applyEnvelope(env *dispatch.Envelope) (tea.Model, tea.Cmd) {
	m.processing = false
	m.env = env
	m.activeVendor = 0
	m.chart = nil
	m.chartCrop = ""
	m.routeCoords = nil
	m.routeDest = types.LatLng{}

	var cmds []tea.Cmd
	if env.Speak != "" {
		m.pipeline.Speak(env.Speak)
	}
	if env.FollowupCrop != "" {
		m.chartCrop = env.FollowupCrop
		cmds = append(cmds, m.historyCmd(env.FollowupCrop))
	}
	if len(env.Vendors) > 0 {
		m.routeDest = env.Vendors[0].Coordinates()
		cmds = append(cmds, m.routeCmd(m.routeDest))
	}
	return m, tea.Batch(cmds...)
}

// selectVendor moves the active vendor selection, wrapping around, and
// starts a route fetch keyed by the new destination.
func (m Model) selectVendor(idx int) (tea.Model, tea.Cmd) {
	n := 0
	if m.env != nil {
		n = len(m.env.Vendors)
	}
	if n == 0 {
		return m, nil
	}
	m.activeVendor = ((idx % n) + n) % n
	m.routeCoords = nil
	m.routeDest = m.env.Vendors[m.activeVendor].Coordinates()
	return m, m.routeCmd(m.routeDest)
}
