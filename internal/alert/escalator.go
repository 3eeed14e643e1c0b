// Package alert maps a severity level onto the notification ladder and keeps
// a short history of dispatch outcomes. Channel activation is monotonic in
// severity: every level notifies in-app, high adds SMS, critical adds a
// voice call.
package alert

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"foodchain/internal/api"
	"foodchain/internal/logging"
	"foodchain/internal/risk"
	"foodchain/internal/types"
)

// Channel is one notification transport.
type Channel string

const (
	ChannelNotification Channel = "notification"
	ChannelSMS          Channel = "sms"
	ChannelCall         Channel = "call"
)

// historyCap bounds the retained dispatch records, newest first.
const historyCap = 10

// ChannelsFor returns the channels that fire at the given severity.
func ChannelsFor(level risk.Level) []Channel {
	ch := []Channel{ChannelNotification}
	if level.Ordinal() >= risk.High.Ordinal() {
		ch = append(ch, ChannelSMS)
	}
	if level.Ordinal() >= risk.Critical.Ordinal() {
		ch = append(ch, ChannelCall)
	}
	return ch
}

// A Backend dispatches alerts. Satisfied by *api.Client.
type Backend interface {
	AlertSimulate(ctx context.Context, req api.AlertRequest) (*types.AlertDispatch, error)
}

// Escalator triggers alerts and records their outcomes.
type Escalator struct {
	backend Backend

	mu      sync.Mutex
	history []types.AlertDispatch
	now     func() time.Time
}

func NewEscalator(backend Backend) *Escalator {
	return &Escalator{backend: backend, now: time.Now}
}

// Trigger dispatches an alert at the given severity. When a live stress read
// is available its score and signal titles ride along; otherwise the score
// is derived from the level alone. Every call re-sends, even for a level
// already triggered. The outcome, success or failure, is prepended to the
// history.
func (e *Escalator) Trigger(ctx context.Context, level risk.Level, stress *types.RiskState) (*types.AlertDispatch, error) {
	score := float64(level.Ordinal() * 25)
	var signals []api.AlertSignalRef
	if stress != nil {
		score = stress.RiskScore
		for _, s := range stress.Signals {
			signals = append(signals, api.AlertSignalRef{Title: s.Title})
		}
	}

	req := api.AlertRequest{
		RiskLevel: level.String(),
		RiskScore: score,
		Message:   Message(level, score),
		Signals:   signals,
	}
	logging.Info(logging.CategoryAlert, "triggering %s alert (score %.0f, %d signals)",
		level, score, len(signals))

	res, err := e.backend.AlertSimulate(ctx, req)
	if err != nil {
		logging.Error(logging.CategoryAlert, "alert dispatch failed: %v", err)
		res = &types.AlertDispatch{
			RiskLevel: level.String(),
			RiskScore: score,
			Errors:    []string{err.Error()},
		}
	}
	res.Timestamp = e.now()
	e.record(*res)
	return res, err
}

// Message formats the alert body sent over every channel.
func Message(level risk.Level, score float64) string {
	return fmt.Sprintf("FoodChain Alert — %s risk (Score: %s/100)",
		strings.ToUpper(level.String()),
		strconv.FormatFloat(score, 'f', -1, 64))
}

func (e *Escalator) record(d types.AlertDispatch) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = append([]types.AlertDispatch{d}, e.history...)
	if len(e.history) > historyCap {
		e.history = e.history[:historyCap]
	}
}

// History returns the retained dispatch records, newest first.
func (e *Escalator) History() []types.AlertDispatch {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]types.AlertDispatch, len(e.history))
	copy(out, e.history)
	return out
}
