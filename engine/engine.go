// Package engine emulates the synthesis engine's control side: it holds the current
// patch, applies control messages to it, and persists it through a Store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/room4-2/basslink/messages"
)

// ErrUnknownTarget is returned for a section/parameter pair the engine does not have.
var ErrUnknownTarget = errors.New("no such parameter")

// Engine is the emulated synthesizer state. It is safe for concurrent use.
type Engine struct {
	store Store
	log   *logrus.Entry

	mu    sync.RWMutex
	patch messages.Patch
}

// New restores the last saved patch from store, or starts from the default patch.
func New(ctx context.Context, store Store, log *logrus.Entry) (*Engine, error) {
	patch, ok, err := store.LoadPatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to restore patch: %w", err)
	}
	if !ok {
		patch = messages.DefaultPatch()
	}
	return &Engine{
		store: store,
		log:   log.WithField("component", "engine"),
		patch: patch,
	}, nil
}

// Snapshot returns a copy of the current patch.
func (e *Engine) Snapshot() messages.Patch {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.patch
}

// Apply sets one parameter and returns the resulting patch. Messages from channels other
// than the UI channel are accepted the same way.
func (e *Engine) Apply(ctx context.Context, m messages.ControlMessage) (messages.Patch, error) {
	e.mu.Lock()
	next := e.patch
	if err := apply(&next, m); err != nil {
		e.mu.Unlock()
		return messages.Patch{}, err
	}
	e.patch = next
	e.mu.Unlock()

	if err := e.store.SavePatch(ctx, next); err != nil {
		e.log.WithError(err).Warn("Patch not persisted")
	}
	e.log.Debugf("🎚️  Applied %s", m)
	return next, nil
}

func apply(p *messages.Patch, m messages.ControlMessage) error {
	v := m.Value
	if v.Kind() != m.Parameter.Kind() {
		return fmt.Errorf("%s.%s: value kind %s, want %s", m.Section, m.Parameter, v.Kind(), m.Parameter.Kind())
	}

	switch {
	case m.Section.IsOscillator():
		osc := &p.Osc[int(m.Section-messages.SectionOsc1)]
		switch m.Parameter {
		case messages.ParamWaveform:
			osc.Waveform = v.Waveform()
		case messages.ParamCoarse:
			osc.Coarse = v.Int8()
		case messages.ParamFine:
			osc.Fine = v.Int8()
		case messages.ParamGain:
			osc.Gain = v.Int8()
		default:
			return unknown(m)
		}

	case m.Section == messages.SectionFilter:
		f := &p.Filter
		switch m.Parameter {
		case messages.ParamMode:
			f.Mode = v.FilterMode()
		case messages.ParamCutoff:
			f.Cutoff = v.Float()
		case messages.ParamResonance:
			f.Resonance = v.Uint8()
		case messages.ParamEmphasis:
			f.Emphasis = v.Float()
		default:
			return applyStage(&f.Envelope, m)
		}

	case m.Section == messages.SectionAmp:
		if m.Parameter == messages.ParamGain {
			p.Amp.Gain = v.Int8()
			return nil
		}
		return applyStage(&p.Amp.Envelope, m)

	default:
		return unknown(m)
	}
	return nil
}

func applyStage(env *messages.Envelope, m messages.ControlMessage) error {
	stage, ok := env.Stage(m.Parameter)
	if !ok {
		return unknown(m)
	}
	*stage = m.Value.Float()
	return nil
}

func unknown(m messages.ControlMessage) error {
	return fmt.Errorf("%s.%s: %w", m.Section, m.Parameter, ErrUnknownTarget)
}
