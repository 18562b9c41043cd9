package tui

import (
	"fmt"
	"math"

	"github.com/room4-2/basslink/messages"
)

const silentGain = math.MinInt8

// control is one adjustable row of the panel. Values are handled as float64 and
// converted to the parameter's own type in set.
type control struct {
	group      string
	label      string
	min, max   float64
	step, jump float64
	choices    []string // enum controls: choices[value] is the display name

	get    func(p *messages.Patch) float64
	set    func(p *messages.Patch, v float64) messages.Intent
	format func(v float64) string
}

// adjust moves the control by steps (jump-sized when big) and writes the result into p.
// ok is false when the value did not change, so no intent is produced.
func (c control) adjust(p *messages.Patch, steps int, big bool) (messages.Intent, bool) {
	cur := c.get(p)
	delta := c.step
	if big {
		delta = c.jump
	}
	next := math.Round((cur+float64(steps)*delta)/c.step) * c.step
	next = math.Max(c.min, math.Min(c.max, next))
	if next == cur {
		return nil, false
	}
	return c.set(p, next), true
}

func (c control) display(p *messages.Patch) string {
	v := c.get(p)
	if c.choices != nil {
		if i := int(v); i >= 0 && i < len(c.choices) {
			return c.choices[i]
		}
		return "?"
	}
	return c.format(v)
}

var (
	waveNames = []string{"SIN", "SAW", "SQR"}
	modeNames = []string{"LP", "HP"}
)

func formatGain(v float64) string {
	if v <= silentGain {
		return "-inf"
	}
	return fmt.Sprintf("%+.0f dB", v)
}

func formatMillis(v float64) string { return fmt.Sprintf("%.0f ms", v) }

func formatLevel(v float64) string { return fmt.Sprintf("%.2f", v) }

// panelControls lays out the panel: three oscillators, the filter, then the amp.
func panelControls() []control {
	var cs []control
	for osc := 0; osc < 3; osc++ {
		group := fmt.Sprintf("OSC %d", osc+1)
		cs = append(cs,
			control{
				group: group, label: "wave", max: 2, step: 1, jump: 1, choices: waveNames,
				get: func(p *messages.Patch) float64 { return float64(p.Osc[osc].Waveform) },
				set: func(p *messages.Patch, v float64) messages.Intent {
					p.Osc[osc].Waveform = messages.Waveform(v)
					return messages.SetWaveform{Osc: osc, Waveform: messages.Waveform(v)}
				},
			},
			control{
				group: group, label: "coarse", min: -24, max: 24, step: 1, jump: 12,
				get: func(p *messages.Patch) float64 { return float64(p.Osc[osc].Coarse) },
				set: func(p *messages.Patch, v float64) messages.Intent {
					p.Osc[osc].Coarse = int8(v)
					return messages.SetCoarse{Osc: osc, Semitones: int8(v)}
				},
				format: func(v float64) string { return fmt.Sprintf("%+.0f st", v) },
			},
			control{
				group: group, label: "fine", min: -50, max: 50, step: 1, jump: 10,
				get: func(p *messages.Patch) float64 { return float64(p.Osc[osc].Fine) },
				set: func(p *messages.Patch, v float64) messages.Intent {
					p.Osc[osc].Fine = int8(v)
					return messages.SetFine{Osc: osc, Cents: int8(v)}
				},
				format: func(v float64) string { return fmt.Sprintf("%+.0f ct", v) },
			},
			control{
				group: group, label: "gain", min: silentGain, max: 6, step: 1, jump: 6,
				get: func(p *messages.Patch) float64 { return float64(p.Osc[osc].Gain) },
				set: func(p *messages.Patch, v float64) messages.Intent {
					p.Osc[osc].Gain = int8(v)
					return messages.SetOscGain{Osc: osc, Gain: int8(v)}
				},
				format: formatGain,
			},
		)
	}

	cs = append(cs,
		control{
			group: "FILTER", label: "mode", max: 1, step: 1, jump: 1, choices: modeNames,
			get: func(p *messages.Patch) float64 { return float64(p.Filter.Mode) },
			set: func(p *messages.Patch, v float64) messages.Intent {
				p.Filter.Mode = messages.FilterMode(v)
				return messages.SetFilterMode{Mode: messages.FilterMode(v)}
			},
		},
		control{
			group: "FILTER", label: "cutoff", min: 20, max: 20000, step: 10, jump: 1000,
			get: func(p *messages.Patch) float64 { return float64(p.Filter.Cutoff) },
			set: func(p *messages.Patch, v float64) messages.Intent {
				p.Filter.Cutoff = float32(v)
				return messages.SetCutoff{Hz: float32(v)}
			},
			format: func(v float64) string { return fmt.Sprintf("%.0f Hz", v) },
		},
		control{
			group: "FILTER", label: "resonance", min: 0, max: 255, step: 1, jump: 16,
			get: func(p *messages.Patch) float64 { return float64(p.Filter.Resonance) },
			set: func(p *messages.Patch, v float64) messages.Intent {
				p.Filter.Resonance = uint8(v)
				return messages.SetResonance{Amount: uint8(v)}
			},
			format: func(v float64) string { return fmt.Sprintf("%.0f", v) },
		},
		control{
			group: "FILTER", label: "emphasis", min: 0, max: 1, step: 0.01, jump: 0.1,
			get: func(p *messages.Patch) float64 { return float64(p.Filter.Emphasis) },
			set: func(p *messages.Patch, v float64) messages.Intent {
				p.Filter.Emphasis = float32(v)
				return messages.SetEmphasis{Amount: float32(v)}
			},
			format: formatLevel,
		},
	)
	cs = append(cs, envelopeControls("FILTER", messages.SectionFilter,
		func(p *messages.Patch) *messages.Envelope { return &p.Filter.Envelope })...)

	cs = append(cs, control{
		group: "AMP", label: "gain", min: silentGain, max: 6, step: 1, jump: 6,
		get: func(p *messages.Patch) float64 { return float64(p.Amp.Gain) },
		set: func(p *messages.Patch, v float64) messages.Intent {
			p.Amp.Gain = int8(v)
			return messages.SetAmpGain{Gain: int8(v)}
		},
		format: formatGain,
	})
	cs = append(cs, envelopeControls("AMP", messages.SectionAmp,
		func(p *messages.Patch) *messages.Envelope { return &p.Amp.Envelope })...)

	return cs
}

func envelopeControls(group string, section messages.Section, env func(*messages.Patch) *messages.Envelope) []control {
	stage := func(label string, param messages.Parameter, lo, hi, step, jump float64, format func(float64) string) control {
		return control{
			group: group, label: label, min: lo, max: hi, step: step, jump: jump,
			get: func(p *messages.Patch) float64 {
				v, _ := env(p).Stage(param)
				return float64(*v)
			},
			set: func(p *messages.Patch, v float64) messages.Intent {
				s, _ := env(p).Stage(param)
				*s = float32(v)
				return messages.SetEnvelope{Section: section, Stage: param, Value: float32(v)}
			},
			format: format,
		}
	}
	return []control{
		stage("attack", messages.ParamAttack, 20, 2000, 10, 100, formatMillis),
		stage("decay", messages.ParamDecay, 20, 2000, 10, 100, formatMillis),
		stage("sustain", messages.ParamSustain, 0, 1, 0.01, 0.1, formatLevel),
		stage("release", messages.ParamRelease, 20, 2000, 10, 100, formatMillis),
	}
}
