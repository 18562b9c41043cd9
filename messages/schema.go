// Package messages implements the binary wire schema shared with the synthesis engine.
//
// Two fixed-layout messages cross the link: a ControlMessage (UI to engine) carrying one
// parameter change, and a Patch (engine to UI) carrying the full parameter set. Both are
// little-endian with explicit padding; see the layout comments on each type.
package messages

import "fmt"

// UIChannel identifies messages that originate from the remote control surface.
const UIChannel uint8 = 16

// Section is a destination group of parameters.
type Section int

const (
	SectionOsc1 Section = iota
	SectionOsc2
	SectionOsc3
	SectionFilter
	SectionAmp
	SectionGlobal
)

// Parameter identifies one parameter inside a section.
type Parameter int

const (
	ParamWaveform Parameter = iota
	ParamCoarse
	ParamFine
	ParamGain
	ParamCutoff
	ParamResonance
	ParamEmphasis
	ParamMode
	ParamAttack
	ParamDecay
	ParamSustain
	ParamRelease
)

// Waveform selects an oscillator shape.
type Waveform int

const (
	WaveSin Waveform = iota
	WaveSaw
	WaveSqr
)

// FilterMode selects the filter response.
type FilterMode int

const (
	FilterLP FilterMode = iota
	FilterHP
)

// Wire codes assigned by the engine's message header.
var (
	sectionCodes = map[Section]uint32{
		SectionOsc1:   0,
		SectionOsc2:   1,
		SectionOsc3:   2,
		SectionFilter: 3,
		SectionAmp:    4,
		SectionGlobal: 5,
	}
	parameterCodes = map[Parameter]uint32{
		ParamWaveform:  0,
		ParamCoarse:    1,
		ParamFine:      2,
		ParamGain:      3,
		ParamCutoff:    4,
		ParamResonance: 5,
		ParamEmphasis:  6,
		ParamMode:      7,
		ParamAttack:    8,
		ParamDecay:     9,
		ParamSustain:   10,
		ParamRelease:   11,
	}
	waveformCodes = map[Waveform]uint32{
		WaveSin: 0,
		WaveSaw: 1,
		WaveSqr: 2,
	}
	filterModeCodes = map[FilterMode]uint32{
		FilterLP: 0,
		FilterHP: 1,
	}

	sectionsByCode    = invert(sectionCodes)
	parametersByCode  = invert(parameterCodes)
	waveformsByCode   = invert(waveformCodes)
	filterModesByCode = invert(filterModeCodes)
)

func invert[K comparable](m map[K]uint32) map[uint32]K {
	out := make(map[uint32]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// Code returns the wire code for s. Call Valid first; an unknown section has no code.
func (s Section) Code() uint32 { return sectionCodes[s] }

// Valid reports whether s has a wire code.
func (s Section) Valid() bool {
	_, ok := sectionCodes[s]
	return ok
}

// SectionFromCode maps a wire code back to a Section.
func SectionFromCode(code uint32) (Section, bool) {
	s, ok := sectionsByCode[code]
	return s, ok
}

// OscSection returns the section for oscillator index 0..2.
func OscSection(osc int) (Section, bool) {
	switch osc {
	case 0:
		return SectionOsc1, true
	case 1:
		return SectionOsc2, true
	case 2:
		return SectionOsc3, true
	}
	return SectionGlobal, false
}

// IsOscillator reports whether s is one of the three oscillator sections.
func (s Section) IsOscillator() bool {
	return s == SectionOsc1 || s == SectionOsc2 || s == SectionOsc3
}

func (s Section) String() string {
	switch s {
	case SectionOsc1:
		return "osc1"
	case SectionOsc2:
		return "osc2"
	case SectionOsc3:
		return "osc3"
	case SectionFilter:
		return "filter"
	case SectionAmp:
		return "amp"
	case SectionGlobal:
		return "global"
	}
	return fmt.Sprintf("section(%d)", int(s))
}

// ParseSection accepts the names produced by Section.String.
func ParseSection(name string) (Section, error) {
	for s := range sectionCodes {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown section %q", name)
}

// Code returns the wire code for p. Call Valid first; an unknown parameter has no code.
func (p Parameter) Code() uint32 { return parameterCodes[p] }

// Valid reports whether p has a wire code.
func (p Parameter) Valid() bool {
	_, ok := parameterCodes[p]
	return ok
}

// ParameterFromCode maps a wire code back to a Parameter.
func ParameterFromCode(code uint32) (Parameter, bool) {
	p, ok := parametersByCode[code]
	return p, ok
}

// Kind returns which union field carries the value of p.
func (p Parameter) Kind() ValueKind {
	switch p {
	case ParamWaveform:
		return KindWaveform
	case ParamCoarse, ParamFine, ParamGain:
		return KindInt8
	case ParamResonance:
		return KindUint8
	case ParamMode:
		return KindFilterMode
	}
	return KindFloat
}

func (p Parameter) String() string {
	switch p {
	case ParamWaveform:
		return "waveform"
	case ParamCoarse:
		return "coarse"
	case ParamFine:
		return "fine"
	case ParamGain:
		return "gain"
	case ParamCutoff:
		return "cutoff"
	case ParamResonance:
		return "resonance"
	case ParamEmphasis:
		return "emphasis"
	case ParamMode:
		return "mode"
	case ParamAttack:
		return "attack"
	case ParamDecay:
		return "decay"
	case ParamSustain:
		return "sustain"
	case ParamRelease:
		return "release"
	}
	return fmt.Sprintf("parameter(%d)", int(p))
}

// ParseParameter accepts the names produced by Parameter.String.
func ParseParameter(name string) (Parameter, error) {
	for p := range parameterCodes {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown parameter %q", name)
}

// IsEnvelopeStage reports whether p addresses an ADSR stage.
func (p Parameter) IsEnvelopeStage() bool {
	return p == ParamAttack || p == ParamDecay || p == ParamSustain || p == ParamRelease
}

// Code returns the wire code for w.
func (w Waveform) Code() uint32 {
	if code, ok := waveformCodes[w]; ok {
		return code
	}
	return uint32(w)
}

// WaveformFromCode maps a wire code back to a Waveform. Unknown codes are passed through
// unchanged so a snapshot never fails on an enum the client does not know.
func WaveformFromCode(code uint32) Waveform {
	if w, ok := waveformsByCode[code]; ok {
		return w
	}
	return Waveform(code)
}

func (w Waveform) String() string {
	switch w {
	case WaveSin:
		return "sin"
	case WaveSaw:
		return "saw"
	case WaveSqr:
		return "sqr"
	}
	return fmt.Sprintf("waveform(%d)", int(w))
}

// Code returns the wire code for m.
func (m FilterMode) Code() uint32 {
	if code, ok := filterModeCodes[m]; ok {
		return code
	}
	return uint32(m)
}

// FilterModeFromCode maps a wire code back to a FilterMode, passing unknown codes through.
func FilterModeFromCode(code uint32) FilterMode {
	if m, ok := filterModesByCode[code]; ok {
		return m
	}
	return FilterMode(code)
}

func (m FilterMode) String() string {
	switch m {
	case FilterLP:
		return "lp"
	case FilterHP:
		return "hp"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// MarshalText renders w by name for JSON exports.
func (w Waveform) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

// UnmarshalText parses a waveform name.
func (w *Waveform) UnmarshalText(text []byte) error {
	for c := range waveformCodes {
		if c.String() == string(text) {
			*w = c
			return nil
		}
	}
	return fmt.Errorf("unknown waveform %q", text)
}

// MarshalText renders m by name for JSON exports.
func (m FilterMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText parses a filter mode name.
func (m *FilterMode) UnmarshalText(text []byte) error {
	for c := range filterModeCodes {
		if c.String() == string(text) {
			*m = c
			return nil
		}
	}
	return fmt.Errorf("unknown filter mode %q", text)
}
