package messages

import "fmt"

// Intent is one parameter-change request from the control surface. The set of
// implementations is closed; the bridge encodes each intent exactly once.
type Intent interface {
	// control maps the intent to its wire message. ok is false when the intent has no
	// defined mapping.
	control() (m ControlMessage, ok bool)
}

// SetWaveform selects the waveform of oscillator Osc (0..2).
type SetWaveform struct {
	Osc      int
	Waveform Waveform
}

// SetCoarse sets the coarse pitch offset of oscillator Osc in semitones.
type SetCoarse struct {
	Osc       int
	Semitones int8
}

// SetFine sets the fine pitch offset of oscillator Osc in cents.
type SetFine struct {
	Osc   int
	Cents int8
}

// SetOscGain sets the level of oscillator Osc in dB; -128 means silent.
type SetOscGain struct {
	Osc  int
	Gain int8
}

// SetAmpGain sets the output amplifier level in dB.
type SetAmpGain struct {
	Gain int8
}

// SetCutoff sets the filter cutoff frequency in Hz.
type SetCutoff struct {
	Hz float32
}

// SetResonance sets the filter resonance.
type SetResonance struct {
	Amount uint8
}

// SetEmphasis sets the filter envelope emphasis (0..1).
type SetEmphasis struct {
	Amount float32
}

// SetFilterMode switches the filter between low-pass and high-pass.
type SetFilterMode struct {
	Mode FilterMode
}

// SetEnvelope sets one ADSR stage of the filter or amp envelope.
type SetEnvelope struct {
	Section Section
	Stage   Parameter
	Value   float32
}

// SetParameter addresses any parameter directly. Value must carry the kind the
// parameter expects.
type SetParameter struct {
	Section   Section
	Parameter Parameter
	Value     ParameterValue
}

func ui(section Section, param Parameter, value ParameterValue) ControlMessage {
	return ControlMessage{Channel: UIChannel, Section: section, Parameter: param, Value: value}
}

func oscControl(osc int, param Parameter, value ParameterValue) (ControlMessage, bool) {
	section, ok := OscSection(osc)
	if !ok {
		return ControlMessage{}, false
	}
	return ui(section, param, value), true
}

func (i SetWaveform) control() (ControlMessage, bool) {
	return oscControl(i.Osc, ParamWaveform, WaveformValue(i.Waveform))
}

func (i SetCoarse) control() (ControlMessage, bool) {
	return oscControl(i.Osc, ParamCoarse, Int8Value(i.Semitones))
}

func (i SetFine) control() (ControlMessage, bool) {
	return oscControl(i.Osc, ParamFine, Int8Value(i.Cents))
}

func (i SetOscGain) control() (ControlMessage, bool) {
	return oscControl(i.Osc, ParamGain, Int8Value(i.Gain))
}

func (i SetAmpGain) control() (ControlMessage, bool) {
	return ui(SectionAmp, ParamGain, Int8Value(i.Gain)), true
}

func (i SetCutoff) control() (ControlMessage, bool) {
	return ui(SectionFilter, ParamCutoff, FloatValue(i.Hz)), true
}

func (i SetResonance) control() (ControlMessage, bool) {
	return ui(SectionFilter, ParamResonance, Uint8Value(i.Amount)), true
}

func (i SetEmphasis) control() (ControlMessage, bool) {
	return ui(SectionFilter, ParamEmphasis, FloatValue(i.Amount)), true
}

func (i SetFilterMode) control() (ControlMessage, bool) {
	return ui(SectionFilter, ParamMode, FilterModeValue(i.Mode)), true
}

func (i SetEnvelope) control() (ControlMessage, bool) {
	if i.Section != SectionFilter && i.Section != SectionAmp {
		return ControlMessage{}, false
	}
	if !i.Stage.IsEnvelopeStage() {
		return ControlMessage{}, false
	}
	return ui(i.Section, i.Stage, FloatValue(i.Value)), true
}

func (i SetParameter) control() (ControlMessage, bool) {
	if !i.Section.Valid() || !i.Parameter.Valid() {
		return ControlMessage{}, false
	}
	if i.Value.Kind() != i.Parameter.Kind() {
		return ControlMessage{}, false
	}
	return ui(i.Section, i.Parameter, i.Value), true
}

// ControlFor maps an intent to its wire message. Intents without a mapping, including
// nil, yield Placeholder and ok=false.
func ControlFor(in Intent) (ControlMessage, bool) {
	if in == nil {
		return Placeholder(), false
	}
	m, ok := in.control()
	if !ok {
		return Placeholder(), false
	}
	return m, true
}

// Encode serializes the control message for in. It never fails: unmapped intents
// encode as the placeholder.
func Encode(in Intent) []byte {
	m, _ := ControlFor(in)
	buf, err := m.MarshalBinary()
	if err != nil {
		// unreachable: the writer is sized from ControlSize
		panic(fmt.Sprintf("messages: control layout: %v", err))
	}
	return buf
}
