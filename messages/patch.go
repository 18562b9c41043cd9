package messages

// PatchSize is the fixed encoded size of a Patch snapshot.
const PatchSize = 76

// Envelope is an ADSR envelope. Times are in milliseconds, sustain is a 0..1 level.
type Envelope struct {
	Attack  float32 `json:"attack"`
	Decay   float32 `json:"decay"`
	Sustain float32 `json:"sustain"`
	Release float32 `json:"release"`
}

// Oscillator holds the parameters of one oscillator.
type Oscillator struct {
	Waveform Waveform `json:"waveform"`
	Coarse   int8     `json:"coarse"`
	Fine     int8     `json:"fine"`
	Gain     int8     `json:"gain"`
}

// Filter holds the filter section including its envelope.
type Filter struct {
	Mode      FilterMode `json:"mode"`
	Cutoff    float32    `json:"cutoff"`
	Resonance uint8      `json:"resonance"`
	Emphasis  float32    `json:"emphasis"`
	Envelope  Envelope   `json:"envelope"`
}

// Amp holds the amplifier section including its envelope.
type Amp struct {
	Gain     int8     `json:"gain"`
	Envelope Envelope `json:"envelope"`
}

// Patch is the complete engine state pushed to the UI.
//
// Layout (offsets in bytes):
//
//	 0 osc1: waveform u32, coarse i8, fine i8, gain i8, pad 1
//	 8 osc2: same
//	16 osc3: same
//	24 filter mode u32
//	28 filter cutoff f32
//	32 filter resonance u8, pad 3
//	36 filter emphasis f32
//	40 filter attack, decay, sustain, release f32
//	56 amp gain i8, pad 3
//	60 amp attack, decay, sustain, release f32
type Patch struct {
	Osc    [3]Oscillator `json:"osc"`
	Filter Filter        `json:"filter"`
	Amp    Amp           `json:"amp"`
}

// DefaultEnvelope is the envelope a fresh patch starts with.
func DefaultEnvelope() Envelope {
	return Envelope{Attack: 20, Decay: 200, Sustain: 0.5, Release: 500}
}

// DefaultPatch returns the engine's power-on patch.
func DefaultPatch() Patch {
	return Patch{
		Filter: Filter{Envelope: DefaultEnvelope()},
		Amp:    Amp{Envelope: DefaultEnvelope()},
	}
}

func (e Envelope) write(w *writer) {
	w.f32(e.Attack)
	w.f32(e.Decay)
	w.f32(e.Sustain)
	w.f32(e.Release)
}

func readEnvelope(r *reader) Envelope {
	return Envelope{
		Attack:  r.f32(),
		Decay:   r.f32(),
		Sustain: r.f32(),
		Release: r.f32(),
	}
}

// MarshalBinary writes p in wire layout.
func (p Patch) MarshalBinary() ([]byte, error) {
	w := newWriter(PatchSize)
	for _, osc := range p.Osc {
		w.u32(osc.Waveform.Code())
		w.i8(osc.Coarse)
		w.i8(osc.Fine)
		w.i8(osc.Gain)
		w.pad(1)
	}

	w.u32(p.Filter.Mode.Code())
	w.f32(p.Filter.Cutoff)
	w.u8(p.Filter.Resonance)
	w.pad(3)
	w.f32(p.Filter.Emphasis)
	p.Filter.Envelope.write(w)

	w.i8(p.Amp.Gain)
	w.pad(3)
	p.Amp.Envelope.write(w)

	return w.bytes()
}

// DecodePatch parses a snapshot. Buffers of any length other than PatchSize are rejected
// without being read.
func DecodePatch(buf []byte) (Patch, bool) {
	if len(buf) != PatchSize {
		return Patch{}, false
	}

	var p Patch
	r := newReader(buf)
	for i := range p.Osc {
		p.Osc[i].Waveform = WaveformFromCode(r.u32())
		p.Osc[i].Coarse = r.i8()
		p.Osc[i].Fine = r.i8()
		p.Osc[i].Gain = r.i8()
		r.skip(1)
	}

	p.Filter.Mode = FilterModeFromCode(r.u32())
	p.Filter.Cutoff = r.f32()
	p.Filter.Resonance = r.u8()
	r.skip(3)
	p.Filter.Emphasis = r.f32()
	p.Filter.Envelope = readEnvelope(r)

	p.Amp.Gain = r.i8()
	r.skip(3)
	p.Amp.Envelope = readEnvelope(r)

	if r.err != nil {
		return Patch{}, false
	}
	return p, true
}

// EnvelopeFor returns the envelope owned by section, if any.
func (p *Patch) EnvelopeFor(section Section) (*Envelope, bool) {
	switch section {
	case SectionFilter:
		return &p.Filter.Envelope, true
	case SectionAmp:
		return &p.Amp.Envelope, true
	}
	return nil, false
}

// Stage returns a pointer to the ADSR stage selected by param.
func (e *Envelope) Stage(param Parameter) (*float32, bool) {
	switch param {
	case ParamAttack:
		return &e.Attack, true
	case ParamDecay:
		return &e.Decay, true
	case ParamSustain:
		return &e.Sustain, true
	case ParamRelease:
		return &e.Release, true
	}
	return nil, false
}
