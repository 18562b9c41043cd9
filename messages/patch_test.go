package messages

import (
	"encoding/binary"
	"math"
	"testing"
)

func samplePatch() Patch {
	return Patch{
		Osc: [3]Oscillator{
			{Waveform: WaveSaw, Coarse: -24, Fine: 50, Gain: 6},
			{Waveform: WaveSqr, Coarse: 12, Fine: -7, Gain: math.MinInt8},
			{Waveform: WaveSin, Coarse: 0, Fine: 1, Gain: -12},
		},
		Filter: Filter{
			Mode:      FilterHP,
			Cutoff:    880.25,
			Resonance: 200,
			Emphasis:  0.33,
			Envelope:  Envelope{Attack: 12, Decay: 340, Sustain: 0.6, Release: 1999},
		},
		Amp: Amp{
			Gain:     -3,
			Envelope: Envelope{Attack: 20, Decay: 200, Sustain: 0.5, Release: 500},
		},
	}
}

func TestPatchRoundTrip(t *testing.T) {
	want := samplePatch()
	buf, err := want.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(buf) != PatchSize {
		t.Fatalf("len = %d, want %d", len(buf), PatchSize)
	}

	got, ok := DecodePatch(buf)
	if !ok {
		t.Fatal("DecodePatch rejected a full-size buffer")
	}
	if got != want {
		t.Errorf("DecodePatch = %+v\nwant %+v", got, want)
	}
}

func TestPatchLayoutOffsets(t *testing.T) {
	buf, err := samplePatch().MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	if got := binary.LittleEndian.Uint32(buf[8:]); got != WaveSqr.Code() {
		t.Errorf("osc2 waveform = %d, want %d", got, WaveSqr.Code())
	}
	if got := int8(buf[13]); got != 12 {
		t.Errorf("osc2 coarse = %d, want 12", got)
	}
	if got := binary.LittleEndian.Uint32(buf[24:]); got != FilterHP.Code() {
		t.Errorf("filter mode = %d, want %d", got, FilterHP.Code())
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[28:])); got != 880.25 {
		t.Errorf("cutoff = %v, want 880.25", got)
	}
	if buf[32] != 200 {
		t.Errorf("resonance = %d, want 200", buf[32])
	}
	if got := int8(buf[56]); got != -3 {
		t.Errorf("amp gain = %d, want -3", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[72:])); got != 500 {
		t.Errorf("amp release = %v, want 500", got)
	}
	for _, off := range []int{7, 15, 23, 33, 34, 35, 57, 58, 59} {
		if buf[off] != 0 {
			t.Errorf("padding byte %d = %d, want 0", off, buf[off])
		}
	}
}

func TestDecodePatchRejectsWrongLength(t *testing.T) {
	full, err := samplePatch().MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	for _, n := range []int{0, 1, ControlSize, PatchSize - 1} {
		if _, ok := DecodePatch(full[:n]); ok {
			t.Errorf("DecodePatch(len=%d) ok = true, want false", n)
		}
	}
	if _, ok := DecodePatch(nil); ok {
		t.Error("DecodePatch(nil) ok = true, want false")
	}
	if _, ok := DecodePatch(append(full, 0)); ok {
		t.Errorf("DecodePatch(len=%d) ok = true, want false", PatchSize+1)
	}
}

func TestDecodePatchIgnoresPadding(t *testing.T) {
	buf, err := samplePatch().MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	buf[7] = 0xff
	buf[33] = 0xff
	buf[59] = 0xff

	got, ok := DecodePatch(buf)
	if !ok {
		t.Fatal("DecodePatch rejected a full-size buffer")
	}
	if got != samplePatch() {
		t.Errorf("padding leaked into fields: %+v", got)
	}
}

func TestDecodePatchKeepsUnknownEnumCodes(t *testing.T) {
	buf, err := DefaultPatch().MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	binary.LittleEndian.PutUint32(buf[0:], 7)

	got, ok := DecodePatch(buf)
	if !ok {
		t.Fatal("DecodePatch rejected a full-size buffer")
	}
	if got.Osc[0].Waveform.Code() != 7 {
		t.Errorf("waveform code = %d, want 7", got.Osc[0].Waveform.Code())
	}
}

func TestEnvelopeStageAccess(t *testing.T) {
	p := DefaultPatch()
	env, ok := p.EnvelopeFor(SectionAmp)
	if !ok {
		t.Fatal("EnvelopeFor(amp) not found")
	}
	stage, ok := env.Stage(ParamRelease)
	if !ok {
		t.Fatal("Stage(release) not found")
	}
	*stage = 42
	if p.Amp.Envelope.Release != 42 {
		t.Errorf("amp release = %v, want 42", p.Amp.Envelope.Release)
	}
	if _, ok := p.EnvelopeFor(SectionOsc1); ok {
		t.Error("EnvelopeFor(osc1) should not exist")
	}
	if _, ok := env.Stage(ParamCutoff); ok {
		t.Error("Stage(cutoff) should not exist")
	}
}
