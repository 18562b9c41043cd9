package messages

import (
	"fmt"
	"math"
	"strconv"
)

// ValueKind names the active field of the value union.
type ValueKind int

const (
	KindInt8 ValueKind = iota
	KindUint8
	KindFloat
	KindWaveform
	KindFilterMode
)

func (k ValueKind) String() string {
	switch k {
	case KindInt8:
		return "int8"
	case KindUint8:
		return "uint8"
	case KindFloat:
		return "float"
	case KindWaveform:
		return "waveform"
	case KindFilterMode:
		return "filter_mode"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParameterValue is the tagged value union. bits holds the 4 raw union bytes as a
// little-endian word, exactly as they travel on the wire.
type ParameterValue struct {
	kind ValueKind
	bits uint32
}

func Int8Value(v int8) ParameterValue {
	return ParameterValue{kind: KindInt8, bits: uint32(uint8(v))}
}

func Uint8Value(v uint8) ParameterValue {
	return ParameterValue{kind: KindUint8, bits: uint32(v)}
}

func FloatValue(v float32) ParameterValue {
	return ParameterValue{kind: KindFloat, bits: math.Float32bits(v)}
}

func WaveformValue(w Waveform) ParameterValue {
	return ParameterValue{kind: KindWaveform, bits: w.Code()}
}

func FilterModeValue(m FilterMode) ParameterValue {
	return ParameterValue{kind: KindFilterMode, bits: m.Code()}
}

// rawValue reinterprets union bytes under the given kind.
func rawValue(kind ValueKind, bits uint32) ParameterValue {
	return ParameterValue{kind: kind, bits: bits}
}

func (v ParameterValue) Kind() ValueKind { return v.kind }

// Bits returns the raw union word.
func (v ParameterValue) Bits() uint32 { return v.bits }

func (v ParameterValue) Int8() int8 { return int8(uint8(v.bits)) }

func (v ParameterValue) Uint8() uint8 { return uint8(v.bits) }

func (v ParameterValue) Float() float32 { return math.Float32frombits(v.bits) }

func (v ParameterValue) Waveform() Waveform { return WaveformFromCode(v.bits) }

func (v ParameterValue) FilterMode() FilterMode { return FilterModeFromCode(v.bits) }

func (v ParameterValue) String() string {
	switch v.kind {
	case KindInt8:
		return fmt.Sprintf("%d", v.Int8())
	case KindUint8:
		return fmt.Sprintf("%d", v.Uint8())
	case KindFloat:
		return fmt.Sprintf("%g", v.Float())
	case KindWaveform:
		return v.Waveform().String()
	case KindFilterMode:
		return v.FilterMode().String()
	}
	return fmt.Sprintf("0x%08x", v.bits)
}

// ParseValue reads text as a value of the kind param expects, e.g. "-12" for coarse,
// "880" for cutoff, "saw" for waveform.
func ParseValue(param Parameter, text string) (ParameterValue, error) {
	switch param.Kind() {
	case KindInt8:
		n, err := strconv.ParseInt(text, 10, 8)
		if err != nil {
			return ParameterValue{}, fmt.Errorf("%s: %w", param, err)
		}
		return Int8Value(int8(n)), nil
	case KindUint8:
		n, err := strconv.ParseUint(text, 10, 8)
		if err != nil {
			return ParameterValue{}, fmt.Errorf("%s: %w", param, err)
		}
		return Uint8Value(uint8(n)), nil
	case KindWaveform:
		var w Waveform
		if err := w.UnmarshalText([]byte(text)); err != nil {
			return ParameterValue{}, err
		}
		return WaveformValue(w), nil
	case KindFilterMode:
		var m FilterMode
		if err := m.UnmarshalText([]byte(text)); err != nil {
			return ParameterValue{}, err
		}
		return FilterModeValue(m), nil
	}
	f, err := strconv.ParseFloat(text, 32)
	if err != nil {
		return ParameterValue{}, fmt.Errorf("%s: %w", param, err)
	}
	return FloatValue(float32(f)), nil
}
