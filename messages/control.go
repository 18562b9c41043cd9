package messages

import (
	"errors"
	"fmt"
)

// ControlSize is the fixed encoded size of a ControlMessage.
const ControlSize = 16

// ErrSize is returned when a buffer does not match a message's fixed size.
var ErrSize = errors.New("unexpected message size")

// ControlMessage carries one parameter change to the engine.
//
// Layout:
//
//	[0]     channel
//	[1:4]   reserved (zero)
//	[4:8]   section code     uint32
//	[8:12]  parameter code   uint32
//	[12:16] value union      int8 | uint8 | float32 | enum uint32
type ControlMessage struct {
	Channel   uint8
	Section   Section
	Parameter Parameter
	Value     ParameterValue
}

// Placeholder is the message sent for intents with no defined mapping: zero section and
// parameter codes, zero payload.
func Placeholder() ControlMessage {
	return ControlMessage{Channel: UIChannel}
}

// IsPlaceholder reports whether m carries the all-zero target and payload.
func (m ControlMessage) IsPlaceholder() bool {
	return m.Section.Code() == 0 && m.Parameter.Code() == 0 && m.Value.Bits() == 0
}

// MarshalBinary writes m in wire layout. It never fails for a well-formed message; the
// error return satisfies encoding.BinaryMarshaler.
func (m ControlMessage) MarshalBinary() ([]byte, error) {
	w := newWriter(ControlSize)
	w.u8(m.Channel)
	w.pad(3)
	w.u32(m.Section.Code())
	w.u32(m.Parameter.Code())
	w.u32(m.Value.Bits())
	return w.bytes()
}

// DecodeControl parses a control message as the engine receives it.
func DecodeControl(buf []byte) (ControlMessage, error) {
	if len(buf) != ControlSize {
		return ControlMessage{}, fmt.Errorf("control message: %w: got %d bytes, want %d", ErrSize, len(buf), ControlSize)
	}

	r := newReader(buf)
	channel := r.u8()
	r.skip(3)
	sectionCode := r.u32()
	paramCode := r.u32()
	bits := r.u32()
	if r.err != nil {
		return ControlMessage{}, r.err
	}

	section, ok := SectionFromCode(sectionCode)
	if !ok {
		return ControlMessage{}, fmt.Errorf("control message: unknown section code %d", sectionCode)
	}
	param, ok := ParameterFromCode(paramCode)
	if !ok {
		return ControlMessage{}, fmt.Errorf("control message: unknown parameter code %d", paramCode)
	}

	return ControlMessage{
		Channel:   channel,
		Section:   section,
		Parameter: param,
		Value:     rawValue(param.Kind(), bits),
	}, nil
}

func (m ControlMessage) String() string {
	return fmt.Sprintf("ch=%d %s.%s=%s", m.Channel, m.Section, m.Parameter, m.Value)
}
