package messages

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortBuffer is returned when a read or write would run past the end of the buffer.
var ErrShortBuffer = errors.New("buffer too short")

// writer appends fixed-width little-endian fields into a preallocated buffer.
type writer struct {
	buf []byte
	off int
	err error
}

func newWriter(size int) *writer {
	return &writer{buf: make([]byte, size)}
}

func (w *writer) reserve(n int) []byte {
	if w.err != nil {
		return nil
	}
	if w.off+n > len(w.buf) {
		w.err = ErrShortBuffer
		return nil
	}
	b := w.buf[w.off : w.off+n]
	w.off += n
	return b
}

func (w *writer) u8(v uint8) {
	if b := w.reserve(1); b != nil {
		b[0] = v
	}
}

func (w *writer) i8(v int8) { w.u8(uint8(v)) }

func (w *writer) u32(v uint32) {
	if b := w.reserve(4); b != nil {
		binary.LittleEndian.PutUint32(b, v)
	}
}

func (w *writer) f32(v float32) { w.u32(math.Float32bits(v)) }

// pad skips n bytes, leaving them zero.
func (w *writer) pad(n int) { w.reserve(n) }

func (w *writer) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if w.off != len(w.buf) {
		return nil, ErrShortBuffer
	}
	return w.buf, nil
}

// reader consumes fixed-width little-endian fields; once a read fails every later read
// returns zero and err is set.
type reader struct {
	buf []byte
	off int
	err error
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.buf) {
		r.err = ErrShortBuffer
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) i8() int8 { return int8(r.u8()) }

func (r *reader) u32() uint32 {
	if b := r.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *reader) f32() float32 { return math.Float32frombits(r.u32()) }

func (r *reader) skip(n int) { r.take(n) }
