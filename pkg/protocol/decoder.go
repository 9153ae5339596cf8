package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Decoding limits. A length prefix is checked against them before anything
// is allocated, so a hostile frame cannot make the server reserve memory
// it never receives.
const (
	// DefaultMaxAllocation caps one string or byte field (4MB).
	DefaultMaxAllocation = 4 << 20

	// HardMaxAllocation caps a whole frame payload (16MB).
	HardMaxAllocation = 16 << 20

	// MaxCollectionCount caps children, attributes, list items and patches.
	MaxCollectionCount = 100_000
)

// Decoding errors. Decoder methods wrap them in a *DecodeError that
// records where the input went bad; match them with errors.Is.
var (
	ErrBufferTooShort     = errors.New("protocol: buffer too short")
	ErrVarintOverflow     = errors.New("protocol: varint overflow")
	ErrInvalidBool        = errors.New("protocol: invalid boolean value")
	ErrAllocationTooLarge = errors.New("protocol: allocation size exceeds limit")
	ErrCollectionTooLarge = errors.New("protocol: collection count exceeds limit")
	ErrTrailingBytes      = errors.New("protocol: trailing bytes after message")
)

// DecodeError is a decoding failure at a byte offset of the input.
type DecodeError struct {
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v at offset %d", e.Err, e.Offset)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decoder reads wire values from a byte slice.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder returns a Decoder reading buf from the start.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.buf) - d.pos }

// EOF reports whether every byte has been read.
func (d *Decoder) EOF() bool { return d.pos >= len(d.buf) }

func (d *Decoder) fail(err error) error {
	return &DecodeError{Offset: d.pos, Err: err}
}

// take returns the next n bytes, aliasing the input.
func (d *Decoder) take(n int) ([]byte, error) {
	if n < 0 || n > d.Remaining() {
		return nil, d.fail(io.ErrUnexpectedEOF)
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// ReadByte reads one byte.
func (d *Decoder) ReadByte() (byte, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBytes reads exactly n bytes. The result aliases the input.
func (d *Decoder) ReadBytes(n int) ([]byte, error) {
	return d.take(n)
}

// ReadUvarint reads an unsigned LEB128 varint.
func (d *Decoder) ReadUvarint() (uint64, error) {
	v, n := binary.Uvarint(d.buf[d.pos:])
	switch {
	case n == 0:
		return 0, d.fail(io.ErrUnexpectedEOF)
	case n < 0:
		return 0, d.fail(ErrVarintOverflow)
	}
	d.pos += n
	return v, nil
}

// ReadSvarint reads a zigzag encoded varint.
func (d *Decoder) ReadSvarint() (int64, error) {
	v, n := binary.Varint(d.buf[d.pos:])
	switch {
	case n == 0:
		return 0, d.fail(io.ErrUnexpectedEOF)
	case n < 0:
		return 0, d.fail(ErrVarintOverflow)
	}
	d.pos += n
	return v, nil
}

// ReadString reads a length-prefixed string of at most
// DefaultMaxAllocation bytes.
func (d *Decoder) ReadString() (string, error) {
	b, err := d.readLen()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadLenBytes reads length-prefixed bytes into a fresh slice.
func (d *Decoder) ReadLenBytes() ([]byte, error) {
	b, err := d.readLen()
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

func (d *Decoder) readLen() ([]byte, error) {
	length, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	// An oversized prefix is hostile rather than truncated.
	if length > DefaultMaxAllocation {
		return nil, d.fail(ErrAllocationTooLarge)
	}
	return d.take(int(length))
}

// ReadBool reads a boolean byte. Anything but 0x00 or 0x01 is rejected.
func (d *Decoder) ReadBool() (bool, error) {
	b, err := d.ReadByte()
	if err != nil {
		return false, err
	}
	if b > 1 {
		d.pos--
		return false, d.fail(ErrInvalidBool)
	}
	return b == 1, nil
}

// ReadUint32 reads a big-endian uint32.
func (d *Decoder) ReadUint32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadUint64 reads a big-endian uint64.
func (d *Decoder) ReadUint64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadFloat64 reads big-endian IEEE 754 bits.
func (d *Decoder) ReadFloat64() (float64, error) {
	v, err := d.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadCollectionCount reads an item count. Every item takes at least one
// byte, so a count larger than the remaining input is rejected up front.
func (d *Decoder) ReadCollectionCount() (int, error) {
	count, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if count > MaxCollectionCount {
		return 0, d.fail(ErrCollectionTooLarge)
	}
	if count > uint64(d.Remaining()) {
		return 0, d.fail(io.ErrUnexpectedEOF)
	}
	return int(count), nil
}

// finish rejects input left over after a complete message.
func (d *Decoder) finish() error {
	if !d.EOF() {
		return d.fail(ErrTrailingBytes)
	}
	return nil
}
