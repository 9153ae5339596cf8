package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// FrameHeaderSize is the fixed header length: type, flags and a
	// big-endian uint32 payload length.
	FrameHeaderSize = 6

	// MaxPayloadSize caps the payload a header may announce.
	MaxPayloadSize = HardMaxAllocation
)

// FrameType identifies what a frame's payload holds.
type FrameType uint8

const (
	FramePatches  FrameType = 0x01 // server to client: PatchesFrame
	FrameEvent    FrameType = 0x02 // client to server: EventMessage
	FrameError    FrameType = 0x03 // either way: ErrorMessage
	FrameSnapshot FrameType = 0x04 // server to client: SnapshotMessage
)

var frameTypeNames = [...]string{
	FramePatches:  "Patches",
	FrameEvent:    "Event",
	FrameError:    "Error",
	FrameSnapshot: "Snapshot",
}

func (ft FrameType) String() string {
	if ft.Valid() {
		return frameTypeNames[ft]
	}
	return "Unknown"
}

// Valid reports whether ft is a known frame type.
func (ft FrameType) Valid() bool {
	return ft >= FramePatches && ft <= FrameSnapshot
}

// FrameFlags qualify a frame's payload.
type FrameFlags uint8

const (
	FlagFinal    FrameFlags = 0x01 // last frame of a render
	FlagResync   FrameFlags = 0x02 // snapshot sent because the client fell behind
	FlagKeyed    FrameFlags = 0x04 // patches come from the keyed differ
	FlagReserved FrameFlags = 0x80
)

// Has reports whether every bit of flag is set.
func (ff FrameFlags) Has(flag FrameFlags) bool {
	return ff&flag == flag
}

func (ff FrameFlags) String() string {
	if ff == 0 {
		return "none"
	}
	var names []string
	for _, f := range []struct {
		flag FrameFlags
		name string
	}{{FlagFinal, "final"}, {FlagResync, "resync"}, {FlagKeyed, "keyed"}, {FlagReserved, "reserved"}} {
		if ff.Has(f.flag) {
			names = append(names, f.name)
		}
	}
	if rest := ff &^ (FlagFinal | FlagResync | FlagKeyed | FlagReserved); rest != 0 {
		names = append(names, fmt.Sprintf("%#02x", uint8(rest)))
	}
	return strings.Join(names, "|")
}

var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
)

// Frame is one WebSocket message. Its wire form is
//
//	type (1 byte) | flags (1 byte) | payload length (4 bytes, big-endian) | payload
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

// NewFrame returns a frame without flags.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Payload: payload}
}

// NewFrameWithFlags returns a frame carrying flags.
func NewFrameWithFlags(ft FrameType, flags FrameFlags, payload []byte) *Frame {
	return &Frame{Type: ft, Flags: flags, Payload: payload}
}

func (f *Frame) String() string {
	return fmt.Sprintf("%s[%s] %d bytes", f.Type, f.Flags, len(f.Payload))
}

// Encode returns the header followed by the payload.
func (f *Frame) Encode() []byte {
	buf := make([]byte, FrameHeaderSize, FrameHeaderSize+len(f.Payload))
	header{f.Type, f.Flags, len(f.Payload)}.put(buf)
	return append(buf, f.Payload...)
}

type header struct {
	typ    FrameType
	flags  FrameFlags
	length int
}

func (h header) put(buf []byte) {
	buf[0] = byte(h.typ)
	buf[1] = byte(h.flags)
	binary.BigEndian.PutUint32(buf[2:FrameHeaderSize], uint32(h.length))
}

func parseHeader(data []byte) (header, error) {
	if len(data) < FrameHeaderSize {
		return header{}, &DecodeError{Offset: len(data), Err: io.ErrUnexpectedEOF}
	}
	h := header{
		typ:    FrameType(data[0]),
		flags:  FrameFlags(data[1]),
		length: int(binary.BigEndian.Uint32(data[2:FrameHeaderSize])),
	}
	if !h.typ.Valid() {
		return header{}, fmt.Errorf("%w %#02x", ErrInvalidFrameType, data[0])
	}
	if h.length > MaxPayloadSize {
		return header{}, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, h.length)
	}
	return h, nil
}

// DecodeFrame decodes data, which must hold exactly one frame. The payload
// is copied, so data may be reused.
func DecodeFrame(data []byte) (*Frame, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	end := FrameHeaderSize + h.length
	switch {
	case len(data) < end:
		return nil, &DecodeError{Offset: len(data), Err: io.ErrUnexpectedEOF}
	case len(data) > end:
		return nil, &DecodeError{Offset: end, Err: ErrTrailingBytes}
	}
	return &Frame{
		Type:    h.typ,
		Flags:   h.flags,
		Payload: append([]byte(nil), data[FrameHeaderSize:end]...),
	}, nil
}

// ReadFrame reads one frame from a byte stream.
func ReadFrame(r io.Reader) (*Frame, error) {
	var buf [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	h, err := parseHeader(buf[:])
	if err != nil {
		return nil, err
	}
	payload := make([]byte, h.length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return &Frame{Type: h.typ, Flags: h.flags, Payload: payload}, nil
}

// WriteFrame writes f to a byte stream.
func WriteFrame(w io.Writer, f *Frame) error {
	if len(f.Payload) > MaxPayloadSize {
		return ErrFrameTooLarge
	}
	_, err := w.Write(f.Encode())
	return err
}
