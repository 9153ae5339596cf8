package protocol

import "github.com/vango-dev/vtree/pkg/vdom"

// EventMessage is sent by a client when an event fires on a node that
// carries a listener. The server resolves Path against its current tree.
type EventMessage struct {
	Path    vdom.Path  // Target node
	Event   string     // Event name without the "on" prefix ("click")
	Payload vdom.Value // Event data
}

// EncodeEvent encodes an EventMessage to bytes.
func EncodeEvent(em *EventMessage) []byte {
	e := NewEncoder()
	EncodeEventTo(e, em)
	return e.Bytes()
}

// EncodeEventTo encodes an EventMessage using the provided encoder.
func EncodeEventTo(e *Encoder, em *EventMessage) {
	EncodePath(e, em.Path)
	e.WriteString(em.Event)
	EncodeValue(e, em.Payload)
}

// DecodeEvent decodes an EventMessage from bytes.
func DecodeEvent(data []byte) (*EventMessage, error) {
	d := NewDecoder(data)
	em, err := DecodeEventFrom(d)
	if err != nil {
		return nil, err
	}
	return em, d.finish()
}

// DecodeEventFrom decodes an EventMessage from a decoder.
func DecodeEventFrom(d *Decoder) (*EventMessage, error) {
	path, err := DecodePath(d)
	if err != nil {
		return nil, err
	}
	event, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	payload, err := DecodeValue(d)
	if err != nil {
		return nil, err
	}
	return &EventMessage{Path: path, Event: event, Payload: payload}, nil
}

// SnapshotMessage carries a whole tree, sent when a client connects or
// after it fell out of sequence.
type SnapshotMessage struct {
	Seq  uint64
	Root *vdom.Node
}

// EncodeSnapshot encodes a SnapshotMessage to bytes.
func EncodeSnapshot(sm *SnapshotMessage) []byte {
	e := NewEncoderWithCap(1024)
	e.WriteUvarint(sm.Seq)
	EncodeNode(e, sm.Root)
	return e.Bytes()
}

// DecodeSnapshot decodes a SnapshotMessage from bytes.
func DecodeSnapshot(data []byte) (*SnapshotMessage, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	root, err := DecodeNode(d)
	if err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &SnapshotMessage{Seq: seq, Root: root}, nil
}
