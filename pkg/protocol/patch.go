package protocol

import (
	"errors"
	"fmt"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// ErrUnknownPatchOp is returned for a patch op byte outside the known set.
var ErrUnknownPatchOp = errors.New("protocol: unknown patch op")

// PatchesFrame is a sequenced batch of patches produced by one render.
type PatchesFrame struct {
	Seq     uint64
	Patches []vdom.Patch
}

// EncodePatches encodes a patches frame to bytes.
func EncodePatches(pf *PatchesFrame) []byte {
	e := NewEncoder()
	EncodePatchesTo(e, pf)
	return e.Bytes()
}

// EncodePatchesTo encodes a patches frame using the provided encoder.
func EncodePatchesTo(e *Encoder, pf *PatchesFrame) {
	e.WriteUvarint(pf.Seq)
	e.WriteUvarint(uint64(len(pf.Patches)))

	for i := range pf.Patches {
		EncodePatch(e, &pf.Patches[i])
	}
}

// EncodePatch encodes a single patch: op byte, target path, then the
// op-specific payload.
func EncodePatch(e *Encoder, p *vdom.Patch) {
	e.WriteByte(byte(p.Op))
	EncodePath(e, p.Path)

	switch p.Op {
	case vdom.PatchReplace, vdom.PatchAppendChild:
		EncodeNode(e, p.Node)

	case vdom.PatchReplaceText:
		e.WriteString(p.Text)

	case vdom.PatchSetAttr:
		e.WriteString(p.Name)
		EncodeValue(e, p.Value)

	case vdom.PatchRemoveAttr:
		e.WriteString(p.Name)

	case vdom.PatchRemoveChild:
		e.WriteUvarint(uint64(p.Index))

	case vdom.PatchInsertChild:
		e.WriteUvarint(uint64(p.Index))
		EncodeNode(e, p.Node)

	case vdom.PatchMoveChild:
		e.WriteUvarint(uint64(p.From))
		e.WriteUvarint(uint64(p.Index))
	}
}

// DecodePatches decodes a patches frame from bytes.
func DecodePatches(data []byte) (*PatchesFrame, error) {
	d := NewDecoder(data)
	pf, err := DecodePatchesFrom(d)
	if err != nil {
		return nil, err
	}
	return pf, d.finish()
}

// DecodePatchesFrom decodes a patches frame from a decoder.
func DecodePatchesFrom(d *Decoder) (*PatchesFrame, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}

	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}

	patches := make([]vdom.Patch, count)
	for i := range patches {
		if err := DecodePatch(d, &patches[i]); err != nil {
			return nil, fmt.Errorf("patch %d: %w", i, err)
		}
	}

	return &PatchesFrame{
		Seq:     seq,
		Patches: patches,
	}, nil
}

// DecodePatch decodes a single patch into p.
func DecodePatch(d *Decoder, p *vdom.Patch) error {
	opByte, err := d.ReadByte()
	if err != nil {
		return err
	}
	p.Op = vdom.PatchOp(opByte)

	p.Path, err = DecodePath(d)
	if err != nil {
		return err
	}

	switch p.Op {
	case vdom.PatchReplace, vdom.PatchAppendChild:
		p.Node, err = decodeNodeWithDepth(d, len(p.Path))
		if err == nil && p.Node == nil {
			err = fmt.Errorf("protocol: %s without a node", p.Op)
		}

	case vdom.PatchReplaceText:
		p.Text, err = d.ReadString()

	case vdom.PatchSetAttr:
		p.Name, err = d.ReadString()
		if err != nil {
			return err
		}
		p.Value, err = DecodeValue(d)

	case vdom.PatchRemoveAttr:
		p.Name, err = d.ReadString()

	case vdom.PatchRemoveChild:
		p.Index, err = readIndex(d)

	case vdom.PatchInsertChild:
		p.Index, err = readIndex(d)
		if err != nil {
			return err
		}
		p.Node, err = decodeNodeWithDepth(d, len(p.Path))
		if err == nil && p.Node == nil {
			err = fmt.Errorf("protocol: %s without a node", p.Op)
		}

	case vdom.PatchMoveChild:
		p.From, err = readIndex(d)
		if err != nil {
			return err
		}
		p.Index, err = readIndex(d)

	default:
		return fmt.Errorf("%w: 0x%02x", ErrUnknownPatchOp, opByte)
	}
	return err
}

func readIndex(d *Decoder) (int, error) {
	v, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if v > MaxCollectionCount {
		return 0, ErrCollectionTooLarge
	}
	return int(v), nil
}
