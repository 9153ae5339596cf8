package protocol

import (
	"errors"
	"fmt"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// ErrUnknownNodeKind is returned for a node kind byte outside the known set.
var ErrUnknownNodeKind = errors.New("protocol: unknown node kind")

// nullNode marks an absent node.
const nullNode = 0xFF

// EncodeNode writes a tree in pre-order.
//
//	Element [0x00][tag][key][attr count]([name][value])...[child count][node...]
//	Text    [0x01][text]
//	nil     [0xFF]
func EncodeNode(e *Encoder, n *vdom.Node) {
	if n == nil {
		e.WriteByte(nullNode)
		return
	}

	e.WriteByte(byte(n.Kind()))

	switch n.Kind() {
	case vdom.KindElement:
		e.WriteString(n.Tag())
		e.WriteString(n.Key())

		attrs := n.Attrs()
		e.WriteUvarint(uint64(len(attrs)))
		for _, a := range attrs {
			e.WriteString(a.Name)
			EncodeValue(e, a.Value)
		}

		e.WriteUvarint(uint64(n.NumChildren()))
		for i := 0; i < n.NumChildren(); i++ {
			EncodeNode(e, n.Child(i))
		}

	case vdom.KindText:
		e.WriteString(n.Text())
	}
}

// DecodeNode reads a tree written by EncodeNode.
// Trees nested deeper than MaxNodeDepth are rejected.
func DecodeNode(d *Decoder) (*vdom.Node, error) {
	return decodeNodeWithDepth(d, 0)
}

func decodeNodeWithDepth(d *Decoder, depth int) (*vdom.Node, error) {
	if err := checkDepth(depth, MaxNodeDepth); err != nil {
		return nil, err
	}

	kindByte, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if kindByte == nullNode {
		return nil, nil
	}

	switch vdom.VKind(kindByte) {
	case vdom.KindText:
		text, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		return vdom.NewText(text), nil

	case vdom.KindElement:
		tag, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		key, err := d.ReadString()
		if err != nil {
			return nil, err
		}

		attrCount, err := d.ReadCollectionCount()
		if err != nil {
			return nil, err
		}
		attrs := make([]vdom.Attr, 0, attrCount+1)
		for i := 0; i < attrCount; i++ {
			name, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			value, err := decodeValueWithDepth(d, depth+1)
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, vdom.Attr{Name: name, Value: value})
		}
		if key != "" {
			attrs = append(attrs, vdom.Attr{Name: "key", Value: vdom.String(key)})
		}

		childCount, err := d.ReadCollectionCount()
		if err != nil {
			return nil, err
		}
		children := make([]*vdom.Node, childCount)
		for i := range children {
			children[i], err = decodeNodeWithDepth(d, depth+1)
			if err != nil {
				return nil, err
			}
		}
		return vdom.NewElement(tag, attrs, children), nil

	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownNodeKind, kindByte)
	}
}

// EncodePath writes a path as a count followed by child indices.
func EncodePath(e *Encoder, p vdom.Path) {
	e.WriteUvarint(uint64(len(p)))
	for _, i := range p {
		e.WriteUvarint(uint64(i))
	}
}

// DecodePath reads a path written by EncodePath.
func DecodePath(d *Decoder) (vdom.Path, error) {
	n, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if n > MaxNodeDepth {
		return nil, ErrMaxDepthExceeded
	}
	p := make(vdom.Path, n)
	for i := range p {
		idx, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		if idx > MaxCollectionCount {
			return nil, ErrCollectionTooLarge
		}
		p[i] = int(idx)
	}
	return p, nil
}
