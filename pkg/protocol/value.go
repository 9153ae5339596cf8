package protocol

import (
	"errors"
	"fmt"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// ErrUnknownValueType is returned for a value type byte outside the known set.
var ErrUnknownValueType = errors.New("protocol: unknown value type")

// EncodeValue writes v as a type byte followed by its payload.
//
//	Null     [0x00]
//	Bool     [0x01][0x00|0x01]
//	Int      [0x02][svarint]
//	Float    [0x03][float64 big-endian]
//	String   [0x04][len-prefixed]
//	List     [0x05][count][value...]
//	Map      [0x06][count]([key len-prefixed][value])...
//	Callback [0x07][uvarint handle id]
func EncodeValue(e *Encoder, v vdom.Value) {
	e.WriteByte(byte(v.Type()))

	switch v.Type() {
	case vdom.NullType:
	case vdom.BoolType:
		b, _ := v.AsBool()
		e.WriteBool(b)
	case vdom.IntType:
		i, _ := v.AsInt()
		e.WriteSvarint(i)
	case vdom.FloatType:
		f, _ := v.AsFloat()
		e.WriteFloat64(f)
	case vdom.StringType:
		s, _ := v.AsString()
		e.WriteString(s)
	case vdom.ListType:
		items := v.Items()
		e.WriteUvarint(uint64(len(items)))
		for _, item := range items {
			EncodeValue(e, item)
		}
	case vdom.MapType:
		entries := v.Entries()
		e.WriteUvarint(uint64(len(entries)))
		for _, entry := range entries {
			e.WriteString(entry.Key)
			EncodeValue(e, entry.Value)
		}
	case vdom.CallbackType:
		cb, _ := v.AsCallback()
		e.WriteUvarint(cb.ID())
	}
}

// DecodeValue reads a value written by EncodeValue.
func DecodeValue(d *Decoder) (vdom.Value, error) {
	return decodeValueWithDepth(d, 0)
}

func decodeValueWithDepth(d *Decoder, depth int) (vdom.Value, error) {
	if err := checkDepth(depth, MaxNodeDepth); err != nil {
		return vdom.Value{}, err
	}

	typ, err := d.ReadByte()
	if err != nil {
		return vdom.Value{}, err
	}

	switch vdom.ValueType(typ) {
	case vdom.NullType:
		return vdom.Null(), nil

	case vdom.BoolType:
		b, err := d.ReadBool()
		if err != nil {
			return vdom.Value{}, err
		}
		return vdom.Bool(b), nil

	case vdom.IntType:
		i, err := d.ReadSvarint()
		if err != nil {
			return vdom.Value{}, err
		}
		return vdom.Int(i), nil

	case vdom.FloatType:
		f, err := d.ReadFloat64()
		if err != nil {
			return vdom.Value{}, err
		}
		return vdom.Float(f), nil

	case vdom.StringType:
		s, err := d.ReadString()
		if err != nil {
			return vdom.Value{}, err
		}
		return vdom.String(s), nil

	case vdom.ListType:
		count, err := d.ReadCollectionCount()
		if err != nil {
			return vdom.Value{}, err
		}
		items := make([]vdom.Value, count)
		for i := range items {
			items[i], err = decodeValueWithDepth(d, depth+1)
			if err != nil {
				return vdom.Value{}, err
			}
		}
		return vdom.List(items...), nil

	case vdom.MapType:
		count, err := d.ReadCollectionCount()
		if err != nil {
			return vdom.Value{}, err
		}
		entries := make([]vdom.MapEntry, count)
		for i := range entries {
			entries[i].Key, err = d.ReadString()
			if err != nil {
				return vdom.Value{}, err
			}
			entries[i].Value, err = decodeValueWithDepth(d, depth+1)
			if err != nil {
				return vdom.Value{}, err
			}
		}
		return vdom.Map(entries...), nil

	case vdom.CallbackType:
		id, err := d.ReadUvarint()
		if err != nil {
			return vdom.Value{}, err
		}
		return vdom.CallbackValue(vdom.CallbackFromID(id)), nil

	default:
		return vdom.Value{}, fmt.Errorf("%w: 0x%02x", ErrUnknownValueType, typ)
	}
}
