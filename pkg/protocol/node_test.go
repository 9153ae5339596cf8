package protocol

import (
	"errors"
	"testing"

	"github.com/vango-dev/vtree/pkg/vdom"
)

func TestValueRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    vdom.Value
	}{
		{"null", vdom.Null()},
		{"bool", vdom.Bool(true)},
		{"int", vdom.Int(-1 << 40)},
		{"float", vdom.Float(0.125)},
		{"string", vdom.String("héllo")},
		{"empty string", vdom.String("")},
		{"list", vdom.List(vdom.Int(1), vdom.String("two"), vdom.List())},
		{"map", vdom.Map(vdom.MapEntry{Key: "z", Value: vdom.Int(1)}, vdom.MapEntry{Key: "a", Value: vdom.Null()})},
		{"callback", vdom.CallbackValue(vdom.CallbackFromID(300))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEncoder()
			EncodeValue(e, tt.v)
			d := NewDecoder(e.Bytes())
			got, err := DecodeValue(d)
			if err != nil {
				t.Fatalf("DecodeValue() error = %v", err)
			}
			if !got.Equal(tt.v) {
				t.Errorf("DecodeValue() = %#v, want %#v", got, tt.v)
			}
			if !d.EOF() {
				t.Errorf("%d bytes left over", d.Remaining())
			}
		})
	}
}

func TestDecodeValueUnknownType(t *testing.T) {
	_, err := DecodeValue(NewDecoder([]byte{0x42}))
	if !errors.Is(err, ErrUnknownValueType) {
		t.Errorf("error = %v, want ErrUnknownValueType", err)
	}
}

func TestNodeRoundTrip(t *testing.T) {
	cb := vdom.CallbackFromID(7)
	tree := vdom.Div(
		vdom.ID("root"), vdom.Class("a b"), vdom.TabIndex(3), vdom.OnClick(cb),
		vdom.Ul(
			vdom.Li(vdom.Key("x"), vdom.Text("one")),
			vdom.Li(vdom.Key("y"), vdom.Text("two")),
		),
		vdom.Column(vdom.TextLabel("label"), vdom.Width(12.5)),
		vdom.Text(""),
	)

	e := NewEncoder()
	EncodeNode(e, tree)
	got, err := DecodeNode(NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatalf("DecodeNode() error = %v", err)
	}

	if !vdom.Equal(got, tree) {
		t.Error("decoded tree is not congruent to the original")
	}
	if got.Child(0).Child(1).Key() != "y" {
		t.Errorf("key lost: %q", got.Child(0).Child(1).Key())
	}
	if got.Attrs()[3].Name != "onclick" {
		t.Errorf("attribute order lost: %v", got.Attrs())
	}
}

func TestNodeNil(t *testing.T) {
	e := NewEncoder()
	EncodeNode(e, nil)
	got, err := DecodeNode(NewDecoder(e.Bytes()))
	if err != nil || got != nil {
		t.Errorf("DecodeNode(nil) = %v, %v", got, err)
	}
}

func TestDecodeNodeDepthLimit(t *testing.T) {
	// Hand-build a chain of elements deeper than the limit.
	e := NewEncoder()
	for i := 0; i <= MaxNodeDepth+1; i++ {
		e.WriteByte(byte(vdom.KindElement))
		e.WriteString("div")
		e.WriteString("")
		e.WriteUvarint(0)
		e.WriteUvarint(1)
	}
	e.WriteByte(byte(vdom.KindText))
	e.WriteString("leaf")

	_, err := DecodeNode(NewDecoder(e.Bytes()))
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("error = %v, want ErrMaxDepthExceeded", err)
	}
}

func TestDecodeNodeUnknownKind(t *testing.T) {
	_, err := DecodeNode(NewDecoder([]byte{0x09}))
	if !errors.Is(err, ErrUnknownNodeKind) {
		t.Errorf("error = %v, want ErrUnknownNodeKind", err)
	}
}

func TestPathRoundTrip(t *testing.T) {
	for _, p := range []vdom.Path{vdom.Root, {0}, {3, 1, 200}} {
		e := NewEncoder()
		EncodePath(e, p)
		got, err := DecodePath(NewDecoder(e.Bytes()))
		if err != nil || !got.Equal(p) {
			t.Errorf("DecodePath(%v) = %v, %v", p, got, err)
		}
	}
}
