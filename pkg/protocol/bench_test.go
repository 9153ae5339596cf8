package protocol

import (
	"fmt"
	"testing"

	"github.com/vango-dev/vtree/pkg/vdom"
)

func benchTree(n int) *vdom.Node {
	items := make([]*vdom.Node, n)
	for i := range items {
		items[i] = vdom.Li(vdom.Key(i), vdom.Class("item"), vdom.Textf("Item %d", i))
	}
	return vdom.Ul(items)
}

func BenchmarkEncodeNode(b *testing.B) {
	tree := benchTree(100)
	e := NewEncoderWithCap(4096)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Reset()
		EncodeNode(e, tree)
	}
}

func BenchmarkDecodeNode(b *testing.B) {
	e := NewEncoder()
	EncodeNode(e, benchTree(100))
	data := e.Bytes()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodeNode(NewDecoder(data))
	}
}

func BenchmarkPatches(b *testing.B) {
	for _, n := range []int{10, 100} {
		prev := benchTree(n)
		next := vdom.Ul(vdom.Li(vdom.Key("new"), vdom.Text("new")), prev.Children())
		patches := vdom.DiffWith(prev, next, vdom.Options{Keyed: true})
		pf := &PatchesFrame{Seq: 1, Patches: patches}

		b.Run(fmt.Sprintf("encode_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = EncodePatches(pf)
			}
		})

		data := EncodePatches(pf)
		b.Run(fmt.Sprintf("decode_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = DecodePatches(data)
			}
		})
	}
}
