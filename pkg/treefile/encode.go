package treefile

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// Encode writes n in document form. Text children become bare strings.
// Listener handles are written as "$name" when cbs knows them and as
// "$#id" otherwise.
func Encode(n *vdom.Node, cbs Callbacks) ([]byte, error) {
	e := &encoder{cbs: cbs}

	var root *yaml.Node
	switch {
	case n == nil:
		root = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case n.IsText():
		root = mapping(fieldText, str(n.Text()))
	default:
		root = e.node(n)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type encoder struct {
	cbs Callbacks
}

func (e *encoder) node(n *vdom.Node) *yaml.Node {
	if n.IsText() {
		return str(n.Text())
	}

	out := mapping(fieldTag, str(n.Tag()))
	if n.Key() != "" {
		out.Content = append(out.Content, str(fieldKey), str(n.Key()))
	}

	if n.NumAttrs() > 0 {
		attrs := &yaml.Node{Kind: yaml.MappingNode}
		for _, a := range n.Attrs() {
			attrs.Content = append(attrs.Content, str(a.Name), e.value(a.Value))
		}
		out.Content = append(out.Content, str(fieldAttrs), attrs)
	}

	if n.NumChildren() > 0 {
		kids := &yaml.Node{Kind: yaml.SequenceNode}
		for _, c := range n.Children() {
			kids.Content = append(kids.Content, e.node(c))
		}
		out.Content = append(out.Content, str(fieldChildren), kids)
	}
	return out
}

func (e *encoder) value(v vdom.Value) *yaml.Node {
	switch v.Type() {
	case vdom.NullType:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case vdom.BoolType:
		b, _ := v.AsBool()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
	case vdom.IntType:
		i, _ := v.AsInt()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(i, 10)}
	case vdom.FloatType:
		f, _ := v.AsFloat()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(f)}
	case vdom.CallbackType:
		cb, _ := v.AsCallback()
		if e.cbs != nil {
			if name, ok := e.cbs.Name(cb); ok {
				return str("$" + name)
			}
		}
		return str("$" + formatRawHandle(cb))
	case vdom.ListType:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, item := range v.Items() {
			seq.Content = append(seq.Content, e.value(item))
		}
		return seq
	case vdom.MapType:
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, entry := range v.Entries() {
			m.Content = append(m.Content, str(entry.Key), e.value(entry.Value))
		}
		return m
	}
	s, _ := v.AsString()
	return str(s)
}

// formatFloat keeps a fractional part so the scalar reads back as a float.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func mapping(k string, v *yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{str(k), v}}
}
