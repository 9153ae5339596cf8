package treefile

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Node document fields.
const (
	fieldTag      = "tag"
	fieldKey      = "key"
	fieldText     = "text"
	fieldAttrs    = "attrs"
	fieldChildren = "children"
)

// Decode parses a YAML or JSON tree document. An empty document decodes
// to a nil root. cbs may be nil when the document has no named listeners.
func Decode(data []byte, cbs Callbacks) (*vdom.Node, error) {
	return decodeDocument(data, "", cbs)
}

// DecodeFile reads and parses the tree document at path. Errors carry the
// file position of the offending node.
func DecodeFile(path string, cbs Callbacks) (*vdom.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E401").
			WithDetail("Failed to read " + path).
			Wrap(err)
	}
	return decodeDocument(data, path, cbs)
}

func decodeDocument(data []byte, file string, cbs Callbacks) (*vdom.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		e := errors.New("E401").Wrap(err)
		if file != "" {
			e = e.WithDetail("Failed to parse " + file)
		}
		return nil, e
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	d := &decoder{file: file, cbs: cbs}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return nil, nil
	}
	return d.node(root)
}

type decoder struct {
	file string
	cbs  Callbacks
}

func (d *decoder) fail(n *yaml.Node, format string, args ...any) error {
	return errors.New("E402").
		WithLocation(d.file, n.Line, n.Column).
		WithDetailf(format, args...)
}

func (d *decoder) node(n *yaml.Node) (*vdom.Node, error) {
	n = resolveAlias(n)

	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag != "!!str" {
			return nil, d.fail(n, "child %q is not a string or a node mapping", n.Value)
		}
		return vdom.NewText(n.Value), nil

	case yaml.MappingNode:
		return d.mapping(n)

	default:
		return nil, d.fail(n, "expected a node, found a %s", kindName(n.Kind))
	}
}

func (d *decoder) mapping(n *yaml.Node) (*vdom.Node, error) {
	var (
		tag, text        *yaml.Node
		key, attrs, kids *yaml.Node
	)

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], resolveAlias(n.Content[i+1])
		switch k.Value {
		case fieldTag:
			tag = v
		case fieldText:
			text = v
		case fieldKey:
			key = v
		case fieldAttrs:
			attrs = v
		case fieldChildren:
			kids = v
		default:
			return nil, d.fail(k, "unknown node field %q", k.Value)
		}
	}

	if text != nil {
		if tag != nil || attrs != nil || kids != nil || key != nil {
			return nil, d.fail(n, "a text node carries only the %q field", fieldText)
		}
		if text.Kind != yaml.ScalarNode {
			return nil, d.fail(text, "text must be a string")
		}
		return vdom.NewText(text.Value), nil
	}

	if tag == nil {
		return nil, d.fail(n, "node has neither %q nor %q", fieldTag, fieldText)
	}
	if tag.Kind != yaml.ScalarNode || tag.Value == "" {
		return nil, d.fail(tag, "tag must be a non-empty string")
	}

	var list []vdom.Attr
	if key != nil {
		if key.Kind != yaml.ScalarNode {
			return nil, d.fail(key, "key must be a scalar")
		}
		list = append(list, vdom.Attr{Name: "key", Value: vdom.String(key.Value)})
	}

	if attrs != nil {
		if attrs.Kind != yaml.MappingNode {
			return nil, d.fail(attrs, "attrs must be a mapping")
		}
		for i := 0; i+1 < len(attrs.Content); i += 2 {
			name := attrs.Content[i].Value
			v, err := d.attr(name, attrs.Content[i+1])
			if err != nil {
				return nil, err
			}
			list = append(list, vdom.Attr{Name: name, Value: v})
		}
	}

	var children []*vdom.Node
	if kids != nil {
		if kids.Kind != yaml.SequenceNode {
			return nil, d.fail(kids, "children must be a sequence")
		}
		children = make([]*vdom.Node, 0, len(kids.Content))
		for _, c := range kids.Content {
			child, err := d.node(c)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
	}

	return vdom.NewElement(tag.Value, list, children), nil
}

func (d *decoder) attr(name string, n *yaml.Node) (vdom.Value, error) {
	n = resolveAlias(n)
	if vdom.IsEventName(name) && n.Kind == yaml.ScalarNode && n.Tag == "!!str" && strings.HasPrefix(n.Value, "$") {
		return d.callback(n)
	}
	return d.value(n)
}

func (d *decoder) callback(n *yaml.Node) (vdom.Value, error) {
	ref := n.Value[1:]
	if cb, ok := parseRawHandle(ref); ok {
		return vdom.CallbackValue(cb), nil
	}
	if d.cbs == nil {
		return vdom.Value{}, d.fail(n, "listener %q has no callback resolver", n.Value)
	}
	cb, ok := d.cbs.Resolve(ref)
	if !ok {
		return vdom.Value{}, d.fail(n, "unknown callback %q", n.Value)
	}
	return vdom.CallbackValue(cb), nil
}

func (d *decoder) value(n *yaml.Node) (vdom.Value, error) {
	n = resolveAlias(n)

	switch n.Kind {
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!null":
			return vdom.Null(), nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return vdom.Value{}, d.fail(n, "bad bool: %v", err)
			}
			return vdom.Bool(b), nil
		case "!!int":
			var i int64
			if err := n.Decode(&i); err != nil {
				return vdom.Value{}, d.fail(n, "bad int: %v", err)
			}
			return vdom.Int(i), nil
		case "!!float":
			var f float64
			if err := n.Decode(&f); err != nil {
				return vdom.Value{}, d.fail(n, "bad float: %v", err)
			}
			return vdom.Float(f), nil
		default:
			return vdom.String(n.Value), nil
		}

	case yaml.SequenceNode:
		items := make([]vdom.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := d.value(c)
			if err != nil {
				return vdom.Value{}, err
			}
			items = append(items, v)
		}
		return vdom.List(items...), nil

	case yaml.MappingNode:
		entries := make([]vdom.MapEntry, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := d.value(n.Content[i+1])
			if err != nil {
				return vdom.Value{}, err
			}
			entries = append(entries, vdom.MapEntry{Key: n.Content[i].Value, Value: v})
		}
		return vdom.Map(entries...), nil
	}

	return vdom.Value{}, d.fail(n, "unsupported attribute value")
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "node"
}
