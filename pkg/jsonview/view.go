package jsonview

import (
	"github.com/goccy/go-json"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// CallbackField is the single member of the object a callback handle
// projects to: {"$callback": 12}.
const CallbackField = "$callback"

// Document projects a tree to {"root": ...}. Elements become
// {"tag", "attrs", "children"} objects and text nodes {"text"}. Keys are
// left out, matching tree congruence.
func Document(root *vdom.Node) ([]byte, error) {
	return json.Marshal(map[string]any{"root": Node(root)})
}

// Node returns the JSON-ready form of n. A nil node projects to null.
func Node(n *vdom.Node) any {
	if n == nil {
		return nil
	}
	if n.IsText() {
		return map[string]any{"text": n.Text()}
	}

	attrs := make(map[string]any, n.NumAttrs())
	for _, a := range n.Attrs() {
		attrs[a.Name] = Value(a.Value)
	}
	children := make([]any, n.NumChildren())
	for i := range children {
		children[i] = Node(n.Child(i))
	}
	return map[string]any{
		"tag":      n.Tag(),
		"attrs":    attrs,
		"children": children,
	}
}

// Value returns the JSON-ready form of v.
func Value(v vdom.Value) any {
	switch v.Type() {
	case vdom.BoolType:
		b, _ := v.AsBool()
		return b
	case vdom.IntType:
		i, _ := v.AsInt()
		return i
	case vdom.FloatType:
		f, _ := v.AsFloat()
		return f
	case vdom.StringType:
		s, _ := v.AsString()
		return s
	case vdom.ListType:
		items := v.Items()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = Value(item)
		}
		return out
	case vdom.MapType:
		entries := v.Entries()
		out := make(map[string]any, len(entries))
		for _, e := range entries {
			out[e.Key] = Value(e.Value)
		}
		return out
	case vdom.CallbackType:
		cb, _ := v.AsCallback()
		return map[string]any{CallbackField: cb.ID()}
	}
	return nil
}
