package vdom

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement VKind = iota // <div>, widget kinds, etc.
	KindText                 // Plain text node
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// Attr is a single resolved attribute: a name and its value. A callback
// valued attribute is an event listener.
type Attr struct {
	Name  string
	Value Value
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Name == ""
}

// IsListener reports whether the attribute carries a callback.
func (a Attr) IsListener() bool {
	return a.Value.IsCallback()
}

// Node is an immutable virtual tree node. Build nodes with Element, Text and
// the tag helpers; "updates" are new trees diffed against the old one.
type Node struct {
	kind     VKind
	tag      string
	key      string
	attrs    []Attr
	index    map[string]int
	children []*Node
	text     string
}

// NewText creates a text node.
func NewText(text string) *Node {
	return &Node{kind: KindText, text: text}
}

// NewElement creates an element node from already-resolved attributes.
// Attribute names must be unique; on duplicates the last value wins and the
// first position is kept. Nil children are dropped.
//
// The name "key" is reserved: an attribute with that name sets the
// reconciliation key and is not stored as an attribute, so backends never
// see it and changing it emits no SetAttr.
func NewElement(tag string, attrs []Attr, children []*Node) *Node {
	n := &Node{kind: KindElement, tag: tag}
	for _, a := range attrs {
		if a.Name == keyAttr {
			n.key = a.Value.String()
			continue
		}
		n.putAttr(a, false)
	}
	if len(children) > 0 {
		n.children = make([]*Node, 0, len(children))
		for _, c := range children {
			if c != nil {
				n.children = append(n.children, c)
			}
		}
	}
	return n
}

// putAttr inserts or overwrites an attribute during construction.
func (n *Node) putAttr(a Attr, merge bool) {
	if a.Name == "" {
		return
	}
	if n.index == nil {
		n.index = make(map[string]int)
	}
	if i, ok := n.index[a.Name]; ok {
		if merge {
			a.Value = mergeAttrValue(a.Name, n.attrs[i].Value, a.Value)
		}
		n.attrs[i] = a
		return
	}
	n.index[a.Name] = len(n.attrs)
	n.attrs = append(n.attrs, a)
}

// Kind returns the node variant.
func (n *Node) Kind() VKind { return n.kind }

// IsText reports whether n is a text node.
func (n *Node) IsText() bool { return n != nil && n.kind == KindText }

// IsElement reports whether n is an element node.
func (n *Node) IsElement() bool { return n != nil && n.kind == KindElement }

// Tag returns the element tag; empty for text nodes.
func (n *Node) Tag() string { return n.tag }

// Key returns the reconciliation key used by keyed diffing.
func (n *Node) Key() string { return n.key }

// Text returns the text payload; empty for elements.
func (n *Node) Text() string { return n.text }

// NumAttrs returns the number of attributes.
func (n *Node) NumAttrs() int { return len(n.attrs) }

// Attrs returns a copy of the attributes in insertion order.
func (n *Node) Attrs() []Attr {
	out := make([]Attr, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (Value, bool) {
	i, ok := n.index[name]
	if !ok {
		return Value{}, false
	}
	return n.attrs[i].Value, true
}

// Listeners returns the callback-valued attributes keyed by event name.
func (n *Node) Listeners() map[string]Callback {
	var out map[string]Callback
	for _, a := range n.attrs {
		if cb, ok := a.Value.AsCallback(); ok {
			if out == nil {
				out = make(map[string]Callback)
			}
			out[a.Name] = cb
		}
	}
	return out
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int { return len(n.children) }

// Child returns the i-th child or nil when out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Children returns a copy of the child slice.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Size returns the number of nodes in the subtree rooted at n.
func (n *Node) Size() int {
	if n == nil {
		return 0
	}
	size := 1
	for _, c := range n.children {
		size += c.Size()
	}
	return size
}

// Lookup returns the node addressed by path, or nil when the path leaves the
// tree.
func Lookup(root *Node, path Path) *Node {
	n := root
	for _, i := range path {
		if n == nil {
			return nil
		}
		n = n.Child(i)
	}
	return n
}

// Walk calls fn for every node in depth-first pre-order with its address.
// Returning false from fn skips the node's children.
func Walk(root *Node, fn func(path Path, n *Node) bool) {
	if root == nil {
		return
	}
	walk(root, Root, fn)
}

func walk(n *Node, path Path, fn func(Path, *Node) bool) {
	if !fn(path, n) {
		return
	}
	for i, c := range n.children {
		walk(c, path.Child(i), fn)
	}
}

// Equal reports whether a and b describe congruent trees: same kinds, tags,
// text, attribute sets and children. Attribute order and reconciliation keys
// are ignored; neither is visible to a backend.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind || a.tag != b.tag || a.text != b.text {
		return false
	}
	if len(a.attrs) != len(b.attrs) || len(a.children) != len(b.children) {
		return false
	}
	for _, attr := range a.attrs {
		other, ok := b.Attr(attr.Name)
		if !ok || !attr.Value.Equal(other) {
			return false
		}
	}
	for i := range a.children {
		if !Equal(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}
