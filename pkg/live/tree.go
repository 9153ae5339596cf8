package live

import (
	"fmt"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Stats counts node lifecycle events on a Tree.
type Stats struct {
	Created   int // nodes mounted
	Destroyed int // nodes torn down
}

// Live returns the number of mounted nodes.
func (s Stats) Live() int { return s.Created - s.Destroyed }

// node is a mutable live node.
type node struct {
	kind      vdom.VKind
	tag       string
	key       string
	text      string
	attrs     []vdom.Attr
	listeners map[string]vdom.Callback // by event name
	children  []*node
}

func (n *node) attrIndex(name string) int {
	for i, a := range n.attrs {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// Tree is a mutable in-memory tree that patches are applied to. It is the
// reference Backend: applying Diff(a, b) to a Tree mounted from a yields a
// tree congruent to b.
//
// A Tree is not safe for concurrent use.
type Tree struct {
	root     *node
	registry *vdom.Registry
	stats    Stats
}

// Option configures a Tree.
type Option func(*Tree)

// WithRegistry sets the registry used by Dispatch.
func WithRegistry(r *vdom.Registry) Option {
	return func(t *Tree) {
		t.registry = r
	}
}

// New mounts root into a new live tree. A nil root mounts an empty text node.
func New(root *vdom.Node, opts ...Option) *Tree {
	t := &Tree{}
	for _, opt := range opts {
		opt(t)
	}
	if root == nil {
		root = vdom.NewText("")
	}
	t.root = t.mount(root)
	return t
}

// Stats returns the lifecycle counters.
func (t *Tree) Stats() Stats { return t.stats }

// Snapshot converts the live tree back to an immutable vdom tree.
func (t *Tree) Snapshot() *vdom.Node {
	return snapshot(t.root)
}

func snapshot(n *node) *vdom.Node {
	if n.kind == vdom.KindText {
		return vdom.NewText(n.text)
	}
	attrs := n.attrs
	if n.key != "" {
		attrs = make([]vdom.Attr, 0, len(n.attrs)+1)
		attrs = append(attrs, n.attrs...)
		attrs = append(attrs, vdom.Attr{Name: "key", Value: vdom.String(n.key)})
	}
	children := make([]*vdom.Node, len(n.children))
	for i, c := range n.children {
		children[i] = snapshot(c)
	}
	return vdom.NewElement(n.tag, attrs, children)
}

// Apply applies patches through vdom.Apply and converts a drift panic into
// an error. The tree may be partially patched when an error is returned.
func (t *Tree) Apply(patches []vdom.Patch) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ve, ok := r.(*vterrors.VTreeError)
			if !ok {
				panic(r)
			}
			err = ve
		}
	}()
	vdom.Apply(t, patches)
	return nil
}

// Listener returns the callback installed for event at path.
func (t *Tree) Listener(path vdom.Path, event string) (vdom.Callback, bool) {
	n, ok := t.find(path)
	if !ok {
		return vdom.Callback{}, false
	}
	cb, ok := n.listeners[event]
	return cb, ok
}

// Dispatch invokes the listener installed for event at path with payload.
func (t *Tree) Dispatch(path vdom.Path, event string, payload vdom.Value) error {
	n, ok := t.find(path)
	if !ok {
		return vterrors.New("E101").WithPath(path)
	}
	cb, ok := n.listeners[event]
	if !ok {
		return vterrors.New("E104").WithPath(path).WithDetailf("no %q listener", event)
	}
	if t.registry == nil || !t.registry.Invoke(cb, payload) {
		return vterrors.New("E104").WithPath(path).WithDetailf("%s for %q is not registered", cb, event)
	}
	return nil
}

// mount builds live nodes for n and its subtree.
func (t *Tree) mount(n *vdom.Node) *node {
	t.stats.Created++
	if n.IsText() {
		return &node{kind: vdom.KindText, text: n.Text()}
	}
	ln := &node{kind: vdom.KindElement, tag: n.Tag(), key: n.Key()}
	for _, a := range n.Attrs() {
		ln.setAttr(a.Name, a.Value)
	}
	if n.NumChildren() > 0 {
		ln.children = make([]*node, n.NumChildren())
		for i := range ln.children {
			ln.children[i] = t.mount(n.Child(i))
		}
	}
	return ln
}

// destroy tears down n and its subtree.
func (t *Tree) destroy(n *node) {
	t.stats.Destroyed++
	for _, c := range n.children {
		t.destroy(c)
	}
	n.listeners = nil
	n.children = nil
}

func (t *Tree) find(path vdom.Path) (*node, bool) {
	n := t.root
	for _, i := range path {
		if i < 0 || i >= len(n.children) {
			return nil, false
		}
		n = n.children[i]
	}
	return n, true
}

func (t *Tree) resolve(path vdom.Path) *node {
	n, ok := t.find(path)
	if !ok {
		panic(vterrors.New("E101").WithPath(path))
	}
	return n
}

func (t *Tree) element(path vdom.Path) *node {
	n := t.resolve(path)
	if n.kind != vdom.KindElement {
		panic(vterrors.New("E103").WithPath(path).WithDetail("expected an element, found a text node"))
	}
	return n
}

func checkIndex(path vdom.Path, index, limit int) {
	if index < 0 || index >= limit {
		panic(vterrors.New("E102").WithPath(path).WithDetailf("index %d, %d children", index, limit))
	}
}

// Replace implements vdom.Backend.
func (t *Tree) Replace(path vdom.Path, n *vdom.Node) {
	if path.IsRoot() {
		t.destroy(t.root)
		t.root = t.mount(n)
		return
	}
	parentPath, i, _ := path.Parent()
	parent := t.element(parentPath)
	checkIndex(path, i, len(parent.children))
	t.destroy(parent.children[i])
	parent.children[i] = t.mount(n)
}

// ReplaceText implements vdom.Backend.
func (t *Tree) ReplaceText(path vdom.Path, text string) {
	n := t.resolve(path)
	if n.kind != vdom.KindText {
		panic(vterrors.New("E103").WithPath(path).WithDetail("expected a text node, found an element"))
	}
	n.text = text
}

// SetAttr implements vdom.Backend.
func (t *Tree) SetAttr(path vdom.Path, name string, value vdom.Value) {
	t.element(path).setAttr(name, value)
}

func (n *node) setAttr(name string, value vdom.Value) {
	event := vdom.EventName(name)
	i := n.attrIndex(name)
	// Only the listener this attribute installed is detached; another
	// attribute mapping to the same event name keeps its own.
	if i >= 0 && n.attrs[i].Value.IsCallback() {
		delete(n.listeners, event)
	}
	if cb, ok := value.AsCallback(); ok {
		if n.listeners == nil {
			n.listeners = make(map[string]vdom.Callback)
		}
		n.listeners[event] = cb
	}

	if i >= 0 {
		n.attrs[i].Value = value
		return
	}
	n.attrs = append(n.attrs, vdom.Attr{Name: name, Value: value})
}

// RemoveAttr implements vdom.Backend.
func (t *Tree) RemoveAttr(path vdom.Path, name string) {
	n := t.element(path)
	i := n.attrIndex(name)
	if i < 0 {
		panic(vterrors.New("E101").WithPath(path).WithDetailf("attribute %q is not set", name))
	}
	if n.attrs[i].Value.IsCallback() {
		delete(n.listeners, vdom.EventName(name))
	}
	n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
}

// AppendChild implements vdom.Backend.
func (t *Tree) AppendChild(path vdom.Path, n *vdom.Node) {
	parent := t.element(path)
	parent.children = append(parent.children, t.mount(n))
}

// InsertChild implements vdom.Backend.
func (t *Tree) InsertChild(path vdom.Path, index int, n *vdom.Node) {
	parent := t.element(path)
	checkIndex(path, index, len(parent.children)+1)
	parent.children = insertAt(parent.children, index, t.mount(n))
}

// RemoveChild implements vdom.Backend.
func (t *Tree) RemoveChild(path vdom.Path, index int) {
	parent := t.element(path)
	checkIndex(path, index, len(parent.children))
	t.destroy(parent.children[index])
	parent.children = append(parent.children[:index], parent.children[index+1:]...)
}

// MoveChild implements vdom.Backend.
func (t *Tree) MoveChild(path vdom.Path, from, to int) {
	parent := t.element(path)
	checkIndex(path, from, len(parent.children))
	checkIndex(path, to, len(parent.children))
	child := parent.children[from]
	parent.children = append(parent.children[:from], parent.children[from+1:]...)
	parent.children = insertAt(parent.children, to, child)
}

func insertAt(children []*node, at int, n *node) []*node {
	children = append(children, nil)
	copy(children[at+1:], children[at:])
	children[at] = n
	return children
}

// String renders the live tree for debugging.
func (t *Tree) String() string {
	return fmt.Sprintf("live.Tree(%d nodes)", t.stats.Live())
}

var _ vdom.Backend = (*Tree)(nil)
