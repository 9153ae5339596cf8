package jsonview

import (
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/goccy/go-json"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// Operation is one RFC 6902 operation.
type Operation struct {
	Op    string
	From  string
	Path  string
	Value any
}

// MarshalJSON writes the members the operation kind requires. "value" is
// always present on add and replace, even when null or empty.
func (o Operation) MarshalJSON() ([]byte, error) {
	m := map[string]any{"op": o.Op, "path": o.Path}
	switch o.Op {
	case "move", "copy":
		m["from"] = o.From
	case "add", "replace", "test":
		m["value"] = o.Value
	}
	return json.Marshal(m)
}

// Recorder is a vdom.Backend that records the JSON Patch operations
// equivalent to the patches it is given, against the Document projection.
type Recorder struct {
	ops []Operation
}

var _ vdom.Backend = (*Recorder)(nil)

// Operations returns the recorded operations.
func (r *Recorder) Operations() []Operation {
	return r.ops
}

// Reset discards the recorded operations.
func (r *Recorder) Reset() {
	r.ops = r.ops[:0]
}

// MarshalJSON encodes the recorded operations as a JSON Patch document.
func (r *Recorder) MarshalJSON() ([]byte, error) {
	if r.ops == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.ops)
}

func (r *Recorder) Replace(path vdom.Path, node *vdom.Node) {
	r.ops = append(r.ops, Operation{Op: "replace", Path: pointer(path), Value: Node(node)})
}

func (r *Recorder) ReplaceText(path vdom.Path, text string) {
	r.ops = append(r.ops, Operation{Op: "replace", Path: pointer(path) + "/text", Value: text})
}

// SetAttr records an "add", which replaces an existing member.
func (r *Recorder) SetAttr(path vdom.Path, name string, value vdom.Value) {
	r.ops = append(r.ops, Operation{Op: "add", Path: attrPointer(path, name), Value: Value(value)})
}

func (r *Recorder) RemoveAttr(path vdom.Path, name string) {
	r.ops = append(r.ops, Operation{Op: "remove", Path: attrPointer(path, name)})
}

func (r *Recorder) AppendChild(path vdom.Path, node *vdom.Node) {
	r.ops = append(r.ops, Operation{Op: "add", Path: pointer(path) + "/children/-", Value: Node(node)})
}

func (r *Recorder) InsertChild(path vdom.Path, index int, node *vdom.Node) {
	r.ops = append(r.ops, Operation{Op: "add", Path: childPointer(path, index), Value: Node(node)})
}

func (r *Recorder) RemoveChild(path vdom.Path, index int) {
	r.ops = append(r.ops, Operation{Op: "remove", Path: childPointer(path, index)})
}

func (r *Recorder) MoveChild(path vdom.Path, from, to int) {
	r.ops = append(r.ops, Operation{Op: "move", From: childPointer(path, from), Path: childPointer(path, to)})
}

// Patches converts patches to a JSON Patch document.
func Patches(patches []vdom.Patch) ([]byte, error) {
	var r Recorder
	vdom.Apply(&r, patches)
	return r.MarshalJSON()
}

// ApplyJSON applies patches to a document produced by Document.
func ApplyJSON(doc []byte, patches []vdom.Patch) ([]byte, error) {
	ops, err := Patches(patches)
	if err != nil {
		return nil, err
	}
	p, err := jsonpatch.DecodePatch(ops)
	if err != nil {
		return nil, err
	}
	return p.Apply(doc)
}

func pointer(path vdom.Path) string {
	var b strings.Builder
	b.WriteString("/root")
	for _, i := range path {
		b.WriteString("/children/")
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}

func childPointer(path vdom.Path, index int) string {
	return pointer(path) + "/children/" + strconv.Itoa(index)
}

var tokenEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func attrPointer(path vdom.Path, name string) string {
	return pointer(path) + "/attrs/" + tokenEscaper.Replace(name)
}
