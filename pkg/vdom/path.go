package vdom

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a node by the child indices leading to it from the root.
type Path []int

// Root is the address of the tree root.
var Root = Path{}

// Child returns the address of the i-th child of p. The result never shares
// backing storage with p.
func (p Path) Child(i int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

// Parent returns the parent address and the index of p within it.
// The root has no parent; ok is false.
func (p Path) Parent() (parent Path, index int, ok bool) {
	if len(p) == 0 {
		return nil, 0, false
	}
	parent = make(Path, len(p)-1)
	copy(parent, p)
	return parent, p[len(p)-1], true
}

// IsRoot reports whether p addresses the root.
func (p Path) IsRoot() bool { return len(p) == 0 }

// Equal reports whether p and o address the same position.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// String renders p as "/", "/0", "/0/2".
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, i := range p {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}

// ParsePath parses the form produced by Path.String.
func ParsePath(s string) (Path, error) {
	if s == "" || s == "/" {
		return Root, nil
	}
	if !strings.HasPrefix(s, "/") {
		return nil, fmt.Errorf("vdom: path %q must start with /", s)
	}
	parts := strings.Split(s[1:], "/")
	p := make(Path, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("vdom: invalid path segment %q in %q", part, s)
		}
		p[i] = n
	}
	return p, nil
}
