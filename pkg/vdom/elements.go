package vdom

import (
	"fmt"
	"strings"
)

// Element creates an element node with the given tag.
// Arguments can be: nil, Attr, []Attr, *Node, []*Node, string (text child).
// Attributes are resolved here: class and style merge, everything else is
// last-wins. A "key" attribute becomes the node's reconciliation key.
func Element(tag string, args ...any) *Node {
	node := &Node{kind: KindElement, tag: tag}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Attr:
			node.addAttr(v)

		case []Attr:
			for _, a := range v {
				node.addAttr(a)
			}

		case *Node:
			if v != nil {
				node.children = append(node.children, v)
			}

		case []*Node:
			for _, child := range v {
				if child != nil {
					node.children = append(node.children, child)
				}
			}

		case string:
			// Shorthand for text node
			node.children = append(node.children, NewText(v))

		default:
			panic(fmt.Sprintf("vdom: unsupported element argument %T", arg))
		}
	}

	return node
}

func (n *Node) addAttr(a Attr) {
	if a.IsEmpty() {
		return
	}
	if a.Name == keyAttr {
		n.key = a.Value.String()
		return
	}
	n.putAttr(a, true)
}

const keyAttr = "key"

// mergeAttrValue resolves a repeated attribute name during construction.
func mergeAttrValue(name string, prev, next Value) Value {
	ps, pok := prev.AsString()
	ns, nok := next.AsString()
	if !pok || !nok {
		return next
	}
	switch name {
	case "class":
		return String(strings.TrimSpace(ps + " " + ns))
	case "style":
		ps = strings.TrimRight(strings.TrimSpace(ps), ";")
		if ps == "" {
			return String(ns)
		}
		return String(ps + ";" + ns)
	default:
		return next
	}
}

// Text creates a text node.
func Text(content string) *Node {
	return NewText(content)
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *Node {
	return NewText(fmt.Sprintf(format, args...))
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *Node) *Node {
	if condition {
		return node
	}
	return nil
}

// Range maps a slice to nodes.
func Range[T any](items []T, fn func(item T, index int) *Node) []*Node {
	result := make([]*Node, 0, len(items))
	for i, item := range items {
		node := fn(item, i)
		if node != nil {
			result = append(result, node)
		}
	}
	return result
}

// Document structure and sectioning

func Html(args ...any) *Node    { return Element("html", args...) }
func Body(args ...any) *Node    { return Element("body", args...) }
func Header(args ...any) *Node  { return Element("header", args...) }
func Footer(args ...any) *Node  { return Element("footer", args...) }
func Main(args ...any) *Node    { return Element("main", args...) }
func Nav(args ...any) *Node     { return Element("nav", args...) }
func Section(args ...any) *Node { return Element("section", args...) }
func Article(args ...any) *Node { return Element("article", args...) }
func H1(args ...any) *Node      { return Element("h1", args...) }
func H2(args ...any) *Node      { return Element("h2", args...) }
func H3(args ...any) *Node      { return Element("h3", args...) }

// Text content

func Div(args ...any) *Node  { return Element("div", args...) }
func P(args ...any) *Node    { return Element("p", args...) }
func Span(args ...any) *Node { return Element("span", args...) }
func Pre(args ...any) *Node  { return Element("pre", args...) }
func Ul(args ...any) *Node   { return Element("ul", args...) }
func Ol(args ...any) *Node   { return Element("ol", args...) }
func Li(args ...any) *Node   { return Element("li", args...) }
func A(args ...any) *Node    { return Element("a", args...) }
func Em(args ...any) *Node   { return Element("em", args...) }
func Code(args ...any) *Node { return Element("code", args...) }
func Br(args ...any) *Node   { return Element("br", args...) }

// Forms

func Form(args ...any) *Node     { return Element("form", args...) }
func Input(args ...any) *Node    { return Element("input", args...) }
func Textarea(args ...any) *Node { return Element("textarea", args...) }
func Select(args ...any) *Node   { return Element("select", args...) }
func Option(args ...any) *Node   { return Element("option", args...) }
func Button(args ...any) *Node   { return Element("button", args...) }
func Label(args ...any) *Node    { return Element("label", args...) }

// Tables and media

func Table(args ...any) *Node { return Element("table", args...) }
func Tr(args ...any) *Node    { return Element("tr", args...) }
func Td(args ...any) *Node    { return Element("td", args...) }
func Img(args ...any) *Node   { return Element("img", args...) }
func Svg(args ...any) *Node   { return Element("svg", args...) }
