package vdom

import (
	"fmt"
	"strings"
)

// NewAttr creates an Attr from a loosely-typed value.
func NewAttr(name string, value any) Attr {
	return Attr{Name: name, Value: ValueOf(value)}
}

// attr creates an Attr with the given key and value.
func attr(name string, value Value) Attr {
	return Attr{Name: name, Value: value}
}

// Key sets the reconciliation key used by keyed diffing.
// The key is converted to a string using fmt.Sprintf. It occupies the
// reserved attribute name "key", so an element cannot also carry a plain
// attribute of that name.
func Key(key any) Attr {
	return attr(keyAttr, String(fmt.Sprintf("%v", key)))
}

// Global attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", String(id)) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", String(strings.Join(classes, " "))) }

// StyleAttr sets the style attribute.
func StyleAttr(style string) Attr { return attr("style", String(style)) }

// TitleAttr sets the title attribute.
func TitleAttr(title string) Attr { return attr("title", String(title)) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, String(value)) }

// Lang sets the lang attribute.
func Lang(lang string) Attr { return attr("lang", String(lang)) }

// Hidden sets the hidden attribute.
func Hidden() Attr { return attr("hidden", Bool(true)) }

// TabIndex sets the tabindex attribute.
func TabIndex(index int) Attr { return attr("tabindex", Int(int64(index))) }

// AccessKey sets the accesskey attribute.
func AccessKey(key string) Attr { return attr("accesskey", String(key)) }

// Draggable sets the draggable attribute.
func Draggable(draggable bool) Attr { return attr("draggable", Bool(draggable)) }

// Spellcheck sets the spellcheck attribute.
func Spellcheck(check bool) Attr { return attr("spellcheck", Bool(check)) }

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", String(role)) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", String(label)) }

// Links and media

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", String(url)) }

// Src sets the src attribute.
func Src(url string) Attr { return attr("src", String(url)) }

// Alt sets the alt attribute.
func Alt(text string) Attr { return attr("alt", String(text)) }

// Forms

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", String(name)) }

// ValueAttr sets the value attribute.
func ValueAttr(value any) Attr { return attr("value", ValueOf(value)) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", String(t)) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return attr("placeholder", String(text)) }

// Disabled sets the disabled attribute.
func Disabled(disabled bool) Attr { return attr("disabled", Bool(disabled)) }

// Checked sets the checked attribute.
func Checked(checked bool) Attr { return attr("checked", Bool(checked)) }

// Layout hints read by native and text-mode backends

// Width sets the width attribute.
func Width(w float64) Attr { return attr("width", Float(w)) }

// Height sets the height attribute.
func Height(h float64) Attr { return attr("height", Float(h)) }

// Conditional attributes

// AttrIf adds any attribute conditionally.
func AttrIf(condition bool, a Attr) Attr {
	if condition {
		return a
	}
	return Attr{}
}

// ClassIf adds a class conditionally.
func ClassIf(condition bool, class string) Attr {
	if condition {
		return Class(class)
	}
	return Attr{}
}
