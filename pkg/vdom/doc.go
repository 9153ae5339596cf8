// Package vdom provides the virtual tree and the reconciliation engine.
//
// A Node is an immutable description of a UI tree: either an Element (tag,
// attributes, ordered children) or a Text. Trees are rebuilt from scratch on
// every state change and diffed against the previous tree; the resulting
// patches are applied by a backend to its live representation, whether that
// is a markup document, native widgets, or a text-mode cell grid.
//
// # Core Types
//
// Value is the tagged union of attribute values. Callback is an opaque,
// identity-compared handle to application behavior; a Registry maps handles
// to Handlers. Attr pairs a name with a Value.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    P(Text("Content")),
//	    OnClick(reg.Register(handler)),
//	)
//
// # Diffing
//
// Diff walks both trees in lock-step and returns a flat list of Patch values
// addressed by Path. Children are matched by position; DiffWith with
// Options.Keyed matches uniquely keyed children by Key instead.
//
// # Applying
//
// Apply drives a Backend through a patch list in order.
package vdom
