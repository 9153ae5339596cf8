// Package treefile reads and writes trees as YAML or JSON documents.
//
// An element is a mapping with a tag and optional key, attrs and
// children; a text node is a bare string or a mapping with a single text
// field:
//
//	tag: ul
//	attrs:
//	  class: todo-list
//	children:
//	  - tag: li
//	    key: milk
//	    attrs:
//	      onclick: $toggle
//	    children: ["Buy milk"]
//	  - text: "Walk the dog"
//
// Attribute order is preserved. Strings starting with "$" on listener
// attributes name a callback and are resolved through Callbacks.
package treefile
