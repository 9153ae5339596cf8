package vdom

import "strings"

// On attaches cb as the listener for event. The attribute name is the event
// name prefixed with "on" (e.g., "click" becomes "onclick").
func On(event string, cb Callback) Attr {
	return attr("on"+event, CallbackValue(cb))
}

// IsEventName reports whether an attribute name denotes an event listener.
// Case-insensitive to catch onclick, ONCLICK, onClick.
func IsEventName(name string) bool {
	return len(name) > 2 && strings.EqualFold(name[:2], "on")
}

// EventName strips the "on" prefix from a listener attribute name.
func EventName(attrName string) string {
	if IsEventName(attrName) {
		return strings.ToLower(attrName[2:])
	}
	return attrName
}

// Mouse events

// OnClick handles click events.
func OnClick(cb Callback) Attr { return On("click", cb) }

// OnDblClick handles double-click events.
func OnDblClick(cb Callback) Attr { return On("dblclick", cb) }

// OnMouseDown handles mousedown events.
func OnMouseDown(cb Callback) Attr { return On("mousedown", cb) }

// OnMouseUp handles mouseup events.
func OnMouseUp(cb Callback) Attr { return On("mouseup", cb) }

// OnMouseMove handles mousemove events.
func OnMouseMove(cb Callback) Attr { return On("mousemove", cb) }

// Keyboard events

// OnKeyDown handles keydown events.
func OnKeyDown(cb Callback) Attr { return On("keydown", cb) }

// OnKeyUp handles keyup events.
func OnKeyUp(cb Callback) Attr { return On("keyup", cb) }

// Form events

// OnInput handles input events (fired when value changes).
func OnInput(cb Callback) Attr { return On("input", cb) }

// OnChange handles change events (fired when value is committed).
func OnChange(cb Callback) Attr { return On("change", cb) }

// OnSubmit handles form submit events.
func OnSubmit(cb Callback) Attr { return On("submit", cb) }

// OnFocus handles focus events.
func OnFocus(cb Callback) Attr { return On("focus", cb) }

// OnBlur handles blur events.
func OnBlur(cb Callback) Attr { return On("blur", cb) }

// Widget events

// OnActivate handles activation of native buttons and menu items.
func OnActivate(cb Callback) Attr { return On("activate", cb) }

// OnResize handles pane and window resizes.
func OnResize(cb Callback) Attr { return On("resize", cb) }
