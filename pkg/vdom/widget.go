package vdom

// Widget is the backend-neutral widget vocabulary. Native and text-mode
// backends map each kind to their own widget; the differ only sees the tag.
type Widget uint8

const (
	WidgetVbox      Widget = iota // vertical flexbox
	WidgetHbox                    // horizontal flexbox
	WidgetVpane                   // vertical resizable flexbox
	WidgetHpane                   // horizontal resizable flexbox
	WidgetButton                  // push button
	WidgetLabel                   // text label
	WidgetParagraph               // text paragraph
	WidgetTextInput               // single line input
	WidgetCheckbox                // checkbox
	WidgetRadio                   // radio control
	WidgetImage                   // raster image
	WidgetSvg                     // svg image
	WidgetTextArea                // multi line input
	WidgetOverlay                 // stacks children on top of each other
	WidgetGroupBox                // labelled border enclosure
	WidgetHeaderBar               // window header with menu buttons
)

var widgetTags = [...]string{
	WidgetVbox:      "vbox",
	WidgetHbox:      "hbox",
	WidgetVpane:     "vpane",
	WidgetHpane:     "hpane",
	WidgetButton:    "button",
	WidgetLabel:     "label",
	WidgetParagraph: "paragraph",
	WidgetTextInput: "text-input",
	WidgetCheckbox:  "checkbox",
	WidgetRadio:     "radio",
	WidgetImage:     "image",
	WidgetSvg:       "svg",
	WidgetTextArea:  "textarea",
	WidgetOverlay:   "overlay",
	WidgetGroupBox:  "groupbox",
	WidgetHeaderBar: "headerbar",
}

// Tag returns the tag identifier used for w.
func (w Widget) Tag() string {
	if int(w) < len(widgetTags) {
		return widgetTags[w]
	}
	return "unknown"
}

// String returns the tag identifier.
func (w Widget) String() string { return w.Tag() }

// WidgetForTag maps a tag back to its widget kind.
func WidgetForTag(tag string) (Widget, bool) {
	for i, t := range widgetTags {
		if t == tag {
			return Widget(i), true
		}
	}
	return 0, false
}

// NewWidget creates an element for a widget kind.
func NewWidget(w Widget, args ...any) *Node {
	return Element(w.Tag(), args...)
}

// Column is a vertically oriented flexbox.
func Column(args ...any) *Node { return NewWidget(WidgetVbox, args...) }

// Row is a horizontally oriented flexbox.
func Row(args ...any) *Node { return NewWidget(WidgetHbox, args...) }

// VPane is a vertically oriented resizable flexbox.
func VPane(args ...any) *Node { return NewWidget(WidgetVpane, args...) }

// HPane is a horizontally oriented resizable flexbox.
func HPane(args ...any) *Node { return NewWidget(WidgetHpane, args...) }

// Overlay stacks its children on top of each other.
func Overlay(args ...any) *Node { return NewWidget(WidgetOverlay, args...) }

// GroupBox groups widgets with a visible label and border.
func GroupBox(args ...any) *Node { return NewWidget(WidgetGroupBox, args...) }

// HeaderBar is a window header that can hold menu buttons.
func HeaderBar(args ...any) *Node { return NewWidget(WidgetHeaderBar, args...) }

// Paragraph is a text paragraph widget holding txt as its value.
func Paragraph(txt string) *Node {
	return NewWidget(WidgetParagraph, ValueAttr(txt))
}

// TextLabel is a text label widget.
func TextLabel(txt string, args ...any) *Node {
	return NewWidget(WidgetLabel, append([]any{ValueAttr(txt)}, args...)...)
}

// TextInput is a single line text input widget.
func TextInput(args ...any) *Node { return NewWidget(WidgetTextInput, args...) }

// Checkbox is a checkbox widget.
func Checkbox(args ...any) *Node { return NewWidget(WidgetCheckbox, args...) }

// Radio is a radio control widget.
func Radio(args ...any) *Node { return NewWidget(WidgetRadio, args...) }

// Image is an image widget.
func Image(args ...any) *Node { return NewWidget(WidgetImage, args...) }
