package vdom

import "fmt"

// PatchOp is the type of patch operation.
type PatchOp uint8

const (
	PatchReplaceText PatchOp = 0x01 // Overwrite text payload
	PatchSetAttr     PatchOp = 0x02 // Set/update attribute or listener
	PatchRemoveAttr  PatchOp = 0x03 // Remove attribute or listener
	PatchAppendChild PatchOp = 0x04 // Append trailing child
	PatchRemoveChild PatchOp = 0x05 // Remove child at snapshot index
	PatchMoveChild   PatchOp = 0x06 // Move child (keyed diff only)
	PatchReplace     PatchOp = 0x07 // Replace node entirely
	PatchInsertChild PatchOp = 0x08 // Insert child at index (keyed diff only)
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case PatchReplaceText:
		return "ReplaceText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchAppendChild:
		return "AppendChild"
	case PatchRemoveChild:
		return "RemoveChild"
	case PatchMoveChild:
		return "MoveChild"
	case PatchReplace:
		return "Replace"
	case PatchInsertChild:
		return "InsertChild"
	default:
		return "Unknown"
	}
}

// Patch represents a single edit to apply to a live tree.
type Patch struct {
	Op    PatchOp // Operation type
	Path  Path    // Target node (the parent for child operations)
	Name  string  // Attribute name (SetAttr/RemoveAttr)
	Value Value   // Attribute value (SetAttr)
	Text  string  // New text (ReplaceText)
	Node  *Node   // Subtree for Replace/AppendChild/InsertChild
	Index int     // Child index (RemoveChild/InsertChild, MoveChild target)
	From  int     // Source index (MoveChild)
}

// NewReplacePatch creates a Replace patch.
func NewReplacePatch(path Path, node *Node) Patch {
	return Patch{Op: PatchReplace, Path: path, Node: node}
}

// NewReplaceTextPatch creates a ReplaceText patch.
func NewReplaceTextPatch(path Path, text string) Patch {
	return Patch{Op: PatchReplaceText, Path: path, Text: text}
}

// NewSetAttrPatch creates a SetAttr patch.
func NewSetAttrPatch(path Path, name string, value Value) Patch {
	return Patch{Op: PatchSetAttr, Path: path, Name: name, Value: value}
}

// NewRemoveAttrPatch creates a RemoveAttr patch.
func NewRemoveAttrPatch(path Path, name string) Patch {
	return Patch{Op: PatchRemoveAttr, Path: path, Name: name}
}

// NewAppendChildPatch creates an AppendChild patch.
func NewAppendChildPatch(path Path, node *Node) Patch {
	return Patch{Op: PatchAppendChild, Path: path, Node: node}
}

// NewRemoveChildPatch creates a RemoveChild patch.
func NewRemoveChildPatch(path Path, index int) Patch {
	return Patch{Op: PatchRemoveChild, Path: path, Index: index}
}

// NewInsertChildPatch creates an InsertChild patch.
func NewInsertChildPatch(path Path, index int, node *Node) Patch {
	return Patch{Op: PatchInsertChild, Path: path, Index: index, Node: node}
}

// NewMoveChildPatch creates a MoveChild patch.
func NewMoveChildPatch(path Path, from, to int) Patch {
	return Patch{Op: PatchMoveChild, Path: path, From: from, Index: to}
}

// String renders the patch for logs and CLI output.
func (p Patch) String() string {
	switch p.Op {
	case PatchReplace:
		return fmt.Sprintf("Replace(%s, %s)", p.Path, describe(p.Node))
	case PatchReplaceText:
		return fmt.Sprintf("ReplaceText(%s, %q)", p.Path, p.Text)
	case PatchSetAttr:
		return fmt.Sprintf("SetAttr(%s, %s, %#v)", p.Path, p.Name, p.Value)
	case PatchRemoveAttr:
		return fmt.Sprintf("RemoveAttr(%s, %s)", p.Path, p.Name)
	case PatchAppendChild:
		return fmt.Sprintf("AppendChild(%s, %s)", p.Path, describe(p.Node))
	case PatchRemoveChild:
		return fmt.Sprintf("RemoveChild(%s, %d)", p.Path, p.Index)
	case PatchInsertChild:
		return fmt.Sprintf("InsertChild(%s, %d, %s)", p.Path, p.Index, describe(p.Node))
	case PatchMoveChild:
		return fmt.Sprintf("MoveChild(%s, %d, %d)", p.Path, p.From, p.Index)
	default:
		return fmt.Sprintf("Unknown(0x%02x)", uint8(p.Op))
	}
}

func describe(n *Node) string {
	switch {
	case n == nil:
		return "nil"
	case n.kind == KindText:
		return fmt.Sprintf("Text(%q)", n.text)
	default:
		return fmt.Sprintf("Element(%s, %d attrs, %d children)", n.tag, len(n.attrs), len(n.children))
	}
}

// CountOps tallies patches by operation.
func CountOps(patches []Patch) map[PatchOp]int {
	counts := make(map[PatchOp]int)
	for _, p := range patches {
		counts[p.Op]++
	}
	return counts
}
