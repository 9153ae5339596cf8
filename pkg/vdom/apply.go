package vdom

import (
	"fmt"
	"sort"
)

// Backend is a live tree that patches can be applied to: a markup document,
// a native widget hierarchy, a text-mode cell grid. Paths are relative to
// the backend's root and are always valid when patches from Diff are applied
// in order to a tree congruent with the diffed snapshot; a backend that
// cannot resolve an address has drifted and should panic.
type Backend interface {
	// Replace destroys the node at path and mounts node in its place.
	Replace(path Path, node *Node)

	// ReplaceText overwrites the payload of the text node at path.
	ReplaceText(path Path, text string)

	// SetAttr upserts an attribute. A callback value replaces any listener
	// installed under name, detaching the old one first.
	SetAttr(path Path, name string, value Value)

	// RemoveAttr deletes an attribute, or detaches a listener.
	RemoveAttr(path Path, name string)

	// AppendChild mounts node as the last child of path.
	AppendChild(path Path, node *Node)

	// InsertChild mounts node so that it becomes child index of path.
	InsertChild(path Path, index int, node *Node)

	// RemoveChild destroys child index of path.
	RemoveChild(path Path, index int)

	// MoveChild detaches child from of path and re-inserts it at index to.
	MoveChild(path Path, from, to int)
}

// Apply applies patches to b in emission order. A consecutive run of
// RemoveChild patches addressing the same parent is applied highest index
// first, so the snapshot indices emitted by the differ stay valid.
func Apply(b Backend, patches []Patch) {
	for i := 0; i < len(patches); {
		p := patches[i]
		if p.Op != PatchRemoveChild {
			applyOne(b, p)
			i++
			continue
		}

		j := i + 1
		for j < len(patches) && patches[j].Op == PatchRemoveChild && patches[j].Path.Equal(p.Path) {
			j++
		}
		indices := make([]int, 0, j-i)
		for _, rp := range patches[i:j] {
			indices = append(indices, rp.Index)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(indices)))
		for _, idx := range indices {
			b.RemoveChild(p.Path, idx)
		}
		i = j
	}
}

func applyOne(b Backend, p Patch) {
	switch p.Op {
	case PatchReplace:
		b.Replace(p.Path, p.Node)
	case PatchReplaceText:
		b.ReplaceText(p.Path, p.Text)
	case PatchSetAttr:
		b.SetAttr(p.Path, p.Name, p.Value)
	case PatchRemoveAttr:
		b.RemoveAttr(p.Path, p.Name)
	case PatchAppendChild:
		b.AppendChild(p.Path, p.Node)
	case PatchInsertChild:
		b.InsertChild(p.Path, p.Index, p.Node)
	case PatchRemoveChild:
		b.RemoveChild(p.Path, p.Index)
	case PatchMoveChild:
		b.MoveChild(p.Path, p.From, p.Index)
	default:
		panic(fmt.Sprintf("vdom: cannot apply patch op %s (0x%02x)", p.Op, uint8(p.Op)))
	}
}
