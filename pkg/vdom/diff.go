package vdom

// Options tune the differ. The zero value is the positional algorithm.
type Options struct {
	// Keyed matches children by Key when every child of both lists carries
	// a unique key. Lists that do not qualify are diffed positionally.
	Keyed bool
}

// Diff compares two trees and returns the patches needed to transform a live
// tree congruent to prev into one congruent to next. Children are matched by
// position. Neither tree is modified.
func Diff(prev, next *Node) []Patch {
	return DiffWith(prev, next, Options{})
}

// DiffWith is Diff with options.
func DiffWith(prev, next *Node, opts Options) []Patch {
	var patches []Patch
	d := differ{opts: opts, patches: &patches}

	switch {
	case prev == nil && next == nil:
		return nil
	case prev == nil:
		// Nothing mounted yet: the whole tree is new.
		return []Patch{NewReplacePatch(Root, next)}
	case next == nil:
		return []Patch{NewReplacePatch(Root, NewText(""))}
	}

	d.diff(prev, next, Root)
	return patches
}

type differ struct {
	opts    Options
	patches *[]Patch
}

func (d *differ) emit(p Patch) {
	*d.patches = append(*d.patches, p)
}

// diff recursively compares nodes at the same address and appends patches.
func (d *differ) diff(prev, next *Node, path Path) {
	// Different kinds - replace
	if prev.kind != next.kind {
		d.emit(NewReplacePatch(path, next))
		return
	}

	switch prev.kind {
	case KindText:
		d.diffText(prev, next, path)
	case KindElement:
		d.diffElement(prev, next, path)
	default:
		panic("vdom: unknown node kind " + prev.kind.String())
	}
}

// diffText compares text nodes.
func (d *differ) diffText(prev, next *Node, path Path) {
	if prev.text != next.text {
		d.emit(NewReplaceTextPatch(path, next.text))
	}
}

// diffElement compares element nodes.
func (d *differ) diffElement(prev, next *Node, path Path) {
	// Different tag - replace entire subtree, children are not visited
	if prev.tag != next.tag {
		d.emit(NewReplacePatch(path, next))
		return
	}

	d.diffAttrs(prev, next, path)
	d.diffChildren(prev, next, path)
}

// diffAttrs emits removals in prev order, then additions and changes in
// next order. Unchanged attributes emit nothing.
func (d *differ) diffAttrs(prev, next *Node, path Path) {
	for _, a := range prev.attrs {
		if _, exists := next.index[a.Name]; !exists {
			d.emit(NewRemoveAttrPatch(path, a.Name))
		}
	}

	for _, a := range next.attrs {
		prevVal, exists := prev.Attr(a.Name)
		// Callbacks compare by handle, so a fresh handle always re-installs
		if !exists || !prevVal.Equal(a.Value) {
			d.emit(NewSetAttrPatch(path, a.Name, a.Value))
		}
	}
}

// diffChildren compares and patches child nodes.
func (d *differ) diffChildren(prev, next *Node, path Path) {
	if d.opts.Keyed && uniquelyKeyed(prev.children) && uniquelyKeyed(next.children) {
		d.diffKeyedChildren(prev.children, next.children, path)
		return
	}
	d.diffUnkeyedChildren(prev.children, next.children, path)
}

// diffUnkeyedChildren handles children using positional matching.
func (d *differ) diffUnkeyedChildren(prev, next []*Node, path Path) {
	common := len(prev)
	if len(next) < common {
		common = len(next)
	}

	for i := 0; i < common; i++ {
		d.diff(prev[i], next[i], path.Child(i))
	}

	// Growth: append in ascending order
	for i := common; i < len(next); i++ {
		d.emit(NewAppendChildPatch(path, next[i]))
	}

	// Shrink: snapshot indices in ascending order; Apply removes highest first
	for i := common; i < len(prev); i++ {
		d.emit(NewRemoveChildPatch(path, i))
	}
}

// diffKeyedChildren matches children by key. Removals come first as one run
// addressed at snapshot positions; moves, inserts and recursion then address
// live positions, so the result must be applied in order.
func (d *differ) diffKeyedChildren(prev, next []*Node, path Path) {
	nextKeys := make(map[string]bool, len(next))
	for _, child := range next {
		nextKeys[child.key] = true
	}
	prevByKey := make(map[string]*Node, len(prev))

	// live mirrors the keys of the live child list as patches are emitted
	live := make([]string, 0, len(prev))
	for i, child := range prev {
		if !nextKeys[child.key] {
			d.emit(NewRemoveChildPatch(path, i))
			continue
		}
		prevByKey[child.key] = child
		live = append(live, child.key)
	}

	for target, child := range next {
		prevChild, exists := prevByKey[child.key]
		if !exists {
			d.emit(NewInsertChildPatch(path, target, child))
			live = insertKey(live, target, child.key)
			continue
		}

		// Positions before target already match next, so the key sits at or after target.
		from := indexOfKey(live, child.key, target)
		if from != target {
			d.emit(NewMoveChildPatch(path, from, target))
			live = moveKey(live, from, target)
		}
		d.diff(prevChild, child, path.Child(target))
	}
}

// uniquelyKeyed reports whether every child has a key and no key repeats.
func uniquelyKeyed(children []*Node) bool {
	seen := make(map[string]bool, len(children))
	for _, child := range children {
		if child.key == "" || seen[child.key] {
			return false
		}
		seen[child.key] = true
	}
	return true
}

func indexOfKey(keys []string, key string, from int) int {
	for i := from; i < len(keys); i++ {
		if keys[i] == key {
			return i
		}
	}
	return -1
}

func insertKey(keys []string, at int, key string) []string {
	keys = append(keys, "")
	copy(keys[at+1:], keys[at:])
	keys[at] = key
	return keys
}

func moveKey(keys []string, from, to int) []string {
	key := keys[from]
	keys = append(keys[:from], keys[from+1:]...)
	return insertKey(keys, to, key)
}
