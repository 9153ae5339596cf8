// Package live provides a mutable in-memory tree that implements
// vdom.Backend.
//
// A Tree is the reference target for patches: it mounts an immutable
// vdom tree, applies patch lists in order, keeps listener bookkeeping for
// callback-valued attributes and converts back to an immutable tree with
// Snapshot. Any address that cannot be resolved means the tree has drifted
// from the snapshot the patches were computed against; the Backend methods
// panic with a structured error in that case and Tree.Apply turns the panic
// into an error.
//
//	t := live.New(prev, live.WithRegistry(reg))
//	if err := t.Apply(vdom.Diff(prev, next)); err != nil {
//		return err
//	}
//	vdom.Equal(t.Snapshot(), next) // true
package live
