package main

import (
	"github.com/vango-dev/vtree/pkg/treefile"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// treePair is two documents decoded against one registry, so that a
// "$name" listener reference is the same handle in both trees.
type treePair struct {
	prev, next *vdom.Node
	registry   *vdom.Registry
	callbacks  *treefile.NamedCallbacks
}

func loadPair(oldPath, newPath string) (*treePair, error) {
	reg := vdom.NewRegistry()
	cbs := treefile.NewNamedCallbacks(reg)

	prev, err := treefile.DecodeFile(oldPath, cbs)
	if err != nil {
		return nil, err
	}
	next, err := treefile.DecodeFile(newPath, cbs)
	if err != nil {
		return nil, err
	}
	return &treePair{prev: prev, next: next, registry: reg, callbacks: cbs}, nil
}
