package treefile

import (
	"strconv"
	"strings"
	"sync"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// Callbacks resolves the "$name" references a document puts on listener
// attributes, and names handles when a tree is written back.
type Callbacks interface {
	Resolve(name string) (vdom.Callback, bool)
	Name(cb vdom.Callback) (string, bool)
}

// NamedCallbacks hands out one stable handle per name. A handle exists as
// soon as a document mentions its name; Handle attaches the code that runs
// when it is invoked.
type NamedCallbacks struct {
	mu       sync.Mutex
	registry *vdom.Registry
	handles  map[string]vdom.Callback
	names    map[vdom.Callback]string
	handlers map[string]vdom.Handler
	fallback func(name string, payload vdom.Value)
}

// NewNamedCallbacks returns a resolver that registers its handles in r.
func NewNamedCallbacks(r *vdom.Registry) *NamedCallbacks {
	return &NamedCallbacks{
		registry: r,
		handles:  make(map[string]vdom.Callback),
		names:    make(map[vdom.Callback]string),
		handlers: make(map[string]vdom.Handler),
	}
}

// Handle sets the handler behind name.
func (nc *NamedCallbacks) Handle(name string, h vdom.Handler) vdom.Callback {
	nc.mu.Lock()
	nc.handlers[name] = h
	nc.mu.Unlock()
	cb, _ := nc.Resolve(name)
	return cb
}

// HandleUnknown sets the function run for names without a handler.
func (nc *NamedCallbacks) HandleUnknown(fn func(name string, payload vdom.Value)) {
	nc.mu.Lock()
	nc.fallback = fn
	nc.mu.Unlock()
}

// Resolve returns the handle for name, allocating it on first use.
func (nc *NamedCallbacks) Resolve(name string) (vdom.Callback, bool) {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	if cb, ok := nc.handles[name]; ok {
		return cb, true
	}
	cb := nc.registry.Register(func(payload vdom.Value) {
		nc.mu.Lock()
		h, fallback := nc.handlers[name], nc.fallback
		nc.mu.Unlock()
		switch {
		case h != nil:
			h(payload)
		case fallback != nil:
			fallback(name, payload)
		}
	})
	nc.handles[name] = cb
	nc.names[cb] = name
	return cb, true
}

// Name returns the name a handle was allocated for.
func (nc *NamedCallbacks) Name(cb vdom.Callback) (string, bool) {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	name, ok := nc.names[cb]
	return name, ok
}

// Len returns the number of names seen.
func (nc *NamedCallbacks) Len() int {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return len(nc.handles)
}

// rawHandlePrefix marks a reference to a bare handle id ("$#12"), written
// for callbacks that have no name.
const rawHandlePrefix = "#"

func parseRawHandle(ref string) (vdom.Callback, bool) {
	if !strings.HasPrefix(ref, rawHandlePrefix) {
		return vdom.Callback{}, false
	}
	id, err := strconv.ParseUint(ref[len(rawHandlePrefix):], 10, 64)
	if err != nil || id == 0 {
		return vdom.Callback{}, false
	}
	return vdom.CallbackFromID(id), true
}

func formatRawHandle(cb vdom.Callback) string {
	return rawHandlePrefix + strconv.FormatUint(cb.ID(), 10)
}
