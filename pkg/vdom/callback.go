package vdom

import (
	"strconv"
	"sync"
	"sync/atomic"
)

// handleCounter is shared by every Registry so handles never collide
// across registries.
var handleCounter atomic.Uint64

// Callback is an opaque handle to application behavior attached to an event
// attribute. Handles compare by identity: two handles are equal only if they
// came from the same Register call.
type Callback struct {
	id uint64
}

// CallbackFromID rebuilds a handle from its numeric identity, e.g. after
// decoding it from the wire.
func CallbackFromID(id uint64) Callback { return Callback{id: id} }

// ID returns the numeric identity of the handle.
func (c Callback) ID() uint64 { return c.id }

// Valid reports whether c was issued by a Registry.
func (c Callback) Valid() bool { return c.id != 0 }

// String returns the handle in callback#<id> form.
func (c Callback) String() string { return "callback#" + strconv.FormatUint(c.id, 10) }

// Handler is the behavior behind a Callback. The payload describes the event
// (mouse position, input text, key code) as a Value.
type Handler func(payload Value)

// Registry associates Callback handles with their handlers.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Callback]Handler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Callback]Handler)}
}

// Register stores h and returns a fresh handle for it. Registering the same
// function twice yields two distinct handles.
func (r *Registry) Register(h Handler) Callback {
	cb := Callback{id: handleCounter.Add(1)}
	r.mu.Lock()
	r.handlers[cb] = h
	r.mu.Unlock()
	return cb
}

// Lookup returns the handler behind cb.
func (r *Registry) Lookup(cb Callback) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[cb]
	return h, ok
}

// Invoke calls the handler behind cb with payload. It reports false when the
// handle is unknown or has been released.
func (r *Registry) Invoke(cb Callback, payload Value) bool {
	h, ok := r.Lookup(cb)
	if !ok || h == nil {
		return false
	}
	h(payload)
	return true
}

// Release forgets cb.
func (r *Registry) Release(cb Callback) {
	r.mu.Lock()
	delete(r.handlers, cb)
	r.mu.Unlock()
}

// Retain releases every handle not present in keep.
func (r *Registry) Retain(keep map[Callback]bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	released := 0
	for cb := range r.handlers {
		if !keep[cb] {
			delete(r.handlers, cb)
			released++
		}
	}
	return released
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
