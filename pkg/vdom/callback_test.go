package vdom

import (
	"sync"
	"testing"
)

func TestRegistryRegisterIsFresh(t *testing.T) {
	reg := NewRegistry()
	h := func(Value) {}

	a := reg.Register(h)
	b := reg.Register(h)

	if a == b {
		t.Errorf("Register returned the same handle twice: %v", a)
	}
	if !a.Valid() || !b.Valid() {
		t.Error("issued handles should be valid")
	}
	if (Callback{}).Valid() {
		t.Error("zero handle should be invalid")
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}
}

func TestRegistryHandlesUniqueAcrossRegistries(t *testing.T) {
	a := NewRegistry().Register(nil)
	b := NewRegistry().Register(nil)
	if a == b {
		t.Errorf("handles from different registries collide: %v", a)
	}
}

func TestRegistryInvoke(t *testing.T) {
	reg := NewRegistry()
	var got Value
	cb := reg.Register(func(p Value) { got = p })

	if !reg.Invoke(cb, String("payload")) {
		t.Fatal("Invoke returned false for a live handle")
	}
	if !got.Equal(String("payload")) {
		t.Errorf("handler got %#v, want payload", got)
	}

	reg.Release(cb)
	if reg.Invoke(cb, Null()) {
		t.Error("Invoke should fail after Release")
	}
	if reg.Invoke(CallbackFromID(0), Null()) {
		t.Error("Invoke should fail for unknown handle")
	}
}

func TestRegistryRetain(t *testing.T) {
	reg := NewRegistry()
	keep := reg.Register(func(Value) {})
	reg.Register(func(Value) {})
	reg.Register(func(Value) {})

	released := reg.Retain(map[Callback]bool{keep: true})

	if released != 2 {
		t.Errorf("Retain released %d, want 2", released)
	}
	if _, ok := reg.Lookup(keep); !ok {
		t.Error("kept handle was released")
	}
}

func TestRegistryConcurrent(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	handles := make([]Callback, 64)

	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i] = reg.Register(func(Value) {})
			reg.Invoke(handles[i], Int(int64(i)))
		}(i)
	}
	wg.Wait()

	seen := make(map[Callback]bool)
	for _, h := range handles {
		if seen[h] {
			t.Fatalf("duplicate handle %v", h)
		}
		seen[h] = true
	}
}

func TestCallbackString(t *testing.T) {
	if got := CallbackFromID(12).String(); got != "callback#12" {
		t.Errorf("String() = %q, want callback#12", got)
	}
	if CallbackFromID(12).ID() != 12 {
		t.Error("ID() mismatch")
	}
}
