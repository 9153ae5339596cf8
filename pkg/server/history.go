package server

import "sync"

// history is a ring buffer of encoded patch frames, indexed by sequence
// number. A reconnecting client that knows its last sequence number is
// caught up from here instead of receiving a full snapshot.
type history struct {
	mu       sync.RWMutex
	frames   [][]byte
	seqs     []uint64
	head     int // next write position
	count    int
	capacity int
}

func newHistory(capacity int) *history {
	if capacity <= 0 {
		capacity = 100
	}
	return &history{
		frames:   make([][]byte, capacity),
		seqs:     make([]uint64, capacity),
		capacity: capacity,
	}
}

// add stores frame under seq. Sequence numbers must be added in
// increasing order; the oldest frame is overwritten when full.
func (h *history) add(seq uint64, frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.frames[h.head] = frame
	h.seqs[h.head] = seq
	h.head = (h.head + 1) % h.capacity
	if h.count < h.capacity {
		h.count++
	}
}

// since returns the frames for sequences (after, to], oldest first. ok is
// false when any frame in the range has been overwritten or was never
// recorded. An empty range is always recoverable.
func (h *history) since(after, to uint64) (frames [][]byte, ok bool) {
	if after == to {
		return nil, true
	}
	if after > to {
		return nil, false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	want := after + 1
	for i := 0; i < h.count; i++ {
		idx := (h.head - h.count + i + h.capacity) % h.capacity
		seq := h.seqs[idx]
		if seq < want {
			continue
		}
		if seq != want {
			return nil, false
		}
		frames = append(frames, h.frames[idx])
		if want == to {
			return frames, true
		}
		want++
	}
	return nil, false
}

// reset drops every frame.
func (h *history) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.frames {
		h.frames[i] = nil
		h.seqs[i] = 0
	}
	h.head = 0
	h.count = 0
}

func (h *history) size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}
