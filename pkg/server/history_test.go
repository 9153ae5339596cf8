package server

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHistorySince(t *testing.T) {
	h := newHistory(3)
	for seq := uint64(1); seq <= 5; seq++ {
		h.add(seq, []byte{byte(seq)})
	}

	tests := []struct {
		name   string
		after  uint64
		to     uint64
		want   []byte
		wantOK bool
	}{
		{"up to date", 5, 5, nil, true},
		{"last frame", 4, 5, []byte{5}, true},
		{"whole window", 2, 5, []byte{3, 4, 5}, true},
		{"overwritten", 1, 5, nil, false},
		{"ahead of server", 6, 5, nil, false},
		{"beyond history", 4, 6, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames, ok := h.since(tt.after, tt.to)
			if ok != tt.wantOK {
				t.Fatalf("since(%d, %d) ok = %v, want %v", tt.after, tt.to, ok, tt.wantOK)
			}
			var got []byte
			for _, f := range frames {
				got = append(got, f...)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("frames mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHistoryReset(t *testing.T) {
	h := newHistory(0)
	h.add(1, []byte{1})
	if h.size() != 1 {
		t.Errorf("size() = %d, want 1", h.size())
	}
	h.reset()
	if h.size() != 0 {
		t.Errorf("size() after reset = %d, want 0", h.size())
	}
	if _, ok := h.since(0, 1); ok {
		t.Error("since() after reset should not recover")
	}
}
