package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/protocol"
	"github.com/vango-dev/vtree/pkg/snapshot"
	"github.com/vango-dev/vtree/pkg/vdom"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// metricValue reads a counter or gauge, or the sample count of a histogram.
func metricValue(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var pb dto.Metric
	if err := m.Write(&pb); err != nil {
		t.Fatal(err)
	}
	switch {
	case pb.Counter != nil:
		return pb.GetCounter().GetValue()
	case pb.Gauge != nil:
		return pb.GetGauge().GetValue()
	case pb.Histogram != nil:
		return float64(pb.GetHistogram().GetSampleCount())
	}
	t.Fatalf("unsupported metric %s", m.Desc())
	return 0
}

// counterApp renders a button showing how often it was clicked.
type counterApp struct {
	count int
	inc   vdom.Callback
}

func newCounter(id string, reg *vdom.Registry) App {
	c := &counterApp{}
	c.inc = reg.Register(func(vdom.Value) { c.count++ })
	return c
}

func (c *counterApp) View() *vdom.Node {
	return vdom.Div(
		vdom.Class("counter"),
		vdom.Button(vdom.OnClick(c.inc), vdom.Textf("%d", c.count)),
	)
}

func summaries(pf *protocol.PatchesFrame) []string {
	out := make([]string, len(pf.Patches))
	for i, p := range pf.Patches {
		out[i] = p.String()
	}
	return out
}

func TestRenderAndDispatch(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "s1", newCounter, WithLogger(quiet))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	frame, err := s.Render(ctx)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if frame.Seq != 1 || len(frame.Patches) != 1 || frame.Patches[0].Op != vdom.PatchReplace {
		t.Fatalf("first Render() = seq %d %v, want one Replace at seq 1", frame.Seq, summaries(frame))
	}

	frame, err = s.Render(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if frame.Seq != 1 || len(frame.Patches) != 0 {
		t.Errorf("idle Render() = seq %d %v, want no patches at seq 1", frame.Seq, summaries(frame))
	}

	frame, err = s.Dispatch(ctx, &protocol.EventMessage{Path: vdom.Path{0}, Event: "click", Payload: vdom.Null()})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	want := []string{`ReplaceText(/0/0, "1")`}
	got := summaries(frame)
	if len(got) != 1 || got[0] != want[0] || frame.Seq != 2 {
		t.Errorf("Dispatch() = seq %d %v, want seq 2 %v", frame.Seq, got, want)
	}

	snap := s.Snapshot()
	if snap.Seq != 2 || snap.Root.Child(0).Child(0).Text() != "1" {
		t.Errorf("Snapshot() = seq %d", snap.Seq)
	}
}

func TestDispatchErrors(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegisterer(reg))

	s, err := Open(ctx, "s1", newCounter, WithLogger(quiet), WithMetrics(m))
	if err != nil {
		t.Fatal(err)
	}

	// Nothing rendered yet
	_, err = s.Dispatch(ctx, &protocol.EventMessage{Path: vdom.Root, Event: "click"})
	if vterrors.Code(err) != "E101" {
		t.Errorf("Dispatch() before render = %v, want E101", err)
	}

	if _, err := s.Render(ctx); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		em   *protocol.EventMessage
		code string
	}{
		{"missing node", &protocol.EventMessage{Path: vdom.Path{4}, Event: "click"}, "E101"},
		{"no listener", &protocol.EventMessage{Path: vdom.Root, Event: "click"}, "E104"},
		{"wrong event", &protocol.EventMessage{Path: vdom.Path{0}, Event: "input"}, "E104"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Dispatch(ctx, tt.em)
			if vterrors.Code(err) != tt.code {
				t.Errorf("Dispatch() = %v, want %s", err, tt.code)
			}
		})
	}

	if got := metricValue(t, m.dispatchErrors.WithLabelValues("E104")); got != 2 {
		t.Errorf("dispatch_errors_total{code=E104} = %v, want 2", got)
	}
	if got := metricValue(t, m.dispatchErrors.WithLabelValues("E101")); got != 2 {
		t.Errorf("dispatch_errors_total{code=E101} = %v, want 2", got)
	}
}

func TestRenderMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegisterer(reg), WithNamespace("test"))

	s, err := Open(ctx, "s1", newCounter, WithLogger(quiet), WithMetrics(m))
	if err != nil {
		t.Fatal(err)
	}
	if got := metricValue(t, m.activeSessions); got != 1 {
		t.Errorf("active_sessions = %v, want 1", got)
	}

	s.Render(ctx)
	s.Render(ctx)
	s.Dispatch(ctx, &protocol.EventMessage{Path: vdom.Path{0}, Event: "click"})

	if got := metricValue(t, m.rendersTotal); got != 2 {
		t.Errorf("renders_total = %v, want 2", got)
	}
	if got := metricValue(t, m.patchesTotal.WithLabelValues("Replace")); got != 1 {
		t.Errorf("patches_total{op=Replace} = %v, want 1", got)
	}
	if got := metricValue(t, m.patchesTotal.WithLabelValues("ReplaceText")); got != 1 {
		t.Errorf("patches_total{op=ReplaceText} = %v, want 1", got)
	}
	if got := metricValue(t, m.diffDuration); got == 0 {
		t.Error("diff_duration_seconds has no observations")
	}

	s.Close()
	s.Close()
	if got := metricValue(t, m.activeSessions); got != 0 {
		t.Errorf("active_sessions after Close = %v, want 0", got)
	}
	if _, err := s.Render(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Render() after Close = %v, want ErrClosed", err)
	}
}

func TestRestoreFromStore(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()

	s, err := Open(ctx, "s1", newCounter, WithLogger(quiet), WithStore(store))
	if err != nil {
		t.Fatal(err)
	}
	s.Render(ctx)
	s.Dispatch(ctx, &protocol.EventMessage{Path: vdom.Path{0}, Event: "click"})

	stored, err := store.Load(ctx, "s1")
	if err != nil || stored.Seq != 2 {
		t.Fatalf("stored snapshot = %+v, %v", stored, err)
	}

	// A fresh process: new registry, new counter at zero.
	restored, err := Open(ctx, "s1", newCounter, WithLogger(quiet), WithStore(store))
	if err != nil {
		t.Fatal(err)
	}
	if got := restored.Snapshot(); got.Seq != 2 || !vdom.Equal(got.Root, stored.Root) {
		t.Errorf("restored Snapshot() seq = %d", got.Seq)
	}

	frame, err := restored.Render(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if frame.Seq != 3 {
		t.Errorf("Seq = %d, want 3", frame.Seq)
	}
	for _, p := range frame.Patches {
		if p.Op == vdom.PatchReplace {
			t.Errorf("restored render replaced %s; want an incremental update", p.Path)
		}
	}
}

func TestKeyedSession(t *testing.T) {
	ctx := context.Background()
	items := []string{"a", "b", "c"}
	newList := func(string, *vdom.Registry) App {
		return AppFunc(func() *vdom.Node {
			lis := make([]*vdom.Node, len(items))
			for i, it := range items {
				lis[i] = vdom.Li(vdom.Key(it), vdom.Text(it))
			}
			return vdom.Ul(lis)
		})
	}

	s, err := Open(ctx, "list", newList, WithLogger(quiet), WithKeyed(true))
	if err != nil {
		t.Fatal(err)
	}
	if !s.Keyed() {
		t.Error("Keyed() = false")
	}
	s.Render(ctx)

	items = []string{"c", "a", "b"}
	frame, err := s.Render(ctx)
	if err != nil {
		t.Fatal(err)
	}
	counts := vdom.CountOps(frame.Patches)
	if counts[vdom.PatchMoveChild] == 0 || counts[vdom.PatchReplaceText] != 0 {
		t.Errorf("keyed reorder = %v, want moves only", summaries(frame))
	}
}
