package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/live"
	"github.com/vango-dev/vtree/pkg/protocol"
	"github.com/vango-dev/vtree/pkg/snapshot"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// TracerName is the name of the tracer used when none is configured.
const TracerName = "vtree"

// App produces the tree a session displays. View is called on every
// render and must return a fresh description of the whole tree.
type App interface {
	View() *vdom.Node
}

// AppFunc adapts a function to App.
type AppFunc func() *vdom.Node

// View calls f.
func (f AppFunc) View() *vdom.Node { return f() }

// AppFactory builds the App for a new session. Listener callbacks must be
// registered in reg so that Dispatch can find them.
type AppFactory func(id string, reg *vdom.Registry) App

// Option configures a Session.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	metrics  *Metrics
	tracer   trace.Tracer
	store    snapshot.Store
	keyed    bool
	registry *vdom.Registry
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records renders and dispatches in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracer sets the tracer (default: the global provider's "vtree"
// tracer).
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithStore persists the tree after every render that changed it, and
// restores it when the session is opened.
func WithStore(s snapshot.Store) Option {
	return func(o *options) { o.store = s }
}

// WithKeyed enables key-based child matching.
func WithKeyed(keyed bool) Option {
	return func(o *options) { o.keyed = keyed }
}

// WithRegistry sets the callback registry (default: a new one per
// session).
func WithRegistry(r *vdom.Registry) Option {
	return func(o *options) { o.registry = r }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(TracerName)
	}
	if o.registry == nil {
		o.registry = vdom.NewRegistry()
	}
	return o
}

// Session reconciles one App against the tree its clients display.
// Render diffs the previous view against the next and returns the patch
// batch that moves a client from one to the other.
//
// A Session is safe for concurrent use. Listener handlers run without the
// session lock held.
type Session struct {
	id   string
	app  App
	opts options

	mu      sync.Mutex
	current *vdom.Node
	tree    *live.Tree
	seq     uint64
	closed  bool
}

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session: closed")

// Open creates a session and restores its last snapshot from the store,
// if one is configured and holds a snapshot for id.
func Open(ctx context.Context, id string, newApp AppFactory, opts ...Option) (*Session, error) {
	o := buildOptions(opts)
	s := &Session{
		id:   id,
		opts: o,
	}
	s.app = newApp(id, o.registry)

	if o.store != nil {
		snap, err := o.store.Load(ctx, id)
		switch {
		case err == nil:
			s.current = snap.Root
			s.seq = snap.Seq
			o.logger.Info("session restored", "session", id, "seq", snap.Seq)
		case errors.Is(err, snapshot.ErrNotFound):
		default:
			return nil, err
		}
	}

	s.tree = live.New(s.current, live.WithRegistry(o.registry))
	o.metrics.sessionOpened()
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Registry returns the registry listener callbacks resolve through.
func (s *Session) Registry() *vdom.Registry { return s.opts.registry }

// Keyed reports whether the session diffs children by key.
func (s *Session) Keyed() bool { return s.opts.keyed }

// Snapshot returns the last rendered tree and its sequence number. The
// tree is nil before the first render.
func (s *Session) Snapshot() snapshot.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot.Snapshot{Seq: s.seq, Root: s.current}
}

// Render asks the App for its view and returns the patches from the
// previous view. A render that changes nothing returns an empty frame
// carrying the current sequence number; otherwise the sequence number is
// incremented and the new tree is persisted.
func (s *Session) Render(ctx context.Context) (*protocol.PatchesFrame, error) {
	ctx, span := s.opts.tracer.Start(ctx, "vtree.render",
		trace.WithAttributes(attribute.String("vtree.session_id", s.id)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	next := s.app.View()

	start := time.Now()
	patches := vdom.DiffWith(s.current, next, vdom.Options{Keyed: s.opts.keyed})
	s.opts.metrics.observeRender(time.Since(start), patches)

	span.SetAttributes(attribute.Int("vtree.patches", len(patches)))
	if len(patches) == 0 {
		return &protocol.PatchesFrame{Seq: s.seq}, nil
	}

	if err := s.tree.Apply(patches); err != nil {
		// The mirror drifted from the view it was built from; remount it.
		s.opts.logger.Error("live tree drift", "session", s.id, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.tree = live.New(next, live.WithRegistry(s.opts.registry))
	}

	s.current = next
	s.seq++
	span.SetAttributes(attribute.Int64("vtree.seq", int64(s.seq)))

	s.opts.logger.Debug("render", "session", s.id, "seq", s.seq, "patches", len(patches))

	if s.opts.store != nil {
		if err := s.opts.store.Save(ctx, s.id, snapshot.Snapshot{Seq: s.seq, Root: next}); err != nil {
			s.opts.logger.Warn("snapshot save failed", "session", s.id, "seq", s.seq, "error", err)
		}
	}

	return &protocol.PatchesFrame{Seq: s.seq, Patches: patches}, nil
}

// Dispatch invokes the listener for em.Event on the node at em.Path and
// re-renders. The returned frame holds the patches the handler caused.
func (s *Session) Dispatch(ctx context.Context, em *protocol.EventMessage) (*protocol.PatchesFrame, error) {
	ctx, span := s.opts.tracer.Start(ctx, "vtree.dispatch",
		trace.WithAttributes(
			attribute.String("vtree.session_id", s.id),
			attribute.String("vtree.event", em.Event),
			attribute.String("vtree.path", em.Path.String()),
		))
	defer span.End()

	if err := s.invoke(em); err != nil {
		s.opts.metrics.dispatchError(vterrors.Code(err))
		s.opts.logger.Warn("dispatch failed", "session", s.id, "path", em.Path.String(), "event", em.Event, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return s.Render(ctx)
}

func (s *Session) invoke(em *protocol.EventMessage) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if vdom.Lookup(s.current, em.Path) == nil {
		s.mu.Unlock()
		return vterrors.New("E101").WithPath(em.Path)
	}
	cb, ok := s.tree.Listener(em.Path, em.Event)
	s.mu.Unlock()

	if !ok {
		return vterrors.New("E104").WithPath(em.Path).WithDetailf("no %q listener", em.Event)
	}
	if !s.opts.registry.Invoke(cb, em.Payload) {
		return vterrors.New("E104").WithPath(em.Path).WithDetailf("%s for %q is not registered", cb, em.Event)
	}
	return nil
}

// Close marks the session closed. The stored snapshot is kept so the
// session can be reopened later.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.opts.metrics.sessionClosed()
	return nil
}
