package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-dev/vtree/pkg/protocol"
	"github.com/vango-dev/vtree/pkg/session"
)

// hub fans the patch frames of one session out to every connection
// watching it. Renders and dispatches go through the hub lock so frames
// reach every client in sequence order, and a joining client sees either
// a frame or the snapshot that already contains it, never both.
type hub struct {
	session *session.Session
	history *history
	logger  *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

func newHub(s *session.Session, historySize int, logger *slog.Logger) *hub {
	return &hub{
		session: s,
		history: newHistory(historySize),
		logger:  logger.With("session", s.ID()),
		clients: make(map[*client]struct{}),
	}
}

func (h *hub) flags() protocol.FrameFlags {
	flags := protocol.FlagFinal
	if h.session.Keyed() {
		flags |= protocol.FlagKeyed
	}
	return flags
}

// join registers c and queues the frames that bring it up to date. A
// client that reports the sequence number it last saw (resume) is replayed
// the missed patch frames when the history still holds them; any other
// client receives the whole tree in a Snapshot frame.
func (h *hub) join(ctx context.Context, c *client, since uint64, resume bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return session.ErrClosed
	}

	snap := h.session.Snapshot()
	if snap.Root == nil {
		if _, err := h.renderLocked(ctx); err != nil {
			return err
		}
		snap = h.session.Snapshot()
	}

	h.clients[c] = struct{}{}

	if resume {
		if frames, ok := h.history.since(since, snap.Seq); ok && len(frames) < cap(c.send) {
			h.logger.Debug("client resumed", "since", since, "replayed", len(frames))
			for _, f := range frames {
				h.sendLocked(c, f)
			}
			return nil
		}
	}

	flags := h.flags()
	if resume {
		flags |= protocol.FlagResync
	}
	payload := protocol.EncodeSnapshot(&protocol.SnapshotMessage{Seq: snap.Seq, Root: snap.Root})
	h.sendLocked(c, protocol.NewFrameWithFlags(protocol.FrameSnapshot, flags, payload).Encode())
	h.logger.Debug("client joined", "seq", snap.Seq, "clients", len(h.clients))
	return nil
}

// leave unregisters c and closes its send queue.
func (h *hub) leave(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

// reply queues frame for c alone.
func (h *hub) reply(c *client, frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.sendLocked(c, frame)
	}
}

// render re-renders the session and broadcasts the resulting patches.
func (h *hub) render(ctx context.Context) (*protocol.PatchesFrame, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.renderLocked(ctx)
}

// ensureRendered renders once if the session has never been rendered.
func (h *hub) ensureRendered(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session.Snapshot().Root != nil {
		return nil
	}
	_, err := h.renderLocked(ctx)
	return err
}

func (h *hub) renderLocked(ctx context.Context) (*protocol.PatchesFrame, error) {
	pf, err := h.session.Render(ctx)
	if err != nil {
		return nil, err
	}
	h.publishLocked(pf)
	return pf, nil
}

// dispatch delivers an event to the session and broadcasts the patches the
// listener caused.
func (h *hub) dispatch(ctx context.Context, em *protocol.EventMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	pf, err := h.session.Dispatch(ctx, em)
	if err != nil {
		return err
	}
	h.publishLocked(pf)
	return nil
}

func (h *hub) publishLocked(pf *protocol.PatchesFrame) {
	if len(pf.Patches) == 0 {
		return
	}
	frame := protocol.NewFrameWithFlags(protocol.FramePatches, h.flags(), protocol.EncodePatches(pf)).Encode()
	h.history.add(pf.Seq, frame)
	for c := range h.clients {
		h.sendLocked(c, frame)
	}
}

func (h *hub) sendLocked(c *client, frame []byte) {
	select {
	case c.send <- frame:
	default:
		h.logger.Warn("dropping slow client", "queued", len(c.send))
		h.dropLocked(c)
	}
}

func (h *hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// close disconnects every client. The session itself is left to its
// manager.
func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
	h.history.reset()
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
