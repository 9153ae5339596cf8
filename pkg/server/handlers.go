package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/jsonview"
	"github.com/vango-dev/vtree/pkg/session"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// SeqHeader carries the sequence number of the tree returned by the tree
// endpoint.
const SeqHeader = "X-Vtree-Seq"

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.config.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/ws/{session}", s.handleWebSocket)
	r.Post("/sessions/{session}/render", s.handleRender)
	r.Get("/sessions/{session}/tree", s.handleTree)
	r.Delete("/sessions/{session}", s.handleClose)

	base := strings.TrimRight(s.config.BasePath, "/")
	if base == "" {
		return r
	}
	root := chi.NewRouter()
	root.Mount(base, r)
	return root
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.manager.Count(),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session")

	var since uint64
	resume := false
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid since: " + v})
			return
		}
		since, resume = n, true
	}

	h, err := s.hubFor(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := newClient(conn, h, s.config, s.logger.With("session", id))
	if err := h.join(r.Context(), c, since, resume); err != nil {
		s.logger.Error("join failed", "session", id, "error", err)
		c.conn.WriteMessage(websocket.BinaryMessage, errorFrame(err, true))
		c.conn.Close()
		return
	}

	go c.writeLoop()
	c.readLoop(r.Context())
}

type renderResult struct {
	Seq     uint64         `json:"seq"`
	Patches int            `json:"patches"`
	Ops     map[string]int `json:"ops,omitempty"`
	Clients int            `json:"clients"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	h, err := s.hubFor(r.Context(), chi.URLParam(r, "session"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	pf, err := h.render(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	res := renderResult{Seq: pf.Seq, Patches: len(pf.Patches), Clients: h.count()}
	if len(pf.Patches) > 0 {
		res.Ops = make(map[string]int)
		for op, n := range vdom.CountOps(pf.Patches) {
			res.Ops[op.String()] = n
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	h, err := s.hubFor(r.Context(), chi.URLParam(r, "session"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := h.ensureRendered(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}

	snap := h.session.Snapshot()
	data, err := jsonview.Document(snap.Root)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(SeqHeader, strconv.FormatUint(snap.Seq, 10))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	if err := s.closeSession(chi.URLParam(r, "session")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type errorBody struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrMaxSessionsReached), errors.Is(err, session.ErrManagerStopped):
		status = http.StatusServiceUnavailable
	case errors.Is(err, session.ErrClosed):
		status = http.StatusGone
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorBody{Code: vterrors.Code(err), Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
