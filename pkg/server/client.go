package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/protocol"
	"github.com/vango-dev/vtree/pkg/session"
)

// client is one WebSocket connection watching a session.
type client struct {
	conn   *websocket.Conn
	hub    *hub
	config *Config
	logger *slog.Logger

	// send is closed by the hub when the client leaves.
	send chan []byte
}

func newClient(conn *websocket.Conn, h *hub, config *Config, logger *slog.Logger) *client {
	return &client{
		conn:   conn,
		hub:    h,
		config: config,
		logger: logger.With("remote", conn.RemoteAddr().String()),
		send:   make(chan []byte, config.SendBuffer),
	}
}

// readLoop reads frames until the connection fails or closes.
func (c *client) readLoop(ctx context.Context) {
	defer c.hub.leave(c)

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Error("read error", "error", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			c.logger.Warn("frame decode error", "error", err)
			c.hub.reply(c, errorFrame(err, false))
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			if !c.handleEvent(ctx, frame.Payload) {
				return
			}
		default:
			c.logger.Warn("unexpected frame type", "type", frame.Type)
			err := vterrors.New("E201").WithDetailf("clients may only send Event frames, got %s", frame.Type)
			c.hub.reply(c, errorFrame(err, false))
		}
	}
}

// handleEvent dispatches an Event frame. It reports false when the
// connection should be closed.
func (c *client) handleEvent(ctx context.Context, payload []byte) bool {
	em, err := protocol.DecodeEvent(payload)
	if err != nil {
		c.logger.Warn("event decode error", "error", err)
		c.hub.reply(c, errorFrame(err, false))
		return true
	}

	if err := c.hub.dispatch(ctx, em); err != nil {
		fatal := errors.Is(err, session.ErrClosed)
		c.hub.reply(c, errorFrame(err, fatal))
		return !fatal
	}
	return true
}

// writeLoop writes queued frames and keeps the connection alive with
// pings. It closes the connection when the send queue is closed.
func (c *client) writeLoop() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				c.logger.Debug("write error", "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("ping error", "error", err)
				return
			}
		}
	}
}

func errorFrame(err error, fatal bool) []byte {
	em := protocol.NewError(err, fatal)
	return protocol.NewFrame(protocol.FrameError, protocol.EncodeErrorMessage(em)).Encode()
}
