package server

import (
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config configures the Server.
type Config struct {
	// Address to listen on.
	// Default: ":7070".
	Address string

	// BasePath is the prefix every route is mounted under.
	// Default: "/".
	BasePath string

	// ReadBufferSize and WriteBufferSize size the WebSocket I/O buffers.
	// Default: 4096.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates the Origin header of WebSocket upgrades.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// MaxMessageSize caps the size of a frame read from a client.
	// Default: 64KB.
	MaxMessageSize int64

	// ReadTimeout is how long a connection may stay silent. Pongs count.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single frame write.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// PingInterval must be shorter than ReadTimeout.
	// Default: 25 seconds.
	PingInterval time.Duration

	// SendBuffer is the number of frames queued per connection before a
	// slow client is dropped.
	// Default: 64.
	SendBuffer int

	// HistorySize is the number of patch frames kept per session for
	// reconnecting clients.
	// Default: 100.
	HistorySize int

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30 seconds.
	ShutdownTimeout time.Duration

	// Gatherer, when set, is served at /metrics.
	Gatherer prometheus.Gatherer
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:         ":7070",
		BasePath:        "/",
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     SameOriginCheck,
		MaxMessageSize:  64 * 1024,
		ReadTimeout:     60 * time.Second,
		WriteTimeout:    10 * time.Second,
		PingInterval:    25 * time.Second,
		SendBuffer:      64,
		HistorySize:     100,
		ShutdownTimeout: 30 * time.Second,
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.Address == "" {
		out.Address = d.Address
	}
	if out.BasePath == "" {
		out.BasePath = d.BasePath
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = d.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = d.WriteBufferSize
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = d.CheckOrigin
	}
	if out.MaxMessageSize == 0 {
		out.MaxMessageSize = d.MaxMessageSize
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = d.ReadTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.PingInterval == 0 {
		out.PingInterval = d.PingInterval
	}
	if out.PingInterval >= out.ReadTimeout {
		out.PingInterval = out.ReadTimeout * 9 / 10
	}
	if out.SendBuffer == 0 {
		out.SendBuffer = d.SendBuffer
	}
	if out.HistorySize == 0 {
		out.HistorySize = d.HistorySize
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	return &out
}

// SameOriginCheck accepts WebSocket upgrades whose Origin host matches the
// request host, and requests without an Origin header.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == "" {
		return false
	}
	return originURL.Host == r.Host
}

// AllowAnyOrigin accepts every WebSocket upgrade.
func AllowAnyOrigin(*http.Request) bool { return true }
