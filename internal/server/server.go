// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/emadadel4/Eterminal/internal/commands"
	"github.com/emadadel4/Eterminal/internal/storage"
	"github.com/emadadel4/Eterminal/internal/terminal"
)

//go:embed static
var staticFiles embed.FS

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultListen is the default bind address.
	DefaultListen = "127.0.0.1:8080"

	// MaxMessageSize bounds a single client frame.
	MaxMessageSize = 16 * 1024

	// pongWait is how long a connection may stay silent before it is dropped.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait.
	pingPeriod = pongWait * 9 / 10

	writeWait = 10 * time.Second
)

// ============================================================================
// OPTIONS
// ============================================================================

// Options configures a Server.
type Options struct {
	// Listen is the host:port to bind
	Listen string

	// Records is the store shared by every connection
	Records *storage.Records

	// SearchURL is the search template handed to each session
	SearchURL string

	// Prompt is sent to the page in the hello message
	Prompt string

	// MaxLines caps each session's scrollback
	MaxLines int

	// AllowedOrigins lists extra origins allowed to open the WebSocket
	AllowedOrigins []string

	// KeysPerSecond limits key events per connection (0 = unlimited)
	KeysPerSecond float64

	// KeyBurst is the key limiter burst
	KeyBurst int

	// Version is reported by /health
	Version string

	// NewRegistry builds the command registry for a session; nil uses the
	// built-ins
	NewRegistry func() *commands.Registry

	Logger *zap.Logger
}

// ============================================================================
// SERVER
// ============================================================================

// Server serves the terminal page and one terminal session per WebSocket
// connection.
type Server struct {
	opts     Options
	log      *zap.Logger
	mux      *http.ServeMux
	upgrader websocket.Upgrader
	server   *http.Server
	sessions atomic.Int64
	limiter  *IPRateLimiter
	closing  chan struct{}
	once     sync.Once
	mu       sync.Mutex
}

// New creates a Server.
func New(opts Options) *Server {
	if opts.Listen == "" {
		opts.Listen = DefaultListen
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Records == nil {
		opts.Records = storage.NewRecords(storage.NewMemoryKV(), nil, opts.Logger)
	}
	if opts.Prompt == "" {
		opts.Prompt = terminal.DefaultPrompt
	}
	if opts.KeyBurst < 1 {
		opts.KeyBurst = 1
	}
	if opts.NewRegistry == nil {
		opts.NewRegistry = commands.NewRegistry
	}

	s := &Server{
		opts:    opts,
		log:     opts.Logger,
		mux:     http.NewServeMux(),
		limiter: NewIPRateLimiter(50, 100, 10*time.Minute),
		closing: make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	s.setupRoutes()
	return s
}

// Sessions returns the number of open terminal sessions.
func (s *Server) Sessions() int64 { return s.sessions.Load() }

// ============================================================================
// ROUTES
// ============================================================================

func (s *Server) setupRoutes() {
	assets, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(assets)))
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(s.log),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(s.log),
		RateLimitMiddleware(s.limiter, s.log),
	)(s.mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "page missing")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

// HealthResponse is the /health body.
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int64  `json:"sessions"`
	Version  string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Sessions: s.Sessions(),
		Version:  s.opts.Version,
	})
}

// checkOrigin accepts same-host pages, configured origins, and clients that
// send no Origin at all (non-browser tools).
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.opts.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	s.log.Warn("ORIGIN_REJECTED", zap.String("origin", origin), zap.String("host", r.Host))
	return false
}

// ============================================================================
// LIFECYCLE
// ============================================================================

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.opts.Listen)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Serve(ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	s.log.Info("SERVER_START", zap.String("addr", ln.Addr().String()), zap.String("version", s.opts.Version))
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and closes open terminal
// connections, which http.Server does not track once hijacked.
func (s *Server) Shutdown(ctx context.Context) error {
	s.once.Do(func() { close(s.closing) })
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	s.log.Info("SERVER_SHUTDOWN", zap.Int64("sessions", s.Sessions()))
	return srv.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug("WRITE_FAILED", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
