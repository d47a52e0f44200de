// Package server serves dungeon previews over WebSocket. A client sends
// {"seed":"...","rows":2} and receives the rendered map as text rows.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/dungeongen/internal/catalog"
	"github.com/lawnchairsociety/dungeongen/internal/config"
)

const shutdownTimeout = 5 * time.Second

// Server is the preview server.
type Server struct {
	cfg         *config.Config
	log         *slog.Logger
	connLimiter *ConnLimiter
	reqLimiter  *RequestLimiter
	catalog     *catalog.Catalog
	upgrader    websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

// NewServer creates a server for cfg. A nil logger discards output.
func NewServer(cfg *config.Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		cfg:         cfg,
		log:         log,
		connLimiter: NewConnLimiter(cfg.Server.MaxPerIP, cfg.Server.MaxTotal),
		reqLimiter:  NewRequestLimiter(cfg.Server.RateLimit),
		clients:     make(map[*wsClient]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// SetCatalog makes the server record every preview it generates.
func (s *Server) SetCatalog(c *catalog.Catalog) {
	s.catalog = c
}

// ConnLimiter returns the server's connection limiter.
func (s *Server) ConnLimiter() *ConnLimiter {
	return s.connLimiter
}

// Handler returns the HTTP routes: /ws for previews, /runs for the catalog
// listing and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocketUpgrade)
	mux.HandleFunc("GET /runs", s.handleRuns)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	return mux
}

// ListenAndServe serves on the configured address until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then closes every preview
// connection.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go s.reqLimiter.cleanupLoop(ctx)

	errc := make(chan error, 1)
	go func() {
		s.log.Info("Preview server listening", "address", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.closeClients()

	if err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("Preview server stopped")
	return nil
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	allowed := s.cfg.Server.IsOriginAllowed(origin, r.Host)
	if !allowed {
		s.log.Warn("WebSocket connection rejected - origin not allowed",
			"origin", origin,
			"host", r.Host,
			"remote_addr", r.RemoteAddr)
	}
	return allowed
}

func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r, s.cfg.Server.TrustProxy)

	release, err := s.connLimiter.Acquire(ip)
	if err != nil {
		s.log.Warn("WebSocket connection rejected",
			"remote_addr", r.RemoteAddr,
			"client_ip", ip,
			"reason", err)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}
	defer release()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("WebSocket upgrade failed", "client_ip", ip, "error", err)
		return
	}

	s.handleClient(r.Context(), newWSClient(conn, ip, s.cfg.Server.MaxMessageSize))
}

func (s *Server) handleClient(ctx context.Context, client *wsClient) {
	s.mu.Lock()
	s.clients[client] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, client)
		s.mu.Unlock()
		client.Close()
	}()

	s.log.Debug("Preview client connected", "client_ip", client.ip)

	for {
		req, err := client.ReadRequest()
		if err != nil {
			if !isDecodeError(err) {
				s.log.Debug("Preview client disconnected", "client_ip", client.ip, "reason", err)
				return
			}
			if err := client.WriteResponse(Response{Error: "invalid request: " + err.Error()}); err != nil {
				return
			}
			continue
		}

		if ok, retry := s.reqLimiter.Allow(client.ip); !ok {
			s.log.Warn("Preview rate limited", "client_ip", client.ip, "retry", retry)
			resp := Response{Seed: req.Seed, Error: fmt.Sprintf("rate limited, retry in %s", retry.Round(time.Second))}
			if err := client.WriteResponse(resp); err != nil {
				return
			}
			continue
		}

		resp, err := s.Preview(ctx, req)
		if err != nil {
			s.log.Warn("Preview failed", "client_ip", client.ip, "seed", req.Seed, "error", err)
			resp = Response{Seed: req.Seed, Error: err.Error()}
		}
		if err := client.WriteResponse(resp); err != nil {
			return
		}
	}
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.Close()
	}
}

// handleRuns lists recorded runs, newest first. ?limit=N caps the list.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		http.Error(w, "catalog disabled", http.StatusNotFound)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	var (
		runs []catalog.Run
		err  error
	)
	if seedText := r.URL.Query().Get("seed"); seedText != "" {
		runs, err = s.catalog.BySeed(seedText)
	} else {
		runs, err = s.catalog.List(limit)
	}
	if err != nil {
		s.log.Error("Failed to list runs", "error", err)
		http.Error(w, "catalog error", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []catalog.Run{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}
