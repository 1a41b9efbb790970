// Package web serves solar reports over HTTP and streams poll reports to
// websocket clients.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"cloudeng.io/logging/ctxlog"
	"github.com/devskill-org/sunclock/config"
	"github.com/devskill-org/sunclock/report"
	"github.com/devskill-org/sunclock/solar"
	"github.com/gorilla/websocket"
)

// Source provides the latest snapshot and report, typically a watch.Poller.
type Source interface {
	Current() *solar.Calculations
	Last() *report.PollReport
	Polls() int64
}

// Server provides HTTP endpoints for health checking, reports and a live
// websocket stream of poll reports.
type Server struct {
	source    Source
	zone      *time.Location
	mux       *http.ServeMux
	server    *http.Server
	startTime time.Time
	upgrader  websocket.Upgrader
	clients   sync.Map // *websocket.Conn -> *sync.Mutex guarding writes
	broadcast chan []byte
	done      chan struct{}
	stopOnce  sync.Once
	logger    *slog.Logger
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime"`
	Polls     int64  `json:"polls"`
	Clients   int    `json:"clients"`
	Location  string `json:"location"`
}

type message struct {
	Type   string             `json:"type"`
	Report *report.PollReport `json:"report"`
}

// NewServer creates a server listening on port. Reports requested by date
// are computed in zone.
func NewServer(ctx context.Context, source Source, zone *time.Location, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		source:    source,
		zone:      zone,
		mux:       mux,
		startTime: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		broadcast: make(chan []byte, 256),
		done:      make(chan struct{}),
		logger:    ctxlog.Logger(ctx).With("component", "web"),
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	mux.HandleFunc("/api/health", s.healthHandler)
	mux.HandleFunc("/api/now", s.nowHandler)
	mux.HandleFunc("/api/report", s.reportHandler)
	mux.HandleFunc("/api/ws", s.wsHandler)
	return s
}

// Handle registers an additional handler, such as a metrics endpoint.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.mux.Handle(pattern, h)
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run serves until ctx is done and then shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	go s.handleBroadcasts()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.server.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Stop gracefully stops the web server
func (s *Server) Stop(ctx context.Context) error {
	s.close()
	return s.server.Shutdown(ctx)
}

func (s *Server) close() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.clients.Range(func(key, value any) bool {
			if conn, ok := key.(*websocket.Conn); ok {
				conn.Close()
			}
			return true
		})
	})
}

// Publish implements watch.Sink by queueing r for every websocket client.
// Reports are dropped when the queue is full.
func (s *Server) Publish(_ context.Context, r *report.PollReport) error {
	if s.clientCount() == 0 {
		return nil
	}
	buf, err := json.Marshal(message{Type: "poll", Report: r})
	if err != nil {
		return fmt.Errorf("failed to marshal poll report: %w", err)
	}
	select {
	case s.broadcast <- buf:
	default:
		s.logger.Warn("broadcast queue is full, dropping report")
	}
	return nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    formatUptime(time.Since(s.startTime)),
		Polls:     s.source.Polls(),
		Clients:   s.clientCount(),
		Location:  s.source.Current().Coordinates().String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if health.Polls == 0 {
		health.Status = "starting"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}

func (s *Server) nowHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.latest(), s.logger)
}

// reportHandler serves the full report for ?date=yyyy-mm-dd, today by
// default, at the coordinates of the current snapshot.
func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	day := time.Now().In(s.zone)
	if q := r.URL.Query().Get("date"); q != "" {
		d, err := config.ParseDate(q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		day = d
	}
	instant := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, s.zone)
	calcs := s.source.Current().Refresh(instant)
	writeJSON(w, report.New(calcs), s.logger)
}

func (s *Server) latest() *report.PollReport {
	if last := s.source.Last(); last != nil {
		return last
	}
	return report.NewPoll(s.source.Current())
}

func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	mu := &sync.Mutex{}
	s.clients.Store(conn, mu)
	s.logger.Debug("websocket client connected", "clients", s.clientCount())

	mu.Lock()
	err = conn.WriteJSON(message{Type: "poll", Report: s.latest()})
	mu.Unlock()
	if err != nil {
		s.logger.Warn("failed to send initial report", "error", err)
	}

	defer func() {
		s.clients.Delete(conn)
		conn.Close()
		s.logger.Debug("websocket client disconnected", "clients", s.clientCount())
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn("websocket error", "error", err)
			}
			return
		}
	}
}

// handleBroadcasts sends queued messages to all connected clients
func (s *Server) handleBroadcasts() {
	for {
		select {
		case msg := <-s.broadcast:
			s.clients.Range(func(key, value any) bool {
				conn := key.(*websocket.Conn)
				mu := value.(*sync.Mutex)
				mu.Lock()
				err := conn.WriteMessage(websocket.TextMessage, msg)
				mu.Unlock()
				if err != nil {
					s.logger.Warn("websocket write failed", "error", err)
					conn.Close()
					s.clients.Delete(conn)
				}
				return true
			})
		case <-s.done:
			return
		}
	}
}

func (s *Server) clientCount() int {
	n := 0
	s.clients.Range(func(key, value any) bool {
		n++
		return true
	})
	return n
}

func writeJSON(w http.ResponseWriter, v any, logger *slog.Logger) {
	buf, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(buf); err != nil {
		logger.Warn("failed to write response", "error", err)
	}
}

// formatUptime formats a duration as a string with seconds rounded to integer
func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
