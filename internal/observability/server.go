// Package observability exposes the read-only HTTP surface described in
// SPEC_FULL §6: health, Prometheus metrics, and a debug WebSocket stream
// of dispatch pool snapshots. Modeled on
// go-server-3/internal/transport/server.go's Start/Stop lifecycle and
// go-server/pkg/websocket/client.go's gorilla/websocket usage.
package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"odin-tdcore/internal/dispatch"
	"odin-tdcore/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Snapshot is the JSON payload pushed to /debug/stream subscribers and
// returned by /health.
type Snapshot struct {
	Status        string `json:"status"`
	PoolWorkers   int    `json:"pool_workers"`
	ClientsActive int32  `json:"clients_active"`
	HighWatermark int32  `json:"high_watermark"`
	Timestamp     string `json:"timestamp"`
}

// StatsSource is the read-only view Server needs of the Dispatcher; kept
// as an interface so tests can supply a fake without standing up a real
// Pool.
type StatsSource interface {
	Stats() dispatch.PoolStats
}

// Server hosts the three read-side HTTP endpoints on a single listener.
type Server struct {
	addr    string
	source  StatsSource
	metrics *metrics.Registry
	logger  *zap.Logger
	httpSrv *http.Server
}

func NewServer(addr string, source StatsSource, metricsRegistry *metrics.Registry, logger *zap.Logger) *Server {
	return &Server{addr: addr, source: source, metrics: metricsRegistry, logger: logger}
}

// Start begins serving and returns immediately; it stops when ctx is
// cancelled, following transport.Server's context-driven shutdown.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", s.metrics.Handler())
	mux.HandleFunc("/debug/stream", s.handleDebugStream)

	s.httpSrv = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("observability server starting", zap.String("addr", s.addr))
		errCh <- s.httpSrv.ListenAndServe()
	}()

	go func() {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
				s.logger.Warn("observability server shutdown error", zap.Error(err))
			}
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				s.logger.Error("observability server error", zap.Error(err))
			}
		}
	}()

	return nil
}

func (s *Server) snapshot() Snapshot {
	stats := s.source.Stats()
	s.metrics.ObservePool(stats.WorkerCount, stats.SessionsTotal, stats.HighWatermark)
	return Snapshot{
		Status:        "healthy",
		PoolWorkers:   stats.WorkerCount,
		ClientsActive: stats.SessionsTotal,
		HighWatermark: stats.HighWatermark,
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.snapshot())
}

// handleDebugStream upgrades to a WebSocket and pushes a Snapshot every
// second until the client disconnects. It is pure read-side tooling: it
// never reads incoming frames, so it cannot submit requests or affect
// dispatch, per spec §6.
func (s *Server) handleDebugStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("debug stream upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.WriteJSON(s.snapshot()); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
