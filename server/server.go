// server/server.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iWeeti/bancho-autohost/lobby"
	"github.com/iWeeti/bancho-autohost/logger"
)

// Server exposes the HTTP surface: health, Prometheus metrics, a JSON
// lobby status listing and a websocket status stream.
type Server struct {
	addr     string
	registry *lobby.Registry
	hub      *Hub
	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

func NewServer(addr string, registry *lobby.Registry) *Server {
	s := &Server{
		addr:     addr,
		registry: registry,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.hub = NewHub(func() any { return registry.Statuses() })
	return s
}

func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/lobbies", s.handleLobbies)
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.httpSrv = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.hub.Run()

	logger.Log.Infof("http server listening on %s", s.addr)
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleLobbies(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.registry.Statuses()); err != nil {
		logger.Log.Errorf("encode lobby statuses: %v", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("failed to upgrade connection: %v", err)
		return
	}
	s.hub.Add(conn)
}
