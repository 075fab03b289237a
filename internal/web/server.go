package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/vitos/futures_day_bot/internal/usecase"
	"go.uber.org/zap"
)

// Server exposes the websocket event stream and a minimal status
// endpoint. The real API layer lives outside this service; this is
// just the transport subscriber for the event sink.
type Server struct {
	router *http.ServeMux
	server *http.Server
	hub    *Hub
	bots   *usecase.BotService
	logger *zap.Logger

	upgrader websocket.Upgrader
}

func NewServer(port int, hub *Hub, bots *usecase.BotService, logger *zap.Logger) *Server {
	s := &Server{
		router: http.NewServeMux(),
		hub:    hub,
		bots:   bots,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.routes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /ws", s.handleWS)
	s.router.HandleFunc("GET /status/{user}", s.handleStatus)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	c := s.hub.add(conn)
	go s.hub.writeLoop(c)

	// Drain reads so close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.hub.remove(c)
				return
			}
		}
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.bots.Status(r.PathValue("user"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.logger.Error("failed to encode status", zap.Error(err))
	}
}

func (s *Server) Start() error {
	s.logger.Info("web server listening", zap.String("addr", s.server.Addr))
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
