package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/cylheat/internal/storage"
	log "github.com/sirupsen/logrus"
)

// Msg is the envelope for every websocket message in both directions.
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

const (
	TypeEnv     = "env"
	TypeStart   = "start"
	TypeStop    = "stop"
	TypeEnvSet  = "envSet"
	TypeResult  = "result"
	TypeStopped = "stopped"
	TypeError   = "error"
)

type Server struct {
	addr     string
	upgrader websocket.Upgrader
	store    *storage.Store
}

// NewServer serves solver sessions on addr. When store is non-nil every
// finished run is also saved there.
func NewServer(addr string, upgrader websocket.Upgrader, store *storage.Store) *Server {
	return &Server{
		addr:     addr,
		upgrader: upgrader,
		store:    store,
	}
}

// DefaultUpgrader accepts any origin.
func DefaultUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
}

// serveWs handles websocket requests from the peer. Each connection gets
// its own hub and config.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	hub := NewHub(conn, s.store)
	go hub.handleResponse(ctx)
	go hub.handleRequest(ctx)

	log.WithField("remote", r.RemoteAddr).Info("client connected")
	for {
		var msg Msg
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("read failed")
			}
			break
		}
		select {
		case hub.msg <- msg:
		case <-ctx.Done():
			return
		}
	}
	log.WithField("remote", r.RemoteAddr).Info("client disconnected")
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	return mux
}

// Serve listens until ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", s.addr).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
