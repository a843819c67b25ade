package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/san-kum/cylheat/internal/config"
	"github.com/san-kum/cylheat/internal/heat"
	"github.com/san-kum/cylheat/internal/storage"
	log "github.com/sirupsen/logrus"
)

// Hub owns one connection: requests come in on msg, and handleResponse is
// the only writer to conn.
type Hub struct {
	conn  *websocket.Conn
	store *storage.Store

	mu     sync.Mutex
	cfg    *config.Config
	cancel context.CancelFunc

	// request
	msg chan Msg
	// response
	reply chan Msg
}

func NewHub(conn *websocket.Conn, store *storage.Store) *Hub {
	return &Hub{
		conn:  conn,
		store: store,
		cfg:   config.DefaultConfig(),
		msg:   make(chan Msg, 10),
		reply: make(chan Msg, 10),
	}
}

func (h *Hub) handleResponse(ctx context.Context) {
	for {
		select {
		case reply := <-h.reply:
			if err := h.conn.WriteJSON(&reply); err != nil {
				log.WithError(err).Warn("write failed")
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) handleRequest(ctx context.Context) {
	for {
		select {
		case msg := <-h.msg:
			h.dispatch(ctx, msg)
		case <-ctx.Done():
			h.stop()
			return
		}
	}
}

func (h *Hub) dispatch(ctx context.Context, msg Msg) {
	switch msg.Type {
	case TypeEnv:
		cfg, err := config.Parse([]byte(msg.Content))
		if err == nil {
			err = cfg.Params().Validate()
		}
		if err != nil {
			h.send(ctx, Msg{Type: TypeError, Content: err.Error()})
			return
		}
		h.mu.Lock()
		h.cfg = cfg
		h.mu.Unlock()
		h.send(ctx, Msg{Type: TypeEnvSet, Content: "env is set"})
	case TypeStart:
		h.start(ctx)
	case TypeStop:
		h.stop()
		h.send(ctx, Msg{Type: TypeStopped, Content: "stopped"})
	default:
		log.WithField("type", msg.Type).Warn("no such type")
		h.send(ctx, Msg{Type: TypeError, Content: "no such type: " + msg.Type})
	}
}

// start solves the current config in the background. A run already in
// flight is canceled first.
func (h *Hub) start(ctx context.Context) {
	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	cfg := h.cfg.Clone()
	h.mu.Unlock()

	go func() {
		defer cancel()
		res, err := heat.Solve(runCtx, cfg.Params())
		if runCtx.Err() != nil {
			return
		}
		if err != nil {
			h.send(ctx, Msg{Type: TypeError, Content: err.Error()})
			return
		}
		content, err := h.encode(cfg, res)
		if err != nil {
			h.send(ctx, Msg{Type: TypeError, Content: err.Error()})
			return
		}
		h.send(ctx, Msg{Type: TypeResult, Content: content})
	}()
}

func (h *Hub) stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

func (h *Hub) encode(cfg *config.Config, res *heat.Result) (string, error) {
	var meta *storage.RunMetadata
	if h.store != nil {
		id, err := h.store.Save("ws", cfg, res)
		if err != nil {
			return "", err
		}
		if meta, err = h.store.Load(id); err != nil {
			return "", err
		}
	}
	data := storage.NewExportData(meta, res.Mesh, res.Final, res.History)
	data.Converged = res.Converged
	data.Step = res.ConvergedStep

	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *Hub) send(ctx context.Context, m Msg) {
	select {
	case h.reply <- m:
	case <-ctx.Done():
	}
}
