// Package server plays games over WebSocket. Every connection gets its own
// session and engine; the connection only carries input in and frames out.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/conpac/engine"
	"github.com/brensch/conpac/game"
	"github.com/brensch/conpac/store"
	"github.com/brensch/conpac/submit"
)

const (
	readLimit    = 4 << 10
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
	writeWait    = 10 * time.Second
	sendBuffer   = 64
)

type Options struct {
	Config game.Config
	Logger *slog.Logger

	// Optional collaborators. Stats and Submitter are shared by every
	// connection; each connection gets its own archiver in ArchiveDir.
	Stats      *store.StatsStore
	Submitter  *submit.Submitter
	ArchiveDir string

	// Seed fixes the random source of every game when non-zero.
	Seed int64

	// CheckOrigin defaults to allowing every origin.
	CheckOrigin func(r *http.Request) bool
}

type Server struct {
	opts     Options
	log      *slog.Logger
	upgrader websocket.Upgrader

	wg sync.WaitGroup
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	check := opts.CheckOrigin
	if check == nil {
		check = func(r *http.Request) bool { return true }
	}
	return &Server{
		opts:     opts,
		log:      opts.Logger,
		upgrader: websocket.Upgrader{CheckOrigin: check},
	}
}

// Handler serves /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "variant": s.opts.Config.Name})
	})
	return mux
}

// Wait blocks until every connection handler has returned.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	s.wg.Add(1)
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	log := s.log.With("remote", r.RemoteAddr)
	c := newConn(ws, log)
	go c.writeLoop(ctx, cancel)

	observers := engine.Observers{c}
	var archiver *store.Archiver
	if s.opts.ArchiveDir != "" {
		archiver = store.NewArchiver(s.opts.ArchiveDir, log)
		observers = append(observers, archiver)
	}
	if s.opts.Stats != nil {
		observers = append(observers, s.opts.Stats, statsPusher{stats: s.opts.Stats, conn: c})
	}
	if s.opts.Submitter != nil {
		observers = append(observers, s.opts.Submitter)
	}

	var rng game.Rand
	if s.opts.Seed != 0 {
		rng = game.NewRand(s.opts.Seed)
	}
	d := engine.NewDriver(engine.Options{
		Config:   s.opts.Config,
		Rand:     rng,
		Observer: observers,
		Logger:   log,
	})

	runDone := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(runDone)
	}()

	log.Info("client connected", "variant", s.opts.Config.Name)
	c.send(ServerMessage{Type: MsgHello, Variant: s.opts.Config.Name})
	d.Do(func(e *engine.Engine) {
		snap := e.Snapshot()
		c.send(ServerMessage{Type: MsgFrame, Frame: &snap})
	})

	s.readLoop(ctx, ws, d, c, log)

	cancel()
	<-runDone
	<-c.done
	if archiver != nil {
		archiver.Close()
	}
	log.Info("client disconnected")
}

func (s *Server) readLoop(ctx context.Context, ws *websocket.Conn, d *engine.Driver, c *conn, log *slog.Logger) {
	ws.SetReadLimit(readLimit)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for ctx.Err() == nil {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("read failed", "error", err)
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))

		msg, err := DecodeClient(data)
		if err != nil {
			c.send(ServerMessage{Type: MsgError, Text: err.Error()})
			continue
		}
		if err := dispatch(d, msg); err != nil {
			c.send(ServerMessage{Type: MsgError, Text: err.Error()})
		}
	}
}

func dispatch(d *engine.Driver, msg ClientMessage) error {
	switch msg.Type {
	case MsgInput, MsgPress:
		dir, err := msg.direction()
		if err != nil {
			return err
		}
		if msg.Type == MsgInput {
			d.Input(dir)
		} else {
			d.Press(dir)
		}
	case MsgRelease:
		d.Release()
	case MsgStart:
		d.StartGame()
	case MsgPause:
		d.PauseGame()
	case MsgReset:
		d.ResetGame()
	default:
		return &unknownTypeError{typ: msg.Type}
	}
	return nil
}

type unknownTypeError struct{ typ string }

func (e *unknownTypeError) Error() string { return "unknown message type " + e.typ }

// statsPusher sends the refreshed stats after the stats store has recorded
// the game. It must follow the store in the observer list.
type statsPusher struct {
	stats *store.StatsStore
	conn  *conn
}

func (p statsPusher) Frame(game.Snapshot) {}
func (p statsPusher) Notice(string)       {}

func (p statsPusher) GameOver(engine.Result) {
	st, err := p.stats.Stats()
	if err != nil {
		p.conn.log.Warn("failed to read stats", "error", err)
		return
	}
	p.conn.send(ServerMessage{Type: MsgStats, Stats: &st})
}
