package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/conpac/engine"
	"github.com/brensch/conpac/game"
)

// conn is the write side of one client. The engine publishes into out from
// the driver goroutine; writeLoop is the only writer on the socket.
type conn struct {
	ws  *websocket.Conn
	log *slog.Logger

	out  chan []byte
	done chan struct{} // closed when writeLoop exits
}

func newConn(ws *websocket.Conn, log *slog.Logger) *conn {
	return &conn{
		ws:   ws,
		log:  log,
		out:  make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

func (c *conn) send(msg ServerMessage) {
	b, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("encode message", "type", msg.Type, "error", err)
		return
	}
	select {
	case c.out <- b:
	case <-c.done:
	}
}

func (c *conn) Frame(snap game.Snapshot) {
	c.send(ServerMessage{Type: MsgFrame, Frame: &snap})
}

func (c *conn) Notice(text string) {
	c.send(ServerMessage{Type: MsgNotice, Text: text})
}

func (c *conn) GameOver(res engine.Result) {
	c.send(ServerMessage{Type: MsgOver, Result: &res})
}

// writeLoop drains out until ctx ends or a write fails. On the way out it
// closes the socket, which also unblocks the reader.
func (c *conn) writeLoop(ctx context.Context, cancel context.CancelFunc) {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		cancel()
		close(c.done)
		_ = c.ws.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case b := <-c.out:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, b); err != nil {
				c.log.Debug("write failed", "error", err)
				return
			}
		case <-ping.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
