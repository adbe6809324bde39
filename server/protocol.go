package server

import (
	"encoding/json"
	"fmt"

	"github.com/brensch/conpac/engine"
	"github.com/brensch/conpac/game"
	"github.com/brensch/conpac/store"
)

// Client to server message types.
const (
	MsgInput   = "input"
	MsgPress   = "press"
	MsgRelease = "release"
	MsgStart   = "start"
	MsgPause   = "pause"
	MsgReset   = "reset"
)

// Server to client message types.
const (
	MsgHello  = "hello"
	MsgFrame  = "frame"
	MsgNotice = "notice"
	MsgOver   = "over"
	MsgStats  = "stats"
	MsgError  = "error"
)

type ClientMessage struct {
	Type string `json:"type"`
	Dir  string `json:"dir,omitempty"`
}

type ServerMessage struct {
	Type    string         `json:"type"`
	Variant string         `json:"variant,omitempty"`
	Frame   *game.Snapshot `json:"frame,omitempty"`
	Text    string         `json:"text,omitempty"`
	Result  *engine.Result `json:"result,omitempty"`
	Stats   *store.Stats   `json:"stats,omitempty"`
}

func DecodeClient(b []byte) (ClientMessage, error) {
	if len(b) == 0 {
		return ClientMessage{}, fmt.Errorf("empty message")
	}
	var m ClientMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return ClientMessage{}, fmt.Errorf("decode message: %w", err)
	}
	if m.Type == "" {
		return ClientMessage{}, fmt.Errorf("message has no type")
	}
	return m, nil
}

// direction parses m.Dir for the message types that carry one.
func (m ClientMessage) direction() (game.Direction, error) {
	d, ok := game.ParseDirection(m.Dir)
	if !ok {
		return 0, fmt.Errorf("%s: bad direction %q", m.Type, m.Dir)
	}
	return d, nil
}
