// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/emadadel4/Eterminal/internal/commands"
	"github.com/emadadel4/Eterminal/internal/terminal"
)

// MsgSlowDown is shown when a connection sends keys faster than allowed.
const MsgSlowDown = "Slow down: too many keystrokes"

// ============================================================================
// WIRE TYPES
// ============================================================================

// ClientMessage is a frame sent by the page.
type ClientMessage struct {
	Type  string `json:"type"`
	Key   string `json:"key"`
	Value string `json:"value"`
	Seq   uint64 `json:"seq"`
}

// HelloMessage is sent once after the upgrade.
type HelloMessage struct {
	Type    string `json:"type"`
	Session string `json:"session"`
	Prompt  string `json:"prompt"`
}

// UpdateMessage answers every key event. Seq echoes the key event's Seq so
// the page only replaces its input field with the reply to its latest key.
type UpdateMessage struct {
	Type  string `json:"type"`
	Ops   []Op   `json:"ops"`
	Input string `json:"input"`
	Seq   uint64 `json:"seq"`
}

// Op is one display operation for the page to apply in order.
type Op struct {
	Op   string `json:"op"`
	HTML string `json:"html,omitempty"`
	URL  string `json:"url,omitempty"`
}

// OpsFromEvents converts session events to page operations.
func OpsFromEvents(events []terminal.Event) []Op {
	ops := make([]Op, 0, len(events))
	for _, ev := range events {
		switch ev.Kind {
		case terminal.EventAppend:
			ops = append(ops, Op{Op: "append", HTML: ev.Line.HTML()})
		case terminal.EventClear:
			ops = append(ops, Op{Op: "clear"})
		case terminal.EventOpen:
			ops = append(ops, Op{Op: "open", URL: ev.URL})
		}
	}
	return ops
}

// ============================================================================
// CONNECTION
// ============================================================================

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.log.Debug("WS_UPGRADE_FAILED", zap.Error(err))
		return
	}

	s.sessions.Add(1)
	defer s.sessions.Add(-1)
	defer conn.Close()

	rec := &terminal.Recorder{}
	sess := terminal.New(terminal.Options{
		Registry:  s.opts.NewRegistry(),
		Records:   s.opts.Records,
		SearchURL: s.opts.SearchURL,
		MaxLines:  s.opts.MaxLines,
		Listener:  rec.Listen,
		Logger:    s.log,
	})
	log := s.log.With(zap.String("session", sess.ID()), zap.String("ip", ClientIP(r)))
	log.Info("SESSION_OPEN")
	defer log.Info("SESSION_CLOSE")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	s.track(ctx, conn)

	conn.SetReadLimit(MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go keepAlive(ctx, conn)

	if err := writeFrame(conn, HelloMessage{Type: "hello", Session: sess.ID(), Prompt: s.opts.Prompt}); err != nil {
		log.Debug("WS_WRITE_FAILED", zap.Error(err))
		return
	}

	limit := rate.Inf
	if s.opts.KeysPerSecond > 0 {
		limit = rate.Limit(s.opts.KeysPerSecond)
	}
	keys := rate.NewLimiter(limit, s.opts.KeyBurst)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("WS_READ_FAILED", zap.Error(err))
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "key" {
			log.Debug("WS_BAD_FRAME", zap.Int("bytes", len(data)))
			continue
		}

		if keys.Allow() {
			sess.HandleKey(terminal.ParseKey(msg.Key), msg.Value)
		} else {
			log.Warn("RATE_LIMIT_EXCEEDED", zap.String("key", msg.Key))
			sess.SetInput(msg.Value)
			sess.Print(MsgSlowDown, commands.SeverityWarning)
		}

		update := UpdateMessage{Type: "update", Ops: OpsFromEvents(rec.Drain()), Input: sess.Input(), Seq: msg.Seq}
		if err := writeFrame(conn, update); err != nil {
			log.Debug("WS_WRITE_FAILED", zap.Error(err))
			return
		}
	}
}

// track closes conn when the server shuts down or the handler returns.
func (s *Server) track(ctx context.Context, conn *websocket.Conn) {
	go func() {
		select {
		case <-ctx.Done():
		case <-s.closing:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			conn.Close()
		}
	}()
}

func keepAlive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, v any) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}
