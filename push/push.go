// MIT License

// Copyright (c) 2018 Akhil Indurti

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package push delivers compiled documents to browsers over WebSockets.
//
// A Handler upgrades HTTP requests and reports every incoming frame to a
// Listener. Listeners may also implement ErrorListener and CloseListener;
// hooks a listener does not implement are no-ops. A Hub remembers which
// sessions asked for which document so fresh HTML can be pushed to them.
package push // import "akhil.cc/mdc/push"

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"akhil.cc/mdc/internal/logging"
	"github.com/gorilla/websocket"
)

// Frame types passed to Listener.OnFrame.
const (
	TextFrame   = "text"
	BinaryFrame = "binary"
)

const writeWait = 10 * time.Second

// Listener receives the frames of a session. text decodes the payload
// on first call; listeners that ignore the payload never pay for it.
type Listener interface {
	OnFrame(s *Session, r *http.Request, frameType string, text func() string)
}

// ListenerFunc adapts an ordinary function to a Listener.
type ListenerFunc func(s *Session, r *http.Request, frameType string, text func() string)

func (f ListenerFunc) OnFrame(s *Session, r *http.Request, frameType string, text func() string) {
	f(s, r, frameType, text)
}

// ErrorListener is implemented by listeners that want read errors.
type ErrorListener interface {
	OnError(s *Session, r *http.Request, err error)
}

// CloseListener is implemented by listeners that want close notifications.
type CloseListener interface {
	OnClose(s *Session, r *http.Request, code int, reason string)
}

// Session is one WebSocket connection. Send may be called from any goroutine.
type Session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Send writes text as a single text frame.
func (s *Session) Send(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// Close sends a normal closure frame and closes the connection.
func (s *Session) Close() error {
	s.mu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	s.mu.Unlock()
	return s.conn.Close()
}

// Handler serves WebSocket sessions.
type Handler struct {
	Listener Listener
	Upgrader websocket.Upgrader
	// Hub, if set, forgets sessions once they end.
	Hub    *Hub
	Logger *slog.Logger
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger == nil {
		return logging.Discard()
	}
	return h.Logger
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger().Warn("push.upgrade", "remote", r.RemoteAddr, "error", err)
		return
	}
	s := &Session{conn: conn}
	h.logger().Debug("push.open", "remote", r.RemoteAddr)
	defer func() {
		if h.Hub != nil {
			h.Hub.Remove(s)
		}
		conn.Close()
	}()
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			h.ended(s, r, err)
			return
		}
		frameType := TextFrame
		if mt == websocket.BinaryMessage {
			frameType = BinaryFrame
		}
		text := sync.OnceValue(func() string { return string(data) })
		h.Listener.OnFrame(s, r, frameType, text)
	}
}

func (h *Handler) ended(s *Session, r *http.Request, err error) {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		h.logger().Debug("push.close", "remote", r.RemoteAddr, "code", ce.Code)
		if l, ok := h.Listener.(CloseListener); ok {
			l.OnClose(s, r, ce.Code, ce.Text)
		}
		return
	}
	h.logger().Warn("push.read", "remote", r.RemoteAddr, "error", err)
	if l, ok := h.Listener.(ErrorListener); ok {
		l.OnError(s, r, err)
	}
}

// Hub maps document keys to the sessions subscribed to them.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Session]bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Session]bool)}
}

// Subscribe adds s to the subscribers of key.
func (h *Hub) Subscribe(s *Session, key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := h.subs[key]
	if m == nil {
		m = make(map[*Session]bool)
		h.subs[key] = m
	}
	m[s] = true
}

// Remove drops s from every subscription.
func (h *Hub) Remove(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, m := range h.subs {
		delete(m, s)
		if len(m) == 0 {
			delete(h.subs, key)
		}
	}
}

// Keys returns the keys that have at least one subscriber.
func (h *Hub) Keys() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	keys := make([]string, 0, len(h.subs))
	for k := range h.subs {
		keys = append(keys, k)
	}
	return keys
}

// Broadcast sends text to every subscriber of key and returns the number
// of sessions reached. Sessions that fail to receive are dropped.
func (h *Hub) Broadcast(key, text string) int {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.subs[key]))
	for s := range h.subs[key] {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	n := 0
	for _, s := range sessions {
		if err := s.Send(text); err != nil {
			h.Remove(s)
			continue
		}
		n++
	}
	return n
}
