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

// Package server serves compiled documents over HTTP and pushes fresh
// HTML to WebSocket subscribers when a document changes on disk.
//
//	GET /docs/page.markdown   compiled HTML of <root>/docs/page.markdown
//	GET /_push                WebSocket; each text frame names a document
//	                          to subscribe to and is answered with its HTML
package server // import "akhil.cc/mdc/server"

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"akhil.cc/mdc/ast"
	"akhil.cc/mdc/compiler"
	"akhil.cc/mdc/internal/logging"
	"akhil.cc/mdc/internal/source"
	"akhil.cc/mdc/push"
)

// PushPath is the WebSocket endpoint.
const PushPath = "/_push"

type Server struct {
	root     string
	compiler *compiler.Compiler
	logger   *slog.Logger
	hub      *push.Hub
	mux      *http.ServeMux

	mu      sync.Mutex
	modTime map[string]time.Time
}

// New returns a server for the documents below root.
func New(root string, c *compiler.Compiler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		root:     root,
		compiler: c,
		logger:   logger,
		hub:      push.NewHub(),
		mux:      http.NewServeMux(),
		modTime:  make(map[string]time.Time),
	}
	s.mux.Handle(PushPath, &push.Handler{Listener: s, Hub: s.hub, Logger: logger})
	s.mux.HandleFunc("/", s.serveDocument)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// clean maps a request path to a document name below the root.
func clean(p string) string {
	return path.Clean("/" + strings.TrimSpace(p))
}

// compile reads and compiles the named document.
func (s *Server) compile(name string) (string, error) {
	if !s.compiler.Handles(name) {
		return "", fs.ErrNotExist
	}
	file := filepath.Join(s.root, filepath.FromSlash(name))
	if fi, err := os.Stat(file); err == nil {
		s.mu.Lock()
		s.modTime[name] = fi.ModTime()
		s.mu.Unlock()
	}
	text, err := source.ReadFile(file)
	if err != nil {
		return "", err
	}
	return s.compiler.Compile(s.compiler.Source(name, text))
}

func (s *Server) serveDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	name := clean(r.URL.Path)
	out, err := s.compile(name)
	if err != nil {
		status := statusOf(err)
		s.logger.Warn("server.compile", "path", name, "status", status, "error", err)
		http.Error(w, err.Error(), status)
		return
	}
	s.logger.Debug("server.compile", "path", name, "bytes", len(out))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.Method == http.MethodHead {
		return
	}
	w.Write([]byte(out))
}

// statusOf maps compile failures to HTTP status codes.
func statusOf(err error) int {
	var e *ast.Error
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.As(err, &e):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// OnFrame subscribes the session to the document named by a text frame
// and answers with its HTML, or with "error: " and the failure.
func (s *Server) OnFrame(sess *push.Session, r *http.Request, frameType string, text func() string) {
	if frameType != push.TextFrame {
		return
	}
	name := clean(text())
	out, err := s.compile(name)
	if err != nil {
		sess.Send("error: " + err.Error())
		return
	}
	s.hub.Subscribe(sess, name)
	if err := sess.Send(out); err != nil {
		s.logger.Warn("server.push", "path", name, "error", err)
	}
}

// Publish recompiles the named document and pushes it to its subscribers.
// A failed compile pushes "error: " and the failure instead. It returns the
// number of sessions reached.
func (s *Server) Publish(name string) (int, error) {
	name = clean(name)
	out, err := s.compile(name)
	if err != nil {
		s.hub.Broadcast(name, "error: "+err.Error())
		return 0, err
	}
	n := s.hub.Broadcast(name, out)
	s.logger.Info("server.publish", "path", name, "sessions", n)
	return n, nil
}

// Watch polls the documents that have subscribers every interval and
// publishes those whose modification time changed. It returns when ctx is done.
func (s *Server) Watch(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			for _, name := range s.changed() {
				if _, err := s.Publish(name); err != nil {
					s.logger.Warn("server.publish", "path", name, "error", err)
				}
			}
		}
	}
}

func (s *Server) changed() []string {
	var names []string
	for _, name := range s.hub.Keys() {
		fi, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(name)))
		if err != nil {
			continue
		}
		s.mu.Lock()
		if !fi.ModTime().Equal(s.modTime[name]) {
			names = append(names, name)
		}
		s.mu.Unlock()
	}
	return names
}
