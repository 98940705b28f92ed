// Package api serves annotation sets over HTTP and drives live editing
// sessions over WebSocket.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/example/swingmark/internal/persist"
	"github.com/example/swingmark/internal/render"
)

// FrameSource returns the still frame for a video at a time, or nil when
// there is none.
type FrameSource func(video string, t float64) (image.Image, error)

// Server is the swingmark HTTP API server.
type Server struct {
	addr   string
	repo   persist.Repository
	saver  *persist.Saver
	colors render.ColorResolver
	frames FrameSource
	width  int
	height int
	fps    float64
	mux    *http.ServeMux
	server *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithColors sets the palette used for rendered frames.
func WithColors(c render.ColorResolver) Option { return func(s *Server) { s.colors = c } }

// WithFrames sets where background frames come from.
func WithFrames(f FrameSource) Option { return func(s *Server) { s.frames = f } }

// WithFrameSize sets the logical size of rendered frames.
func WithFrameSize(w, h int) Option { return func(s *Server) { s.width, s.height = w, h } }

// WithFPS sets the frame rate live sessions step by.
func WithFPS(fps float64) Option { return func(s *Server) { s.fps = fps } }

// New creates a server storing into repo.
func New(addr string, repo persist.Repository, opts ...Option) *Server {
	s := &Server{addr: addr, repo: repo, width: 1920, height: 1080}
	for _, o := range opts {
		o(s)
	}
	s.saver = persist.NewSaver(context.Background(), repo)
	s.mux = http.NewServeMux()
	s.registerRoutes()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/videos/{video}/annotations", s.handleList)
	s.mux.HandleFunc("POST /api/videos/{video}/annotations", s.handleCreate)
	s.mux.HandleFunc("GET /api/videos/{video}/frame.png", s.handleFrame)
	s.mux.HandleFunc("GET /api/annotations/{id}", s.handleGet)
	s.mux.HandleFunc("PATCH /api/annotations/{id}", s.handleUpdate)
	s.mux.HandleFunc("DELETE /api/annotations/{id}", s.handleDelete)
	s.mux.HandleFunc("GET /api/ws", s.handleWebSocket)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	log.Printf("swingmark API server listening on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown stops the listener and drains pending saves.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	s.saver.Close()
	return err
}

// Close drains pending saves without touching the listener.
func (s *Server) Close() { s.saver.Close() }

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// writeRaw writes already encoded JSON.
func writeRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		log.Printf("write: %v", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// maxBody caps request bodies; a freehand record is the largest payload.
const maxBody = 4 << 20

// readBody reads one JSON value from the request body.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, fmt.Errorf("empty request body")
	}
	defer r.Body.Close()
	var buf json.RawMessage
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// background fetches the still frame for video, logging and ignoring
// failures so annotations still render on a blank frame.
func (s *Server) background(video string, t float64) image.Image {
	if s.frames == nil {
		return nil
	}
	img, err := s.frames(video, t)
	if err != nil {
		log.Printf("frame %s@%.3f: %v", video, t, err)
		return nil
	}
	return img
}
