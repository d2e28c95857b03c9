// Package server exposes decompilation over HTTP: a synchronous
// POST /decompile endpoint and a GET /ws/decompile websocket endpoint that
// sends one message per lifted method, grounded on teacher's
// internal/network http_server.go (mux + http.Server wiring) and
// websocket_server.go (gorilla/websocket upgrade + per-connection write
// loop).
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"jclift/internal/classfile"
	"jclift/internal/concurrency"
	"jclift/internal/emitter"
)

// Server holds the shared mux and listener; New wires the two endpoints
// the way teacher's NetworkModule wires a Mux before constructing the
// http.Server around it.
type Server struct {
	mux      *http.ServeMux
	upgrader websocket.Upgrader
	http     *http.Server
}

// New builds a Server listening on addr. Origin checking is left to the
// caller's reverse proxy; this is a local decompilation tool, not a
// public-facing service.
func New(addr string) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
	s.mux.HandleFunc("/decompile", s.handleDecompile)
	s.mux.HandleFunc("/ws/decompile", s.handleDecompileStream)
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving HTTP until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- s.http.ListenAndServe() }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errc:
		return err
	}
}

// methodResponse is one method's rendering, or its failure reason.
type methodResponse struct {
	Name       string `json:"name"`
	Descriptor string `json:"descriptor"`
	Source     string `json:"source,omitempty"`
	Error      string `json:"error,omitempty"`
}

func renderOutcomes(class *classfile.Class, outcomes []concurrency.MethodOutcome) []methodResponse {
	out := make([]methodResponse, len(outcomes))
	for i, o := range outcomes {
		resp := methodResponse{Name: o.Method.Name, Descriptor: o.Method.Descriptor.String()}
		if o.Result.Err != nil {
			resp.Error = o.Result.Err.Error()
			out[i] = resp
			continue
		}
		e := emitter.New(nil)
		one := &classfile.Class{This: class.This, Pool: class.Pool, Methods: []classfile.Member{o.Method}}
		resp.Source = e.EmitClass(one, class.Pool)
		out[i] = resp
	}
	return out
}

// handleDecompile parses a posted class file and returns every method's
// rendering in one JSON response.
func (s *Server) handleDecompile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	class, err := classfile.Parse(data)
	if err != nil {
		http.Error(w, "parse class: "+err.Error(), http.StatusBadRequest)
		return
	}
	outcomes, err := concurrency.LiftClass(r.Context(), class, concurrency.Options{})
	if err != nil {
		http.Error(w, "lift class: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(renderOutcomes(class, outcomes))
}

// handleDecompileStream upgrades to a websocket, reads one class file
// message, waits until every method of the class has been lifted, and then
// writes one JSON message per method in declaration order. Messages are not
// sent as individual method lifts complete.
func (s *Server) handleDecompileStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	_, data, err := conn.ReadMessage()
	if err != nil {
		return
	}
	class, err := classfile.Parse(data)
	if err != nil {
		conn.WriteJSON(methodResponse{Error: "parse class: " + err.Error()})
		return
	}

	outcomes, err := concurrency.LiftClass(r.Context(), class, concurrency.Options{})
	if err != nil {
		conn.WriteJSON(methodResponse{Error: "lift class: " + err.Error()})
		return
	}
	for _, resp := range renderOutcomes(class, outcomes) {
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
