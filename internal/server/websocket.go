package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/btengine/internal/core/observability/log"
	"github.com/zeusync/btengine/internal/core/runner"
)

const maxRequestSize = 4 << 10

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Request asks for one evaluation.
type Request struct {
	Debug bool `json:"debug"`
}

// Response carries the report of one evaluation or the reason it failed.
type Response struct {
	Report *runner.Report `json:"report,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.OnConnect(r); err != nil {
		s.logger.Warn("Rejected connection", log.String("remote_addr", r.RemoteAddr), log.Error(err))
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Upgrade failed", log.Error(err))
		return
	}
	conn.SetReadLimit(maxRequestSize)

	s.clients.Store(conn, struct{}{})
	s.clientCount.Add(1)
	logger := s.logger.With(log.String("remote_addr", conn.RemoteAddr().String()))
	logger.Debug("Client connected")
	defer func() {
		s.clients.Delete(conn)
		s.clientCount.Add(-1)
		_ = conn.Close()
		logger.Debug("Client disconnected")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("Read failed", log.Error(err))
			}
			return
		}

		var resp Response
		if req, err := decodeRequest(data); err != nil {
			logger.Debug("Malformed request", log.Error(err))
			resp = Response{Error: err.Error()}
		} else {
			resp = s.evaluate(r, req)
		}
		if s.config.WriteTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		}
		if err := conn.WriteJSON(resp); err != nil {
			logger.Warn("Write failed", log.Error(err))
			return
		}
	}
}

// decodeRequest parses one client message. An empty message is a default
// Request.
func decodeRequest(data []byte) (Request, error) {
	var req Request
	if len(bytes.TrimSpace(data)) == 0 {
		return req, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return req, nil
}

func (s *Server) evaluate(r *http.Request, req Request) Response {
	state, err := s.scenario.Build()
	if err != nil {
		return Response{Error: err.Error()}
	}
	state.Debug = req.Debug

	rep, err := s.runner.Run(r.Context(), s.tree, state)
	if err != nil {
		return Response{Error: err.Error()}
	}
	return Response{Report: rep}
}
