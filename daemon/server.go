// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

package daemon

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/we-are-mono/wled/daemon/logger"
	"github.com/we-are-mono/wled/effect"
)

// GetSocketPath returns the socket path, preferring WLED_SOCKET_PATH env var
func GetSocketPath() string {
	if path := os.Getenv("WLED_SOCKET_PATH"); path != "" {
		return path
	}
	return "/var/run/wled.sock"
}

// handlerFunc is a function that handles a daemon command
type handlerFunc func(Request) Response

// Server answers control requests on a unix socket, one JSON line each way.
type Server struct {
	loop       *Loop
	emitter    *logger.Emitter
	listener   net.Listener
	socketPath string
	done       chan struct{}
	stopOnce   sync.Once
	handlers   map[string]handlerFunc
}

// NewServer listens on socketPath. Log streaming is served from emitter,
// which may be nil.
func NewServer(socketPath string, loop *Loop, emitter *logger.Emitter) (*Server, error) {
	os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket: %w", err)
	}

	if err := os.Chmod(socketPath, 0666); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s := newServer(loop, emitter)
	s.listener = listener
	s.socketPath = socketPath
	return s, nil
}

func newServer(loop *Loop, emitter *logger.Emitter) *Server {
	s := &Server{
		loop:    loop,
		emitter: emitter,
		done:    make(chan struct{}),
	}

	s.handlers = map[string]handlerFunc{
		"status":        func(req Request) Response { return s.handleStatus() },
		"apply":         func(req Request) Response { return s.handleApply(req.ID) },
		"next":          func(req Request) Response { return s.handleNext() },
		"stop-playlist": func(req Request) Response { return s.handleStopPlaylist() },
		"power":         func(req Request) Response { return s.handlePower(req.Value) },
		"brightness":    func(req Request) Response { return s.handleBrightness(req.Value) },
		"effect":        func(req Request) Response { return s.handleEffect(req.Segment, req.Value) },
	}
	return s
}

// Serve accepts connections until Stop is called.
func (s *Server) Serve() error {
	logger.Info("Daemon listening", logger.Field{Key: "socket", Value: s.socketPath})

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
				logger.Error("Failed to accept connection",
					logger.Field{Key: "error", Value: err.Error()})
				continue
			}
		}

		go s.handleConnection(conn)
	}
}

// Stop closes the listener and removes the socket
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		if s.socketPath != "" {
			os.Remove(s.socketPath)
		}
	})
	return nil
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil {
		return
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendResponse(conn, Response{
			Success: false,
			Error:   fmt.Sprintf("invalid request: %v", err),
		})
		return
	}

	// Log streaming keeps the connection open
	if req.Command == "logs-subscribe" {
		filter := req.LogFilter
		if filter == nil {
			filter = &LogFilter{}
		}
		s.handleLogsSubscribe(conn, filter)
		return
	}

	s.sendResponse(conn, s.handleRequest(req))
}

func (s *Server) handleRequest(req Request) Response {
	handler, exists := s.handlers[req.Command]
	if !exists {
		return Response{
			Success: false,
			Error:   fmt.Sprintf("unknown command: %s", req.Command),
		}
	}
	return handler(req)
}

func errorResponse(err error) Response {
	return Response{Success: false, Error: err.Error()}
}

func (s *Server) handleStatus() Response {
	return Response{Success: true, Data: s.loop.Status()}
}

func (s *Server) handleApply(id int) Response {
	p, err := s.loop.ApplyPreset(id)
	if err != nil {
		return errorResponse(err)
	}
	msg := fmt.Sprintf("Applied preset %d", id)
	if p.Playlist != nil {
		msg = fmt.Sprintf("Started playlist %d", id)
	}
	return Response{Success: true, Message: msg, Data: p}
}

func (s *Server) handleNext() Response {
	if err := s.loop.NextEntry(); err != nil {
		return errorResponse(err)
	}
	return Response{Success: true, Message: "Advanced playlist"}
}

func (s *Server) handleStopPlaylist() Response {
	if err := s.loop.StopPlaylist(); err != nil {
		return errorResponse(err)
	}
	return Response{Success: true, Message: "Playlist stopped"}
}

func (s *Server) handlePower(value interface{}) Response {
	on, ok := value.(bool)
	if !ok {
		return errorResponse(fmt.Errorf("power needs a boolean value, got %v", value))
	}
	s.loop.SetPower(on)
	if on {
		return Response{Success: true, Message: "Power on"}
	}
	return Response{Success: true, Message: "Power off"}
}

func (s *Server) handleBrightness(value interface{}) Response {
	b, err := toUint8(value)
	if err != nil {
		return errorResponse(fmt.Errorf("brightness: %w", err))
	}
	s.loop.SetBrightness(b)
	return Response{Success: true, Message: fmt.Sprintf("Brightness %d", b)}
}

func (s *Server) handleEffect(segment int, value interface{}) Response {
	mode, err := toUint8(value)
	if err != nil {
		return errorResponse(fmt.Errorf("effect: %w", err))
	}
	if err := s.loop.SetEffect(segment, effect.ModeID(mode)); err != nil {
		return errorResponse(err)
	}
	return Response{Success: true, Message: fmt.Sprintf("Segment %d set to effect %d", segment, mode)}
}

// toUint8 converts a decoded JSON number to 0..255
func toUint8(value interface{}) (uint8, error) {
	f, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("expected a number, got %v", value)
	}
	if f < 0 || f > 255 || f != float64(int(f)) {
		return 0, fmt.Errorf("value %v is not an integer in 0..255", f)
	}
	return uint8(f), nil
}

func (s *Server) sendResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Error("Failed to marshal response",
			logger.Field{Key: "error", Value: err.Error()})
		return
	}

	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		logger.Error("Failed to write response",
			logger.Field{Key: "error", Value: err.Error()})
	}
}

func (s *Server) handleLogsSubscribe(conn net.Conn, filter *LogFilter) {
	if s.emitter == nil {
		s.sendResponse(conn, errorResponse(errors.New("log streaming is not available")))
		return
	}

	subscriber := NewSocketLogSubscriber(conn, filter)
	unsubscribe := s.emitter.Subscribe(subscriber)
	defer func() {
		unsubscribe()
		subscriber.Close()
	}()

	// Keep the connection open until the client disconnects
	buffer := make([]byte, 1)
	for {
		if _, err := conn.Read(buffer); err != nil {
			return
		}
	}
}
