// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/bureau-foundation/herald/delivery"
	"github.com/bureau-foundation/herald/lib/codec"
	"github.com/bureau-foundation/herald/lib/logevent"
)

// MaxBodySize bounds request bodies.
const MaxBodySize = 1 << 20

// Dispatcher is the part of *delivery.Dispatcher the server uses.
type Dispatcher interface {
	Log(event logevent.Event)
	IngestRawLine(line string)
	Stats() delivery.Stats
}

// Config configures a Server.
type Config struct {
	Dispatcher Dispatcher

	// Metrics serves GET /metrics. Nil answers 404.
	Metrics http.Handler

	// Logger receives request failures. Default: slog.Default().
	Logger *slog.Logger
}

// Server is the HTTP ingestion server.
type Server struct {
	router     *mux.Router
	dispatcher Dispatcher
	metrics    http.Handler
	logger     *slog.Logger
}

// New creates a Server and registers its routes.
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = http.NotFoundHandler()
	}
	server := &Server{
		router:     mux.NewRouter(),
		dispatcher: config.Dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/v1/events", s.handleEvents).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/raw", s.handleRaw).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/stats", s.handleStats).Methods(http.MethodGet)
	s.router.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
}

// Handler returns the server's router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve serves on listener until ctx is canceled, then shuts down,
// giving in-flight requests up to five seconds.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- httpServer.Serve(listener) }()
	s.logger.Info("ingest server listening", "address", listener.Addr().String())

	select {
	case err := <-serveErr:
		return fmt.Errorf("ingest server: %w", err)
	case <-ctx.Done():
	}

	shutdownContext, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownContext); err != nil {
		return fmt.Errorf("ingest server shutdown: %w", err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ingest server: %w", err)
	}
	return nil
}

// eventRequest is the JSON form of one event.
type eventRequest struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
	Details   any       `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

func (r eventRequest) event() (logevent.Event, error) {
	level := logevent.Info
	if r.Level != "" {
		parsed, err := logevent.ParseLevel(r.Level)
		if err != nil {
			return logevent.Event{}, err
		}
		level = parsed
	}
	if strings.TrimSpace(r.Message) == "" {
		return logevent.Event{}, errors.New("message is required")
	}
	return logevent.Event{
		Level:     level,
		Message:   r.Message,
		Source:    r.Source,
		Details:   r.Details,
		Timestamp: r.Timestamp,
	}, nil
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	reader, release, err := requestBody(w, r)
	if err != nil {
		writeError(w, bodyErrorStatus(err), err.Error())
		return
	}
	defer release()
	body, err := io.ReadAll(reader)
	if err != nil {
		writeError(w, bodyErrorStatus(err), fmt.Sprintf("reading body: %v", err))
		return
	}

	var requests []eventRequest
	if isCBOR(r.Header.Get("Content-Type")) {
		requests, err = decodeCBOREvents(body)
		if err != nil {
			if notation, diagErr := codec.Diagnose(body); diagErr == nil {
				s.logger.Debug("undecodable CBOR event body", "diagnostic", notation)
			}
		}
	} else {
		requests, err = decodeEvents(body)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events := make([]logevent.Event, 0, len(requests))
	for index, request := range requests {
		event, err := request.event()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("event %d: %v", index, err))
			return
		}
		events = append(events, event)
	}
	for _, event := range events {
		s.dispatcher.Log(event)
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"accepted": len(events)})
}

// decodeEvents accepts a single object or an array of objects.
func decodeEvents(body []byte) ([]eventRequest, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty request body")
	}
	if trimmed[0] == '[' {
		var requests []eventRequest
		if err := json.Unmarshal(trimmed, &requests); err != nil {
			return nil, fmt.Errorf("invalid event array: %w", err)
		}
		if len(requests) == 0 {
			return nil, errors.New("empty event array")
		}
		return requests, nil
	}
	var request eventRequest
	if err := json.Unmarshal(trimmed, &request); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	return []eventRequest{request}, nil
}

// decodeCBOREvents is decodeEvents for application/cbor bodies.
func decodeCBOREvents(body []byte) ([]eventRequest, error) {
	if len(body) == 0 {
		return nil, errors.New("empty request body")
	}
	// Major type 4 is an array.
	if body[0]>>5 == 4 {
		var requests []eventRequest
		if err := codec.Unmarshal(body, &requests); err != nil {
			return nil, fmt.Errorf("invalid event array: %w", err)
		}
		if len(requests) == 0 {
			return nil, errors.New("empty event array")
		}
		return requests, nil
	}
	var request eventRequest
	if err := codec.Unmarshal(body, &request); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	return []eventRequest{request}, nil
}

func isCBOR(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == codec.ContentType
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	reader, release, err := requestBody(w, r)
	if err != nil {
		writeError(w, bodyErrorStatus(err), err.Error())
		return
	}
	defer release()

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64<<10), MaxBodySize)

	accepted := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		s.dispatcher.IngestRawLine(line)
		accepted++
	}
	if err := scanner.Err(); err != nil {
		s.logger.Warn("raw ingestion stopped early", "error", err, "accepted", accepted)
		status := bodyErrorStatus(err)
		if errors.Is(err, bufio.ErrTooLong) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, fmt.Sprintf("stopped after %d lines: %v", accepted, err))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"accepted": accepted})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.dispatcher.Stats()
	if strings.Contains(r.Header.Get("Accept"), codec.ContentType) {
		data, err := codec.Marshal(stats)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", codec.ContentType)
		w.Write(data)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
