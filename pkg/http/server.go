package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.temporal.io/sdk/client"

	hclconfig "github.com/gamethread/narrative-timeline/pkg/hcl"
	"github.com/gamethread/narrative-timeline/pkg/temporal"
)

const taskQueue = "narrative-timeline-task-queue"

// Server is the HTTP ingress for the narrative timeline service
type Server struct {
	logger         *slog.Logger
	temporalClient client.Client
	addr           string
}

// NewServer creates a new HTTP server
func NewServer(logger *slog.Logger, temporalClient client.Client, addr string) *Server {
	return &Server{
		logger:         logger,
		temporalClient: temporalClient,
		addr:           addr,
	}
}

// Start starts the HTTP server and blocks until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /games/{id}/events", s.handleIngestEvents)
	mux.HandleFunc("POST /games/{id}/timeline", s.handleAssembleTimeline)
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := s.loggingMiddleware(mux)

	server := &http.Server{
		Addr:    s.addr,
		Handler: handler,
	}

	s.logger.Info("Starting HTTP server", "addr", s.addr)

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

// handleIngestEvents accepts a batch of raw play-by-play records for a game
// and signals them into the game's ingestion workflow
func (s *Server) handleIngestEvents(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if gameID == "" {
		s.respondError(w, http.StatusBadRequest, "game ID is required")
		return
	}

	var records []json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if len(records) == 0 {
		s.respondError(w, http.StatusBadRequest, "at least one record is required")
		return
	}

	s.logger.Info("Ingesting records", "gameID", gameID, "count", len(records))

	eventBytes := make([][]byte, len(records))
	for i, record := range records {
		eventBytes[i] = []byte(record)
	}

	workflowID := temporal.GenerateIngestionWorkflowID(gameID)
	signal := temporal.EventSignal{Events: eventBytes}

	// SignalWithStart ensures the game's workflow exists.
	_, err := s.temporalClient.SignalWithStartWorkflow(
		r.Context(),
		workflowID,
		temporal.EventSignalName,
		signal,
		client.StartWorkflowOptions{
			ID:        workflowID,
			TaskQueue: taskQueue,
		},
		temporal.GameIngestionWorkflow,
		gameID,
	)

	if err != nil {
		s.logger.Error("Failed to signal workflow", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to ingest records")
		return
	}

	s.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"message":      "records queued for ingestion",
		"game_id":      gameID,
		"record_count": len(records),
	})
}

// handleAssembleTimeline runs the assembly workflow for a game and returns
// the narrative timeline. The request body may be JSON or HCL.
func (s *Server) handleAssembleTimeline(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if gameID == "" {
		s.respondError(w, http.StatusBadRequest, "game ID is required")
		return
	}

	request, err := s.decodeAssembleRequest(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	request.GameID = gameID

	s.logger.Info("Assembling timeline", "gameID", gameID, "sport", request.Sport)

	workflowID := temporal.GenerateAssemblyWorkflowID(gameID)
	run, err := s.temporalClient.ExecuteWorkflow(
		r.Context(),
		client.StartWorkflowOptions{
			ID:        workflowID,
			TaskQueue: taskQueue,
		},
		temporal.TimelineAssemblyWorkflow,
		*request,
	)
	if err != nil {
		s.logger.Error("Failed to start assembly workflow", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to assemble timeline")
		return
	}

	var result temporal.AssembleResult
	if err := run.Get(r.Context(), &result); err != nil {
		s.logger.Error("Assembly workflow failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to assemble timeline")
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

// decodeAssembleRequest reads a JSON or HCL request body
func (s *Server) decodeAssembleRequest(r *http.Request) (*temporal.AssembleRequest, error) {
	contentType, err := hclconfig.DetectContentType(r)
	if err != nil {
		return nil, fmt.Errorf("unreadable request body")
	}

	if contentType == hclconfig.ContentTypeHCL {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("unreadable request body")
		}
		request, err := hclconfig.ParseAssembleRequest(string(body))
		if err != nil {
			return nil, fmt.Errorf("invalid HCL body: %w", err)
		}
		return request, nil
	}

	var request temporal.AssembleRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil && err != io.EOF {
		return nil, fmt.Errorf("invalid JSON body")
	}
	return &request, nil
}

// Health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		s.logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
		)
	})
}

// responseWriter captures the status code for logging
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Response helpers

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
