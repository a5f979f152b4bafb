package graphql

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/getmockd/registrar/internal/id"
	"github.com/getmockd/registrar/pkg/httputil"
	"github.com/getmockd/registrar/pkg/logging"
)

// MaxRequestBodySize is the maximum allowed request body size (1MB).
const MaxRequestBodySize = 1 << 20 // 1MB

// RequestIDHeader carries the per-request trace id.
const RequestIDHeader = "X-Request-ID"

// Recorder receives one observation per handled request.
type Recorder interface {
	ObserveRequest(operationType, operationName string, status, errorCount int, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRequest(string, string, int, int, time.Duration) {}

// Handler handles GraphQL HTTP requests.
type Handler struct {
	executor *Executor
	log      *slog.Logger
	recorder Recorder
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger sets the logger used for request logs.
func WithHandlerLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithRecorder sets the request recorder, typically a metrics collector.
func WithRecorder(r Recorder) HandlerOption {
	return func(h *Handler) {
		if r != nil {
			h.recorder = r
		}
	}
}

// NewHandler creates a new GraphQL HTTP handler.
func NewHandler(executor *Executor, opts ...HandlerOption) *Handler {
	h := &Handler{
		executor: executor,
		log:      logging.Nop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Pattern returns the URL pattern this handler serves.
func (h *Handler) Pattern() string {
	return h.executor.Config().Path
}

// ServeHTTP handles GraphQL requests.
// POST accepts application/json and application/graphql bodies; GET reads
// query, variables and operationName from the URL and only runs queries.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	traceID := r.Header.Get(RequestIDHeader)
	if traceID == "" {
		traceID = id.TraceID()
	}
	w.Header().Set(RequestIDHeader, traceID)

	log := h.log.With("traceId", traceID)
	ctx := logging.WithLogger(r.Context(), log)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		h.finish(log, r, nil, "", http.StatusMethodNotAllowed, 1, startTime)
		return
	}

	var req *GraphQLRequest
	var err error
	if r.Method == http.MethodGet {
		req, err = h.parseGetRequest(r)
	} else {
		req, err = h.parsePostRequest(w, r)
	}
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
			err = &parseError{message: "request body too large"}
		}
		h.writeError(w, status, err.Error())
		h.finish(log, r, req, "", status, 1, startTime)
		return
	}

	var execOpts []ExecuteOption
	if r.Method == http.MethodGet {
		execOpts = append(execOpts, QueriesOnly())
	}
	resp := h.executor.Execute(ctx, req, execOpts...)
	if resp.rejected {
		w.Header().Set("Allow", "POST")
		h.writeError(w, http.StatusMethodNotAllowed, resp.OperationType()+" operations must use POST")
		h.finish(log, r, req, resp.OperationType(), http.StatusMethodNotAllowed, 1, startTime)
		return
	}
	h.writeResponse(w, resp)
	h.finish(log, r, req, resp.OperationType(), http.StatusOK, len(resp.Errors), startTime)
}

// finish logs the request and reports it to the recorder. opType is the
// parsed operation type, empty when none was selected.
func (h *Handler) finish(log *slog.Logger, r *http.Request, req *GraphQLRequest, opType string, status, errorCount int, startTime time.Time) {
	duration := time.Since(startTime)

	if opType == "" {
		opType = "unknown"
	}
	opName := ""
	if req != nil {
		opName = req.OperationName
	}

	h.recorder.ObserveRequest(opType, opName, status, errorCount, duration)

	level := slog.LevelInfo
	if status >= http.StatusBadRequest {
		level = slog.LevelWarn
	}
	log.Log(r.Context(), level, "graphql request",
		"method", r.Method,
		"path", r.URL.Path,
		"operationType", opType,
		"operationName", opName,
		"status", status,
		"errors", errorCount,
		"durationMs", duration.Milliseconds(),
	)
}

// parseGetRequest parses a GraphQL request from GET query parameters.
func (h *Handler) parseGetRequest(r *http.Request) (*GraphQLRequest, error) {
	query := r.URL.Query()

	req := &GraphQLRequest{
		Query:         query.Get("query"),
		OperationName: query.Get("operationName"),
	}
	if req.Query == "" {
		return nil, &parseError{message: "missing query parameter"}
	}

	if varsStr := query.Get("variables"); varsStr != "" {
		var variables map[string]interface{}
		if err := json.Unmarshal([]byte(varsStr), &variables); err != nil {
			return nil, &parseError{message: "invalid variables JSON"}
		}
		req.Variables = variables
	}

	return req, nil
}

// parsePostRequest parses a GraphQL request from a POST body.
func (h *Handler) parsePostRequest(w http.ResponseWriter, r *http.Request) (*GraphQLRequest, error) {
	contentType := r.Header.Get("Content-Type")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBodySize))
	defer func() { _ = r.Body.Close() }()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, &parseError{message: "failed to read request body"}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &parseError{message: "empty request body"}
	}

	if strings.HasPrefix(contentType, "application/graphql") {
		return &GraphQLRequest{Query: string(body)}, nil
	}

	var req GraphQLRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &parseError{message: "invalid JSON request body"}
	}
	return &req, nil
}

// writeError writes an error response.
func (h *Handler) writeError(w http.ResponseWriter, statusCode int, message string) {
	httputil.WriteJSON(w, statusCode, &GraphQLResponse{
		Errors: []GraphQLError{{Message: message}},
	})
}

// writeResponse writes a GraphQL response.
func (h *Handler) writeResponse(w http.ResponseWriter, resp *GraphQLResponse) {
	if err := httputil.WriteJSONBuffered(w, http.StatusOK, resp); err != nil {
		h.log.Error("failed to encode response", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to encode response")
	}
}

// parseError represents a request parsing error.
type parseError struct {
	message string
}

func (e *parseError) Error() string {
	return e.message
}
