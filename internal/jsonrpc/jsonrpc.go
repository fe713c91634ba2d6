// Package jsonrpc implements the JSON-RPC 2.0 endpoint the application
// services are exposed through. Domain errors are mapped to response codes:
// not-found -> 404, business-rule violation -> 400, anything else -> 500.
package jsonrpc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"openlms/internal/domain"
)

var json = jsoniter.ConfigFastest

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603

	codeRuleViolation = -32001
	codeNotFound      = -32004
)

// HandlerFunc executes a single RPC method.
type HandlerFunc func(ctx context.Context, params jsoniter.RawMessage) (any, error)

type request struct {
	JSONRPC string              `json:"jsonrpc"`
	Method  string              `json:"method"`
	Params  jsoniter.RawMessage `json:"params"`
	ID      jsoniter.RawMessage `json:"id"`
}

type response struct {
	JSONRPC string              `json:"jsonrpc"`
	Result  any                 `json:"result,omitempty"`
	Error   *responseError      `json:"error,omitempty"`
	ID      jsoniter.RawMessage `json:"id"`
}

type responseError struct {
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Data    errorData `json:"data,omitempty"`
}

type errorData struct {
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// Server dispatches JSON-RPC requests to registered methods.
type Server struct {
	methods map[string]HandlerFunc
	logger  *slog.Logger
}

func NewServer(logger *slog.Logger) *Server {
	return &Server{
		methods: make(map[string]HandlerFunc),
		logger:  logger,
	}
}

// Register binds a method name (e.g. "Loan.checkout_copy") to its handler.
func (s *Server) Register(method string, handler HandlerFunc) {
	s.methods[method] = handler
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, nil, codeParseError, "failed to read request body", nil)
		return
	}

	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON", nil)
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		s.writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "invalid JSON-RPC request", nil)
		return
	}

	handler, ok := s.methods[req.Method]
	if !ok {
		s.writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method not found: "+req.Method, nil)
		return
	}

	result, err := handler(r.Context(), req.Params)
	if err != nil {
		s.writeMappedError(w, req.ID, req.Method, err)
		return
	}

	s.writeJSON(w, http.StatusOK, response{JSONRPC: "2.0", Result: result, ID: req.ID})
}

// writeMappedError translates domain errors into the wire taxonomy.
func (s *Server) writeMappedError(w http.ResponseWriter, id jsoniter.RawMessage, method string, err error) {
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		s.writeError(w, http.StatusNotFound, id, codeNotFound, notFound.Error(),
			&errorData{Error: notFound.Error(), Code: "NotFound"})
		return
	}

	var rule domain.RuleViolation
	if errors.As(err, &rule) {
		s.writeError(w, http.StatusBadRequest, id, codeRuleViolation, rule.Error(),
			&errorData{Error: rule.Error(), Code: rule.RuleCode()})
		return
	}

	var badParams *ParamsError
	if errors.As(err, &badParams) {
		s.writeError(w, http.StatusBadRequest, id, codeInvalidParams, badParams.Error(), nil)
		return
	}

	s.logger.Error("rpc method failed", "method", method, "error", err)
	s.writeError(w, http.StatusInternalServerError, id, codeInternalError, "internal server error", nil)
}

func (s *Server) writeError(w http.ResponseWriter, status int, id jsoniter.RawMessage, code int, message string, data *errorData) {
	respErr := &responseError{Code: code, Message: message}
	if data != nil {
		respErr.Data = *data
	}
	s.writeJSON(w, status, response{JSONRPC: "2.0", Error: respErr, ID: id})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("failed to encode rpc response", "error", err)
	}
}

// ParamsError reports malformed or missing RPC parameters.
type ParamsError struct {
	Message string
}

func NewParamsError(message string) *ParamsError { return &ParamsError{Message: message} }

func (e *ParamsError) Error() string { return e.Message }

// DecodeParams unmarshals the params object into dst, reporting a ParamsError
// on malformed input.
func DecodeParams(params jsoniter.RawMessage, dst any) error {
	if len(params) == 0 {
		return NewParamsError("missing params")
	}
	if err := json.Unmarshal(params, dst); err != nil {
		return NewParamsError("invalid params: " + err.Error())
	}
	return nil
}
