package jsonrpc

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openlms/internal/domain"
)

func newTestServer() *Server {
	return NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func call(t *testing.T, server *Server, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec, decoded
}

func TestSuccessfulCall(t *testing.T) {
	server := newTestServer()
	server.Register("Echo.say", func(_ context.Context, params jsoniter.RawMessage) (any, error) {
		var req struct {
			Message string `json:"message"`
		}
		if err := DecodeParams(params, &req); err != nil {
			return nil, err
		}
		return map[string]string{"echo": req.Message}, nil
	})

	rec, resp := call(t, server, `{"jsonrpc":"2.0","method":"Echo.say","params":{"message":"hi"},"id":1}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2.0", resp["jsonrpc"])
	result := resp["result"].(map[string]any)
	assert.Equal(t, "hi", result["echo"])
	assert.EqualValues(t, 1, resp["id"])
}

func TestNotFoundMapsTo404(t *testing.T) {
	server := newTestServer()
	server.Register("Patron.get", func(_ context.Context, _ jsoniter.RawMessage) (any, error) {
		return nil, domain.NewNotFound("patron", "deadbeef")
	})

	rec, resp := call(t, server, `{"jsonrpc":"2.0","method":"Patron.get","params":{},"id":2}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	respErr := resp["error"].(map[string]any)
	assert.EqualValues(t, -32004, respErr["code"])
	data := respErr["data"].(map[string]any)
	assert.Equal(t, "NotFound", data["code"])
}

func TestRuleViolationMapsTo400WithRuleCode(t *testing.T) {
	server := newTestServer()
	server.Register("Loan.renew", func(_ context.Context, _ jsoniter.RawMessage) (any, error) {
		return nil, domain.NewStateError("LoanAlreadyReturned", "loan has already been returned")
	})

	rec, resp := call(t, server, `{"jsonrpc":"2.0","method":"Loan.renew","params":{},"id":3}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	respErr := resp["error"].(map[string]any)
	assert.EqualValues(t, -32001, respErr["code"])
	data := respErr["data"].(map[string]any)
	assert.Equal(t, "LoanAlreadyReturned", data["code"])
}

func TestUnknownMethod(t *testing.T) {
	server := newTestServer()

	rec, resp := call(t, server, `{"jsonrpc":"2.0","method":"Nope.nothing","id":4}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	respErr := resp["error"].(map[string]any)
	assert.EqualValues(t, -32601, respErr["code"])
}

func TestMalformedParams(t *testing.T) {
	server := newTestServer()
	server.Register("Echo.say", func(_ context.Context, params jsoniter.RawMessage) (any, error) {
		var req struct {
			Message string `json:"message"`
		}
		if err := DecodeParams(params, &req); err != nil {
			return nil, err
		}
		return req.Message, nil
	})

	rec, resp := call(t, server, `{"jsonrpc":"2.0","method":"Echo.say","id":5}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	respErr := resp["error"].(map[string]any)
	assert.EqualValues(t, -32602, respErr["code"])
}

func TestInvalidJSONRPCVersion(t *testing.T) {
	server := newTestServer()

	rec, resp := call(t, server, `{"jsonrpc":"1.0","method":"Echo.say","id":6}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	respErr := resp["error"].(map[string]any)
	assert.EqualValues(t, -32600, respErr["code"])
}

func TestNonPostRejected(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/rpc", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	server := newTestServer()
	server.Register("Boom.go", func(_ context.Context, _ jsoniter.RawMessage) (any, error) {
		return nil, io.ErrUnexpectedEOF
	})

	rec, resp := call(t, server, `{"jsonrpc":"2.0","method":"Boom.go","params":{},"id":7}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	respErr := resp["error"].(map[string]any)
	assert.EqualValues(t, -32603, respErr["code"])
	assert.Equal(t, "internal server error", respErr["message"])
}
