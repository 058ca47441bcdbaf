package utils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// TestRequest represents a test HTTP request
type TestRequest struct {
	Method  string
	Path    string
	Body    interface{}
	// RawBody is sent verbatim instead of marshalling Body
	RawBody string
	Token   string
	Headers map[string]string
}

// TestResponse represents a test HTTP response in the standard envelope
type TestResponse struct {
	StatusCode int
	Header     http.Header
	Raw        []byte
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

// DecodeData unmarshals the envelope's data into v
func (r TestResponse) DecodeData(t *testing.T, v interface{}) {
	t.Helper()
	require.NotEmpty(t, r.Data, "response has no data: %s", r.Raw)
	require.NoError(t, json.Unmarshal(r.Data, v))
}

// MakeTestRequest makes a test HTTP request
func MakeTestRequest(t *testing.T, router *gin.Engine, req TestRequest) TestResponse {
	t.Helper()

	body := []byte(req.RawBody)
	if req.Body != nil {
		var err error
		body, err = json.Marshal(req.Body)
		require.NoError(t, err, "failed to marshal request body")
	}

	httpReq, err := http.NewRequest(req.Method, req.Path, bytes.NewBuffer(body))
	require.NoError(t, err, "failed to create request")
	httpReq.Header.Set("Content-Type", "application/json")
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httpReq)

	resp := TestResponse{StatusCode: w.Code, Header: w.Header(), Raw: w.Body.Bytes()}
	if w.Body.Len() > 0 && json.Valid(w.Body.Bytes()) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return resp
}
