package responseformat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type payload struct {
	AltitudeDeg float64 `json:"altitude_deg"`
	Name        string  `json:"name"`
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name   string
		target string
		accept string
		want   Format
	}{
		{"default", "/sun", "", FormatJSON},
		{"query msgpack", "/sun?format=msgpack", "", FormatMsgpack},
		{"accept msgpack", "/sun", "application/x-msgpack", FormatMsgpack},
		{"query beats accept", "/sun?format=json", "application/x-msgpack", FormatJSON},
		{"unknown query", "/sun?format=xml", "", FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			assert.Equal(t, tt.want, Negotiate(req))
		})
	}
}

func TestWriteResponseJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sun", nil)
	require.NoError(t, NewFormatter().WriteResponse(rec, req, payload{42.5, "nola"}, map[string]string{"Cache-Control": "no-store"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var got payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, payload{42.5, "nola"}, got)
}

func TestWriteResponseMsgpackUsesJSONTags(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sun?format=msgpack", nil)
	require.NoError(t, NewFormatter().WriteResponse(rec, req, payload{42.5, "nola"}, nil))

	assert.Equal(t, "application/x-msgpack", rec.Header().Get("Content-Type"))
	var got map[string]any
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 42.5, got["altitude_deg"])
	assert.Equal(t, "nola", got["name"])
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sun", nil)
	require.NoError(t, NewFormatter().WriteError(rec, req, http.StatusBadRequest, "lat must be a number"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "lat must be a number", got["error"])
}
