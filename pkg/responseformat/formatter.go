// Package responseformat encodes API responses as JSON or MessagePack.
package responseformat

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format is a response encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeMsgpack = "application/x-msgpack"
)

// Formatter handles encoding and writing responses in JSON or MessagePack format
type Formatter struct{}

// NewFormatter creates a new response formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Negotiate picks the response format. The format=msgpack query parameter
// wins, then an Accept header naming MessagePack. JSON is the default.
func Negotiate(req *http.Request) Format {
	switch req.URL.Query().Get("format") {
	case string(FormatMsgpack):
		return FormatMsgpack
	case string(FormatJSON):
		return FormatJSON
	}
	if strings.Contains(req.Header.Get("Accept"), contentTypeMsgpack) {
		return FormatMsgpack
	}
	return FormatJSON
}

// WriteResponse writes data with status 200 in the negotiated format.
func (f *Formatter) WriteResponse(w http.ResponseWriter, req *http.Request, data any, headers map[string]string) error {
	// Set any provided headers first
	for k, v := range headers {
		w.Header().Set(k, v)
	}
	return f.write(w, Negotiate(req), http.StatusOK, data)
}

// WriteError writes {"error": msg} with the given status in the negotiated
// format.
func (f *Formatter) WriteError(w http.ResponseWriter, req *http.Request, status int, msg string) error {
	return f.write(w, Negotiate(req), status, map[string]string{"error": msg})
}

func (f *Formatter) write(w http.ResponseWriter, format Format, status int, data any) error {
	// Always set CORS header
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if format == FormatMsgpack {
		w.Header().Set("Content-Type", contentTypeMsgpack)
		w.WriteHeader(status)
		encoder := msgpack.NewEncoder(w)
		encoder.SetCustomStructTag("json") // Use json tags for MessagePack
		return encoder.Encode(data)
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}
