package log

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackBeforeInit(t *testing.T) {
	assert.NotPanics(t, func() { Infof("logging before Init: %d", 1) })
	assert.NotNil(t, GetZapLogger())
	assert.NotNil(t, GetSugaredLogger())
}

func TestInit(t *testing.T) {
	for _, debug := range []bool{false, true} {
		require.NoError(t, Init(debug))
		assert.Equal(t, debug, GetZapLogger().Core().Enabled(-1), "debug level enabled")
		assert.NotNil(t, Named("sim"))
	}
}

func TestHTTPMiddlewarePassesThrough(t *testing.T) {
	h := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/sun", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "short and stout", rr.Body.String())
}
