package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/csdemo/siteview/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	s := loadedServer(t)

	w := get(t, s, "/healthcheck")
	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)

	incoming := uuid.NewString()
	w = get(t, s, "/healthcheck", RequestIDHeader, incoming)
	assert.Equal(t, incoming, w.Header().Get(RequestIDHeader))

	w = get(t, s, "/healthcheck", RequestIDHeader, "not-a-uuid")
	assert.NotEqual(t, "not-a-uuid", w.Header().Get(RequestIDHeader))
}

func TestAccessLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	log := logging.NewKVLogger(zerolog.New(&buf))

	r := gin.New()
	r.Use(RequestID(), AccessLog(log))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req, err := http.NewRequest(http.MethodGet, "/missing?x=1", nil)
	require.NoError(t, err)
	r.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"path":"/missing?x=1"`)
	assert.Contains(t, out, `"status":404`)
	assert.Contains(t, out, `"requestID":"`)
}
