package server

import (
	"net/http"
	"net/url"
	"time"

	"github.com/csdemo/siteview/pkg/streaming"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	defaultStreamTick = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

// statusStream pushes a status sample on connect and then every tick until
// the client goes away or the server shuts down.
func (s *Server) statusStream(c *gin.Context) {
	if s.deps.Status == nil {
		notFound(c, "status stream is disabled")
		return
	}
	header := http.Header{}
	if id := c.GetString(requestIDKey); id != "" {
		header.Set(RequestIDHeader, id)
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, header)
	if err != nil {
		s.deps.Logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// the read loop only notices the client closing
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func() error {
		data, err := streaming.Marshal(streaming.TypeStatus, s.deps.Status.GetProgramStatus())
		if err != nil {
			return err
		}
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		return conn.WriteMessage(websocket.TextMessage, data)
	}

	tick := s.deps.StreamInterval
	if tick <= 0 {
		tick = defaultStreamTick
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for err := send(); err == nil; err = send() {
		select {
		case <-closed:
			return
		case <-s.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		case <-ticker.C:
		}
	}
	s.deps.Logger.Debug("Status stream closed", "requestID", c.GetString(requestIDKey))
}
