// Package signal implements the live-session signaling relay: the
// websocket endpoint, the protocol message set and the router that maps
// inbound events to room-registry mutations and outbound frames.
package signal

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

// Server owns the transport side of a connection's lifecycle: upgrade,
// read/write pumps, keepalive and the disconnect event that feeds the
// router's cleanup path.
type Server struct {
	router     *Router
	upgrader   websocket.Upgrader
	readLimit  int64
	pingPeriod time.Duration
	sendBuffer int
}

func NewServer(router *Router, readLimit int64, pingPeriod time.Duration, sendBuffer int) *Server {
	return &Server{
		router: router,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		readLimit:  readLimit,
		pingPeriod: pingPeriod,
		sendBuffer: sendBuffer,
	}
}

// HandleWS upgrades the request and runs the connection until the peer
// goes away. Each physical connection gets a fresh uuid handle; identity
// is only established later by a join-room frame.
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("ws upgrade failed")
		return
	}

	conn := newWsConn(uuid.NewString(), ws, s.sendBuffer)
	log.Info().Str("module", "signal").Str("conn", conn.ID()).
		Str("client", c.GetString("client_token")).Msg("connection open")

	go s.writePump(conn)
	s.readPump(conn)

	s.router.Disconnect(conn)
	_ = conn.Close()
	log.Info().Str("module", "signal").Str("conn", conn.ID()).Msg("connection closed")
}

func (s *Server) readPump(c *wsConn) {
	c.conn.SetReadLimit(s.readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingPeriod))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.pingPeriod))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Str("module", "signal").Str("conn", c.ID()).Msg("read loop done")
			return
		}
		s.router.Handle(c, data)
	}
}

func (s *Server) writePump(c *wsConn) {
	ticker := time.NewTicker(s.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("conn", c.ID()).Msg("write failed")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
