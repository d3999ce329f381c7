package chat

import (
	"net"
	"net/http"
	"time"

	"PChat/logger"
	"PChat/tools/ids"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type GatewayConf struct {
	ReadLimit     int64         // max inbound frame size (default 1MB)
	ReadTimeout   time.Duration // read deadline, refreshed on pong (default 60s)
	WriteTimeout  time.Duration // per-write deadline (default 5s)
	PingInterval  time.Duration // server ping period (default 30s)
	SendQueueSize int           // per-connection outbound queue (default 256)
	AllowedOrigin string        // browser origin allowed to upgrade; empty allows all
}

func (c *GatewayConf) norm() {
	if c.ReadLimit <= 0 {
		c.ReadLimit = 1 << 20 // 1MB
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 60 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = defaultSendQueueSize
	}
}

// Gateway terminates websocket connections and surfaces connect/message/
// disconnect occurrences to the hub. One goroutine per connection drives the
// read loop (this handler), one drains the outbound queue, one pings.
type Gateway struct {
	hub      *Hub
	conf     GatewayConf
	upgrader websocket.Upgrader
}

func NewGateway(hub *Hub, conf GatewayConf) *Gateway {
	conf.norm()
	g := &Gateway{hub: hub, conf: conf}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if conf.AllowedOrigin == "" {
				return true
			}
			origin := r.Header.Get("Origin")
			return origin == "" || origin == conf.AllowedOrigin
		},
	}
	return g
}

// HandleWS upgrades the connection and runs its read loop until the client
// goes away. Every exit path reports the disconnect to the hub exactly once.
func (g *Gateway) HandleWS(c *gin.Context) {
	ws, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[WS] upgrade failed err=%v", err)
		return
	}

	connID := ids.GenerateString()
	client := NewClient(connID, ws, g.conf.SendQueueSize)

	ws.SetReadLimit(g.conf.ReadLimit)
	_ = ws.SetReadDeadline(time.Now().Add(g.conf.ReadTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(g.conf.ReadTimeout))
	})

	go g.writePump(client)
	go g.pingLoop(client)

	g.hub.OnConnect(c.Request.Context(), client)

	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[WS] peer closed conn=%s", connID)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[WS] read timeout conn=%s err=%v", connID, rerr)
			} else {
				logger.Infof("[WS] read err conn=%s err=%v", connID, rerr)
			}
			break
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		frame, perr := ParseFrameJSON(data)
		if perr != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Warnf("[WS] bad frame conn=%s err=%v sample=%q", connID, perr, sample)
			continue
		}

		switch frame.Event {
		case EventMessage:
			in, derr := ExtractInboundMessage(frame)
			if derr != nil {
				logger.Warnf("[WS] bad message payload conn=%s err=%v", connID, derr)
				continue
			}
			g.hub.OnMessage(c.Request.Context(), in.Username, in.Text)
		default:
			logger.Debug("[WS] ignoring unknown event " + frame.Event)
		}
	}

	g.hub.OnDisconnect(connID)
}

// writePump drains the client's outbound queue onto the socket. On a write
// failure it reports the disconnect and keeps draining so the queue closes
// promptly instead of backing up the broadcaster.
func (g *Gateway) writePump(c *Client) {
	dead := false
	for payload := range c.Send {
		if dead {
			continue
		}
		if err := g.writeText(c.WS, payload); err != nil {
			logger.Infof("[WS] write failed conn=%s err=%v", c.ConnID, err)
			dead = true
			g.hub.OnDisconnect(c.ConnID)
		}
	}
	closeQuiet(c.WS)
}

func (g *Gateway) pingLoop(c *Client) {
	t := time.NewTicker(g.conf.PingInterval)
	defer t.Stop()
	for {
		select {
		case <-c.Done():
			return
		case <-t.C:
			deadline := time.Now().Add(g.conf.WriteTimeout)
			if err := c.WS.WriteControl(websocket.PingMessage, []byte("ping"), deadline); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) writeText(conn *websocket.Conn, payload []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(g.conf.WriteTimeout)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}
