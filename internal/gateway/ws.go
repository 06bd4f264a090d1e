package gateway

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/hireloop/sessiongate/internal/config"
	"github.com/hireloop/sessiongate/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS authenticates the handshake and runs the connection. The
// credential travels with the connect request (query param or bearer
// header), never as a first message; a connection without a valid one
// is rejected before any event is processed.
func (g *Gateway) HandleWS(ctx context.Context, cfg *config.Config, c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		authz := c.GetHeader("Authorization")
		if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			token = strings.TrimSpace(authz[len("Bearer "):])
		}
	}

	who, err := g.auth.Authenticate(token)
	if err != nil {
		// Deliberately generic: which part of the check failed is
		// not revealed.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication error"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "gateway").Msg("ws upgrade")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	cl := &client{
		id:     domain.ConnID(uuid.NewString()),
		who:    who,
		tr:     newWSConn(ws),
		cancel: cancel,
	}
	g.register(cl)
	log.Info().Str("module", "gateway").Str("conn", string(cl.id)).Int64("user", int64(who.ID)).Str("role", string(who.Role)).Msg("connection authenticated")

	conn := cl.tr.(*wsConn)
	go g.writePump(conn, cfg.PingPeriod)
	go g.readPump(ctx, cl, conn, cfg.ReadLimit, pongWait(cfg.PingPeriod))
}

const defaultPingPeriod = 54 * time.Second

// pongWait is the read deadline derived from the ping period: one
// ping interval plus slack for the pong to come back.
func pongWait(pingPeriod time.Duration) time.Duration {
	if pingPeriod <= 0 {
		pingPeriod = defaultPingPeriod
	}
	return pingPeriod * 10 / 9
}

// writePump owns all writes, including the final socket close. It
// keeps draining the send channel after Close so frames queued before
// the close (the force-disconnect notification in particular) go out
// before the socket does.
func (g *Gateway) writePump(c *wsConn, pingPeriod time.Duration) {
	if pingPeriod <= 0 {
		pingPeriod = defaultPingPeriod
	}
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "gateway").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) readPump(ctx context.Context, cl *client, c *wsConn, readLimit int64, wait time.Duration) {
	defer g.teardown(ctx, cl)

	if readLimit > 0 {
		c.conn.SetReadLimit(readLimit)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(wait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "gateway").Str("conn", string(cl.id)).Msg("readPump closing")
				return
			}
			g.handleFrame(ctx, cl, data)
		}
	}
}
