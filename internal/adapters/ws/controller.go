package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"signal-relay/internal/app"
)

const (
	writeWait   = 5 * time.Second
	sendBufSize = 32
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller accepts websocket upgrades and wires each connection's
// message/close/error events into the router.
type Controller struct {
	Router     *app.Router
	ReadLimit  int64
	PingPeriod time.Duration
}

func NewController(router *app.Router, readLimit int64, pingPeriod time.Duration) *Controller {
	return &Controller{
		Router:     router,
		ReadLimit:  readLimit,
		PingPeriod: pingPeriod,
	}
}

func (ctl *Controller) Handle(ctx context.Context, c *gin.Context) {
	socket, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "adapters.ws").Str("remote", socket.RemoteAddr().String()).Msg("new connection")

	conn := newConn(socket, sendBufSize)
	ctx, cancel := context.WithCancel(ctx)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, conn)
}

func (ctl *Controller) writePump(ctx context.Context, c *Conn) {
	ping := time.NewTicker(ctl.PingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "adapters.ws").Msg("writePump set deadline")
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "adapters.ws").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump is the sole reader and the sole caller of handler code for its
// connection, which keeps message handling sequential per connection and
// guarantees cleanup runs after the last handled message.
func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, c *Conn) {
	defer func() {
		cancel()
		c.Close()
		ctl.Router.OnClose(c)
		log.Info().Str("module", "adapters.ws").Msg("connection closed")
	}()

	c.ws.SetReadLimit(ctl.ReadLimit)
	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.ws.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					ctl.Router.OnError(c, err)
				}
				return
			}
			ctl.Router.OnMessage(ctx, c, data)
		}
	}
}
