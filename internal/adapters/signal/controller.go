// Package signal adapts WebSocket connections onto the signaling hub:
// upgrade, read/write pumps, boundary validation, and room authorization.
package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	httpadapter "github.com/imelnik/peerview/internal/adapters/http"
	"github.com/imelnik/peerview/internal/auth"
	core "github.com/imelnik/peerview/internal/signal"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	Hub        *core.Hub
	Authorizer core.RoomAuthorizer

	ReadLimit    int64
	SendBuffer   int
	WriteTimeout time.Duration
}

func NewController(hub *core.Hub, authorizer core.RoomAuthorizer, readLimit int64, sendBuffer int, writeTimeout time.Duration) *Controller {
	return &Controller{
		Hub:          hub,
		Authorizer:   authorizer,
		ReadLimit:    readLimit,
		SendBuffer:   sendBuffer,
		WriteTimeout: writeTimeout,
	}
}

// Handle upgrades the request and runs the connection until teardown. The
// identity was verified by the auth middleware before the upgrade.
func (ctl *Controller) Handle(ctx context.Context, c *gin.Context) {
	identity := httpadapter.CurrentIdentity(c)

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.ReadLimit)

	conn := newWSConn(ws, ctl.SendBuffer)
	peer := ctl.Hub.Connect(conn)
	if peer == "" {
		conn.Close()
		return
	}
	log.Info().Str("module", "adapters.signal").Str("peer", string(peer)).Str("user", string(identity.UserID)).Msg("new signaling connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, peer, conn)
	go ctl.readPump(ctx, cancel, peer, identity, conn)
}

func (ctl *Controller) writePump(ctx context.Context, peer core.PeerID, c *wsConn) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "adapters.signal").Str("peer", string(peer)).Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "adapters.signal").Str("peer", string(peer)).Msg("writePump write error")
				return
			}
		}
	}
}

// readPump owns teardown: whatever ends the loop, the peer is
// disconnected from the hub exactly once and the transport is closed.
func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, peer core.PeerID, identity auth.Identity, c *wsConn) {
	defer func() {
		log.Info().Str("module", "adapters.signal").Str("peer", string(peer)).Msg("readPump closing")
		ctl.Hub.Disconnect(peer)
		cancel()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				return
			}
			ctl.handleFrame(ctx, peer, identity, c, data)
		}
	}
}

func (ctl *Controller) handleFrame(ctx context.Context, peer core.PeerID, identity auth.Identity, c *wsConn, data []byte) {
	evt, err := core.ParseClientEvent(data)
	if err != nil {
		// Malformed frames are dropped; the connection stays open.
		log.Warn().Err(err).Str("module", "adapters.signal").Str("peer", string(peer)).Msg("dropping malformed event")
		return
	}

	if evt.Type == core.EventJoinRoom && ctl.Authorizer != nil {
		if err := ctl.Authorizer.Authorize(ctx, evt.RoomID, identity); err != nil {
			log.Warn().Err(err).Str("module", "adapters.signal").Str("peer", string(peer)).Str("room", evt.RoomID).Msg("join rejected")
			ctl.sendError(c, evt.RoomID, err)
			return
		}
	}

	ctl.Hub.Dispatch(peer, evt)
}

func (ctl *Controller) sendError(c *wsConn, roomID string, err error) {
	msg := "not authorized to join this room"
	if errors.Is(err, core.ErrRoomNotFound) {
		msg = "room does not exist"
	}
	data, merr := json.Marshal(core.ServerEvent{Type: core.EventError, RoomID: roomID, Error: msg})
	if merr != nil {
		return
	}
	_ = c.TrySend(data)
}
