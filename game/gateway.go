package game

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Fearce02/Drawlio-sub000/config"
)

// Gateway is the HTTP/websocket edge: it upgrades sockets, binds them to
// identities, and routes packets to rooms or the presence relay.
type Gateway struct {
	registry *Registry
	presence *Presence
	stats    StatsStore
	upgrader websocket.Upgrader
}

func NewGateway(registry *Registry, presence *Presence, stats StatsStore) *Gateway {
	return &Gateway{
		registry: registry,
		presence: presence,
		stats:    stats,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == config.Envs.FRONTEND_ORIGIN
			},
		},
	}
}

// WebsocketHandler is the single entry point for all realtime traffic. Runs
// behind the optional auth middleware; guests arrive with an empty id.
func (g *Gateway) WebsocketHandler(ctx *gin.Context) {
	userId := ctx.GetString("id")

	conn, err := g.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		slog.Error("ws upgrade failed", "ip", ctx.ClientIP(), "error", err)
		return
	}

	c := newClient(NewWebsocketConnection(conn))
	c.userId = userId

	slog.Info("socket opened", "conn", c.id, "userId", userId, "ip", ctx.ClientIP())

	if userId != "" {
		g.presence.MarkOnline(userId, c)
	}

	go c.WritePump()
	c.ReadPump(g.dispatch)

	// Read side is gone; tell whoever still holds this connection.
	if c.room != nil {
		c.room.NotifyDisconnect(c)
	}
	if userId != "" {
		g.presence.MarkOffline(userId, c)
	}
	c.Close("read-closed")
	slog.Info("socket closed", "conn", c.id, "userId", userId)
}

func (g *Gateway) dispatch(c *client, packet ClientPacket) {
	switch packet.Type {
	case PacketJoinLobby:
		g.handleJoinLobby(c, packet.Data)
	case PacketJoinGameRoom:
		g.handleJoinGameRoom(c, packet)
	case PacketLeaveLobby:
		if c.room != nil {
			c.room.Deliver(packet, c)
			c.room = nil
		}
	case PacketCheckRoom:
		var data CheckRoomData
		if err := json.Unmarshal(packet.Data, &data); err != nil {
			return
		}
		sendPacket(c, MakePacketRoomExists(data.RoomCode, g.registry.Exists(data.RoomCode)))
	case PacketInviteFriend:
		g.handleInviteFriend(c, packet.Data)
	case PacketDirectMessage:
		var data DirectMessageData
		if err := json.Unmarshal(packet.Data, &data); err != nil {
			return
		}
		g.presence.DirectMessage(c.userId, data.RecipientIdentity, data.Text)
	case PacketUserOnline:
		if c.userId != "" {
			g.presence.MarkOnline(c.userId, c)
		}
	case PacketUserOffline:
		if c.userId != "" {
			g.presence.MarkOffline(c.userId, c)
		}
	default:
		// Everything else is room traffic for the room this socket joined.
		if c.room != nil {
			c.room.Deliver(packet, c)
		}
	}
}

func (g *Gateway) handleJoinLobby(c *client, raw json.RawMessage) {
	var data JoinLobbyData
	if err := json.Unmarshal(raw, &data); err != nil {
		return
	}

	code := data.RoomCode
	if code == "" {
		code = g.registry.NewCode()
	}

	room, err := g.registry.GetOrCreate(code)
	if err != nil {
		sendPacket(c, MakePacketError(err))
		return
	}

	if c.room != nil && c.room != room {
		c.room.Deliver(ClientPacket{Type: PacketLeaveLobby}, c)
	}

	if err := room.RequestJoin(data.Identifier, c.userId, data.Password, c); err != nil {
		sendPacket(c, MakePacketError(err))
		return
	}

	c.identifier = data.Identifier
	c.room = room
}

// handleJoinGameRoom covers two cases: a socket already in the room asking
// for a turn-state resync, and a fresh socket reconnecting after a drop.
func (g *Gateway) handleJoinGameRoom(c *client, packet ClientPacket) {
	if c.room != nil {
		c.room.Deliver(packet, c)
		return
	}

	var data JoinGameRoomData
	if err := json.Unmarshal(packet.Data, &data); err != nil {
		return
	}

	room, err := g.registry.Get(data.RoomCode)
	if err != nil {
		sendPacket(c, MakePacketError(err))
		return
	}

	if err := room.RequestJoin(data.Identifier, c.userId, "", c); err != nil {
		sendPacket(c, MakePacketError(err))
		return
	}

	c.identifier = data.Identifier
	c.room = room
}

func (g *Gateway) handleInviteFriend(c *client, raw json.RawMessage) {
	if c.userId == "" {
		// Guests have no friend graph to invite from.
		return
	}

	var data InviteFriendData
	if err := json.Unmarshal(raw, &data); err != nil {
		return
	}

	inviter := data.InviterName
	if inviter == "" {
		inviter = c.identifier
	}
	g.presence.Invite(data.FriendIdentity, data.RoomCode, data.RoomName, inviter)
}

func sendPacket(c *client, packet ServerPacket) {
	if err := c.Send(mustMarshal(packet)); err != nil {
		slog.Debug("gateway send failed", "error", err)
	}
}
