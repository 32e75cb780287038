package game

import (
	"encoding/json"
	"log/slog"
)

// envelope is one inbound client packet bound to the connection it arrived
// on. The room trusts the connection, never identifiers inside the payload.
type envelope struct {
	packet ClientPacket
	from   Conn
}

type joinRequest struct {
	identifier string
	userId     string
	password   string
	conn       Conn
	errChan    chan error
}

// Run drains the room's channels until teardown closes done. Everything the
// room owns is mutated here and nowhere else.
func (r *Room) Run() {
	for {
		select {
		case env := <-r.inbox:
			r.handlePacket(env)
		case req := <-r.joinReqs:
			req.errChan <- r.handleJoinRequest(req)
		case conn := <-r.disconnects:
			r.handleDisconnect(conn)
		case ev := <-r.timerCh:
			r.handleTimedEvent(ev)
		case <-r.pings:
			r.pingMembers()
		case <-r.done:
			r.cancelAllTimers()
			return
		}
	}
}

func (r *Room) handlePacket(env envelope) {
	switch env.packet.Type {
	case PacketLeaveLobby:
		r.handleLeave(r.memberOf(env.from))
	case PacketUpdateSettings:
		var data UpdateSettingsData
		if err := json.Unmarshal(env.packet.Data, &data); err != nil {
			return
		}
		r.handleUpdateSettings(env.from, data.Settings)
	case PacketStartGame:
		r.handleStartGame(env.from)
	case PacketJoinGameRoom:
		r.handleResync(env.from)
	case PacketDrawing:
		r.handleStroke(env.from, env.packet.Data)
	case PacketClearCanvas:
		r.handleClearCanvas(env.from)
	case PacketSendGuess:
		var data GuessData
		if err := json.Unmarshal(env.packet.Data, &data); err != nil {
			return
		}
		r.handleGuess(env.from, data.Text)
	case PacketPlayAgain:
		r.handlePlayAgain(env.from)
	case PacketChatMessage:
		var data ChatData
		if err := json.Unmarshal(env.packet.Data, &data); err != nil {
			return
		}
		r.handleChat(env.from, data.Text)
	default:
		slog.Debug("dropping unknown packet", "room", r.code, "type", env.packet.Type)
	}
}

func (r *Room) pingMembers() {
	for _, m := range r.members {
		if m.conn == nil {
			continue
		}
		if err := m.conn.Ping(); err != nil {
			slog.Debug("ping failed", "room", r.code, "member", m.Identifier, "error", err)
		}
	}
}

// --- exported surface, safe from any goroutine ---

// RequestJoin admits or reattaches a player and blocks until the room's
// goroutine has answered.
func (r *Room) RequestJoin(identifier, userId, password string, conn Conn) error {
	req := joinRequest{
		identifier: identifier,
		userId:     userId,
		password:   password,
		conn:       conn,
		errChan:    make(chan error, 1),
	}

	select {
	case r.joinReqs <- req:
	case <-r.done:
		return ErrRoomClosed
	}

	select {
	case err := <-req.errChan:
		return err
	case <-r.done:
		return ErrRoomClosed
	}
}

// Deliver hands one client packet to the room. It never blocks; when the
// inbox is saturated the packet is dropped and logged.
func (r *Room) Deliver(packet ClientPacket, from Conn) {
	select {
	case r.inbox <- envelope{packet: packet, from: from}:
	case <-r.done:
	default:
		slog.Warn("room inbox full, dropping packet", "room", r.code, "type", packet.Type)
	}
}

// NotifyDisconnect reports a dropped transport. Idempotent for connections
// the room no longer tracks.
func (r *Room) NotifyDisconnect(conn Conn) {
	select {
	case r.disconnects <- conn:
	case <-r.done:
	default:
	}
}

// Ping asks the room to health-check its members' transports.
func (r *Room) Ping() {
	select {
	case r.pings <- struct{}{}:
	default:
	}
}

// Closed reports whether the room has torn itself down.
func (r *Room) Closed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}
