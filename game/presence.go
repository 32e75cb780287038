package game

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// FriendLister resolves the friend ids a presence change should fan out to.
type FriendLister interface {
	ListFriendIDs(ctx context.Context, userId string) ([]string, error)
}

const friendLookupTimeout = 3 * time.Second

// Presence tracks which authenticated users currently hold a live socket
// and relays friend-to-friend traffic (status changes, invites, direct
// messages). Guests never appear here.
type Presence struct {
	mu     sync.RWMutex
	online map[string]Conn

	friends FriendLister
}

func NewPresence(friends FriendLister) *Presence {
	return &Presence{
		online:  make(map[string]Conn),
		friends: friends,
	}
}

// MarkOnline registers the user's connection and tells their online friends.
// A second connection for the same user replaces the first.
func (p *Presence) MarkOnline(userId string, conn Conn) {
	if userId == "" {
		return
	}

	p.mu.Lock()
	p.online[userId] = conn
	p.mu.Unlock()

	p.notifyFriends(userId, true)
}

// MarkOffline removes the user if conn still owns the entry. A reconnect
// that already replaced the entry is left alone.
func (p *Presence) MarkOffline(userId string, conn Conn) {
	if userId == "" {
		return
	}

	p.mu.Lock()
	current, ok := p.online[userId]
	if !ok || current != conn {
		p.mu.Unlock()
		return
	}
	delete(p.online, userId)
	p.mu.Unlock()

	p.notifyFriends(userId, false)
}

func (p *Presence) IsOnline(userId string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.online[userId]
	return ok
}

// SendTo delivers a packet to the user's live connection. Offline users are
// a silent drop; presence traffic is best effort.
func (p *Presence) SendTo(userId string, packet ServerPacket) {
	p.mu.RLock()
	conn, ok := p.online[userId]
	p.mu.RUnlock()
	if !ok {
		return
	}
	if err := conn.Send(mustMarshal(packet)); err != nil {
		slog.Debug("presence send failed", "userId", userId, "error", err)
	}
}

// OnlineFriends filters the user's friend list down to the currently
// connected ones.
func (p *Presence) OnlineFriends(ctx context.Context, userId string) []string {
	friendIds, err := p.friends.ListFriendIDs(ctx, userId)
	if err != nil {
		slog.Error("list friends", "userId", userId, "error", err)
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	onlineIds := make([]string, 0, len(friendIds))
	for _, id := range friendIds {
		if _, ok := p.online[id]; ok {
			onlineIds = append(onlineIds, id)
		}
	}
	return onlineIds
}

// Invite relays a room invitation to one friend if they are online.
func (p *Presence) Invite(friendId, roomCode, roomName, inviterName string) {
	p.SendTo(friendId, MakePacketFriendInvited(roomCode, roomName, inviterName))
}

// DirectMessage relays a chat line outside any room.
func (p *Presence) DirectMessage(senderId, recipientId, text string) {
	if senderId == "" || recipientId == "" || text == "" {
		return
	}
	p.SendTo(recipientId, MakePacketChatMessage(senderId, text))
}

func (p *Presence) notifyFriends(userId string, isOnline bool) {
	ctx, cancel := context.WithTimeout(context.Background(), friendLookupTimeout)
	defer cancel()

	friendIds, err := p.friends.ListFriendIDs(ctx, userId)
	if err != nil {
		slog.Error("list friends", "userId", userId, "error", err)
		return
	}

	packet := MakePacketFriendStatus(userId, isOnline)
	for _, friendId := range friendIds {
		p.SendTo(friendId, packet)
	}
}
