package game

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var (
	ErrConnClosed     = errors.New("connection-closed")
	ErrSendBufferFull = errors.New("send-buffer-full")
)

// client couples one websocket to its write pump and room binding. It is
// the Conn a room and the presence layer deliver through.
type client struct {
	// id tags log lines for one socket's lifetime; it has no protocol role.
	id      string
	session NetworkSession

	sendChan  chan []byte
	pingChan  chan struct{}
	closed    chan struct{}
	closeOnce sync.Once

	limiter *rate.Limiter

	// Bound by the gateway on the read goroutine; the room never reads
	// these, it keys members by Conn identity.
	userId     string
	identifier string
	room       *Room
}

func newClient(session NetworkSession) *client {
	return &client{
		id:       uuid.NewString(),
		session:  session,
		sendChan: make(chan []byte, 256),
		pingChan: make(chan struct{}, 1),
		closed:   make(chan struct{}),
		limiter:  rate.NewLimiter(25, 50),
	}
}

// Send enqueues for the write pump. A consumer too slow to drain its buffer
// loses packets rather than stalling the room.
func (c *client) Send(data []byte) error {
	select {
	case <-c.closed:
		return ErrConnClosed
	default:
	}

	select {
	case c.sendChan <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (c *client) Ping() error {
	select {
	case <-c.closed:
		return ErrConnClosed
	case c.pingChan <- struct{}{}:
		return nil
	default:
		return nil
	}
}

func (c *client) Close(reason string) {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.session.Close(reason)
	})
}

// WritePump owns all writes to the underlying socket.
func (c *client) WritePump() {
	for {
		select {
		case data := <-c.sendChan:
			if err := c.session.Write(data); err != nil {
				c.Close("write-failed")
				return
			}
		case <-c.pingChan:
			if err := c.session.Ping(); err != nil {
				c.Close("ping-failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

// ReadPump decodes inbound frames and hands them to the gateway's dispatch.
// Returns when the socket dies or the rate limiter is exhausted.
func (c *client) ReadPump(dispatch func(c *client, packet ClientPacket)) {
	for {
		data, err := c.session.Read()
		if err != nil {
			return
		}

		if !c.limiter.Allow() {
			c.Close("rate-limit-exceeded")
			return
		}

		var packet ClientPacket
		if err := json.Unmarshal(data, &packet); err != nil {
			continue
		}

		dispatch(c, packet)
	}
}
