package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestRegistry() *Registry {
	words := &MockWordSource{}
	words.On("Generate", 1).Return([]string{"word"}).Maybe()
	return NewRegistry(words, nil, RealTickerCreator{})
}

func TestNormalizeCode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in    string
		out   string
		valid bool
	}{
		{in: "abc123", out: "ABC123", valid: true},
		{in: "  XYZ789 ", out: "XYZ789", valid: true},
		{in: "ABC12", valid: false},
		{in: "ABC1234", valid: false},
		{in: "ABC-12", valid: false},
		{in: "", valid: false},
	}

	for _, tC := range testCases {
		code, ok := NormalizeCode(tC.in)
		assert.Equal(t, tC.valid, ok, "in=%q", tC.in)
		if tC.valid {
			assert.Equal(t, tC.out, code)
		}
	}
}

func TestRegistry_GetOrCreateIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	r1, err := reg.GetOrCreate("abc123")
	assert.NoError(t, err)
	r2, err := reg.GetOrCreate("ABC123")
	assert.NoError(t, err)

	assert.Same(t, r1, r2)
}

func TestRegistry_GetOrCreateRejectsMalformedCodes(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()
	_, err := reg.GetOrCreate("not a code")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRegistry_GetNeverCreates(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	_, err := reg.Get("ABC123")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.False(t, reg.Exists("ABC123"))

	_, err = reg.GetOrCreate("ABC123")
	assert.NoError(t, err)
	assert.True(t, reg.Exists("ABC123"))
}

func TestRegistry_NewCodeShape(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()
	for i := 0; i < 50; i++ {
		code, ok := NormalizeCode(reg.NewCode())
		assert.True(t, ok, "generated code %q is not joinable", code)
	}
}

func TestRegistry_RoomRemovesItselfWhenLastMemberLeaves(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	room, err := reg.GetOrCreate("ABC123")
	assert.NoError(t, err)

	conn := &ConnRecorder{}
	assert.NoError(t, room.RequestJoin("ayumi", "", "", conn))

	room.Deliver(ClientPacket{Type: PacketLeaveLobby}, conn)

	assert.Eventually(t, func() bool {
		return !reg.Exists("ABC123") && room.Closed()
	}, time.Second, 5*time.Millisecond)
}

func TestRegistry_SweepReapsClosedRooms(t *testing.T) {
	t.Parallel()

	tickers := &MockPeriodicTickerChannelCreator{}
	pingCh := make(chan time.Time)
	reapCh := make(chan time.Time)
	tickers.On("Create", 30*time.Second).Return(pingCh)
	tickers.On("Create", time.Minute).Return(reapCh)

	words := &MockWordSource{}
	reg := NewRegistry(words, nil, tickers)

	// A room that died without managing to deregister itself.
	room := NewRoom("ABC123", reg, words, nil)
	close(room.done)
	reg.rooms["ABC123"] = room

	started := make(chan struct{})
	go reg.Sweep(started)
	<-started

	reapCh <- time.Now()

	assert.Eventually(t, func() bool {
		reg.mu.RLock()
		defer reg.mu.RUnlock()
		_, present := reg.rooms["ABC123"]
		return !present
	}, time.Second, 5*time.Millisecond)
	tickers.AssertExpectations(t)
}

func TestRegistry_JoinAfterCloseFails(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	room, err := reg.GetOrCreate("ABC123")
	assert.NoError(t, err)

	conn := &ConnRecorder{}
	assert.NoError(t, room.RequestJoin("ayumi", "", "", conn))
	room.Deliver(ClientPacket{Type: PacketLeaveLobby}, conn)

	assert.Eventually(t, room.Closed, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, room.RequestJoin("ren", "", "", &ConnRecorder{}), ErrRoomClosed)
}
