package game

import (
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
	"time"
)

// PeriodicTickerChannelCreator abstracts time.Tick so the sweep loop can be
// driven manually in tests.
type PeriodicTickerChannelCreator interface {
	Create(duration time.Duration) <-chan time.Time
}

type RealTickerCreator struct{}

func (RealTickerCreator) Create(duration time.Duration) <-chan time.Time {
	return time.NewTicker(duration).C
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var roomCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// Registry owns the room-code → room map. Rooms come into being on the
// first join to an unknown code and remove themselves via Delete when they
// tear down.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	words         WordSource
	results       ResultSink
	tickerCreator PeriodicTickerChannelCreator
}

func NewRegistry(words WordSource, results ResultSink, tickerCreator PeriodicTickerChannelCreator) *Registry {
	return &Registry{
		rooms:         make(map[string]*Room),
		words:         words,
		results:       results,
		tickerCreator: tickerCreator,
	}
}

// NormalizeCode canonicalizes a client-supplied room code. Codes are shared
// out of band, so case differences must not split a room in two.
func NormalizeCode(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	return code, roomCodePattern.MatchString(code)
}

// NewCode mints a code that is not currently in use.
func (reg *Registry) NewCode() string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	for {
		var sb strings.Builder
		for i := 0; i < 6; i++ {
			sb.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
		}
		code := sb.String()
		if _, taken := reg.rooms[code]; !taken {
			return code
		}
	}
}

// GetOrCreate returns the room for the code, spinning up a fresh one (and
// its goroutine) when none exists.
func (reg *Registry) GetOrCreate(code string) (*Room, error) {
	code, ok := NormalizeCode(code)
	if !ok {
		return nil, ErrRoomNotFound
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if room, exists := reg.rooms[code]; exists && !room.Closed() {
		return room, nil
	}

	room := NewRoom(code, reg, reg.words, reg.results)
	reg.rooms[code] = room
	go room.Run()
	slog.Info("room created", "room", code)
	return room, nil
}

// Get returns an existing room or ErrRoomNotFound; it never creates.
func (reg *Registry) Get(code string) (*Room, error) {
	code, ok := NormalizeCode(code)
	if !ok {
		return nil, ErrRoomNotFound
	}

	reg.mu.RLock()
	defer reg.mu.RUnlock()

	room, exists := reg.rooms[code]
	if !exists || room.Closed() {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func (reg *Registry) Exists(code string) bool {
	_, err := reg.Get(code)
	return err == nil
}

// Delete drops the code from the map. Called by the room itself during
// teardown; safe to call for codes already gone.
func (reg *Registry) Delete(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, code)
}

// Sweep pings every room's members periodically and reaps map entries whose
// room closed without managing to call Delete. Runs until the process exits.
func (reg *Registry) Sweep(started chan struct{}) {
	pingTicker := reg.tickerCreator.Create(30 * time.Second)
	reapTicker := reg.tickerCreator.Create(time.Minute)

	close(started)

	for {
		select {
		case <-pingTicker:
			for _, room := range reg.snapshot() {
				room.Ping()
			}
		case <-reapTicker:
			reg.reapClosed()
		}
	}
}

func (reg *Registry) snapshot() []*Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (reg *Registry) reapClosed() {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for code, room := range reg.rooms {
		if room.Closed() {
			delete(reg.rooms, code)
			slog.Debug("reaped closed room", "room", code)
		}
	}
}
