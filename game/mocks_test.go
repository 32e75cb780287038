package game

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Fearce02/Drawlio-sub000/domain"
)

// --- Conn recorder ---

// sentFrame is one decoded server packet as a connection saw it.
type sentFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (f sentFrame) String() string {
	return fmt.Sprintf("%s %s", f.Type, string(f.Data))
}

// ConnRecorder implements Conn and keeps everything sent through it.
type ConnRecorder struct {
	frames      []sentFrame
	pings       int
	closed      bool
	closeReason string
}

func (c *ConnRecorder) Send(data []byte) error {
	var f sentFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *ConnRecorder) Ping() error {
	c.pings++
	return nil
}

func (c *ConnRecorder) Close(reason string) {
	c.closed = true
	c.closeReason = reason
}

func (c *ConnRecorder) take() []sentFrame {
	frames := c.frames
	c.frames = nil
	return frames
}

func (c *ConnRecorder) takeTypes() []string {
	types := make([]string, 0, len(c.frames))
	for _, f := range c.frames {
		types = append(types, f.Type)
	}
	c.frames = nil
	return types
}

// lastOfType scans the recorded frames without consuming them.
func (c *ConnRecorder) lastOfType(packetType string) (json.RawMessage, bool) {
	for i := len(c.frames) - 1; i >= 0; i-- {
		if c.frames[i].Type == packetType {
			return c.frames[i].Data, true
		}
	}
	return nil, false
}

func decodeInto[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	assert.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func rawData(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	assert.NoError(t, err)
	return data
}

// --- WordSource ---

type MockWordSource struct {
	mock.Mock
}

func (m *MockWordSource) Generate(count int) []string {
	args := m.Called(count)
	return args.Get(0).([]string)
}

// --- RoomDeleter ---

type MockRoomDeleter struct {
	mock.Mock
}

func (m *MockRoomDeleter) Delete(code string) {
	m.Called(code)
}

// --- ResultSink ---

type MockResultSink struct {
	mock.Mock
}

func (m *MockResultSink) Record(result SessionResult) {
	m.Called(result)
}

// --- NetworkSession ---

type MockNetworkSession struct {
	mock.Mock
}

func (m *MockNetworkSession) Close(errCode string) {
	m.Called(errCode)
}

func (m *MockNetworkSession) Write(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockNetworkSession) Read() ([]byte, error) {
	args := m.Called()
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockNetworkSession) Ping() error {
	args := m.Called()
	return args.Error(0)
}

// --- FriendLister ---

type MockFriendLister struct {
	mock.Mock
}

func (m *MockFriendLister) ListFriendIDs(ctx context.Context, userId string) ([]string, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).([]string), args.Error(1)
}

// --- StatsStore ---

type MockStatsStore struct {
	mock.Mock
}

func (m *MockStatsStore) GetPlayerStats(ctx context.Context, userId string) (domain.PlayerStats, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).(domain.PlayerStats), args.Error(1)
}

func (m *MockStatsStore) ApplyGameResult(ctx context.Context, userId string, xpDelta int64, won bool) (domain.PlayerStats, error) {
	args := m.Called(ctx, userId, xpDelta, won)
	return args.Get(0).(domain.PlayerStats), args.Error(1)
}

// --- Notifier ---

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendTo(userId string, packet ServerPacket) {
	m.Called(userId, packet)
}

// --- PeriodicTickerChannelCreator ---

type MockPeriodicTickerChannelCreator struct {
	mock.Mock
}

func (m *MockPeriodicTickerChannelCreator) Create(duration time.Duration) <-chan time.Time {
	args := m.Called(duration)
	return args.Get(0).(chan time.Time)
}
