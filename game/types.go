package game

import (
	"errors"
	"time"
)

var (
	ErrRoomNotFound      = errors.New("room-not-found")
	ErrRoomFull          = errors.New("room-full")
	ErrIncorrectPassword = errors.New("incorrect-password")
	ErrRoomClosed        = errors.New("room-closed")
	ErrInvalidIdentifier = errors.New("invalid-identifier")
	ErrAlreadyInRoom     = errors.New("already-in-room")
)

// Conn is the transport seam the room writes through. A nil Conn on a member
// means the player is disconnected mid-session; delivery is then skipped.
type Conn interface {
	Send(data []byte) error
	Ping() error
	Close(reason string)
}

// Settings is replaced wholesale by the host and broadcast on every change.
type Settings struct {
	MaxPlayers           int    `json:"maxPlayers"`
	TotalRounds          int    `json:"totalRounds"`
	RoundDurationSeconds int    `json:"roundDurationSeconds"`
	IsPrivate            bool   `json:"isPrivate"`
	Password             string `json:"password,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{
		MaxPlayers:           8,
		TotalRounds:          3,
		RoundDurationSeconds: 80,
	}
}

var (
	allowedMaxPlayers     = map[int]bool{2: true, 4: true, 6: true, 8: true, 10: true, 12: true}
	allowedRoundDurations = map[int]bool{30: true, 60: true, 80: true, 100: true, 120: true}
)

func (s Settings) Valid() bool {
	return allowedMaxPlayers[s.MaxPlayers] &&
		s.TotalRounds >= 1 && s.TotalRounds <= 5 &&
		allowedRoundDurations[s.RoundDurationSeconds]
}

// Member is room-scoped player state. The identifier doubles as the stable
// key across reconnects; UserId is set only for authenticated accounts.
type Member struct {
	Identifier             string
	UserId                 string
	Score                  int
	WordsGuessedCorrectly  int
	WordsDrawnSuccessfully int

	conn Conn
}

func (m *Member) Connected() bool {
	return m.conn != nil
}

type GameSession struct {
	IsActive          bool
	CurrentRound      int
	DrawerIndex       int
	CurrentWord       string
	TurnStartedAt     time.Time
	TotalTurnsElapsed int

	GuessedThisTurn map[string]struct{}
	PlayAgainVotes  map[string]struct{}
}

// PlayerResult is one line of the record emitted at session end for XP/stat
// accrual. Guests carry an empty UserId and are skipped by the recorder.
type PlayerResult struct {
	Identifier             string
	UserId                 string
	Score                  int
	WordsGuessedCorrectly  int
	WordsDrawnSuccessfully int
	Won                    bool
}

type SessionResult struct {
	RoomCode    string
	TotalTurns  int
	TotalRounds int
	Players     []PlayerResult
}
