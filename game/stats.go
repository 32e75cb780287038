package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/Fearce02/Drawlio-sub000/domain"
)

// StatsStore is the persistence surface for per-account progression.
type StatsStore interface {
	GetPlayerStats(ctx context.Context, userId string) (domain.PlayerStats, error)
	ApplyGameResult(ctx context.Context, userId string, xpDelta int64, won bool) (domain.PlayerStats, error)
}

// Notifier pushes a packet to a user's out-of-room connection.
type Notifier interface {
	SendTo(userId string, packet ServerPacket)
}

const recordTimeout = 10 * time.Second

// StatsRecorder consumes session results and turns them into XP and stat
// updates. Work happens off the room's goroutine; a room never waits on the
// database.
type StatsRecorder struct {
	store    StatsStore
	notifier Notifier
}

func NewStatsRecorder(store StatsStore, notifier Notifier) *StatsRecorder {
	return &StatsRecorder{store: store, notifier: notifier}
}

func (rec *StatsRecorder) Record(result SessionResult) {
	go rec.record(result)
}

func (rec *StatsRecorder) record(result SessionResult) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	for _, player := range result.Players {
		if player.UserId == "" {
			// Guests play for fun, not for the ledger.
			continue
		}
		rec.recordPlayer(ctx, result, player)
	}
}

func (rec *StatsRecorder) recordPlayer(ctx context.Context, result SessionResult, player PlayerResult) {
	before, err := rec.store.GetPlayerStats(ctx, player.UserId)
	if err != nil {
		slog.Error("load player stats", "userId", player.UserId, "room", result.RoomCode, "error", err)
		return
	}

	streak := 0
	if player.Won {
		streak = before.WinStreak + 1
	}

	// Each player drew once per round in a full rotation, so the words they
	// could have guessed are the remaining turns.
	guessable := result.TotalTurns - result.TotalRounds
	if guessable < 0 {
		guessable = 0
	}

	xpDelta := ComputeSessionXP(player, SessionXPContext{
		Won:              player.Won,
		WinStreak:        streak,
		TotalWordsInGame: guessable,
		Perfect:          guessable > 0 && player.WordsGuessedCorrectly == guessable,
	})

	after, err := rec.store.ApplyGameResult(ctx, player.UserId, xpDelta, player.Won)
	if err != nil {
		slog.Error("apply game result", "userId", player.UserId, "room", result.RoomCode, "error", err)
		return
	}

	levelBefore := LevelForXP(before.XP)
	levelAfter := LevelForXP(after.XP)
	currentXP, toNext := LevelProgress(after.XP)

	rec.notifier.SendTo(player.UserId, MakePacketStatsUpdated(StatsUpdatedData{
		XPDelta:       xpDelta,
		XP:            after.XP,
		Level:         levelAfter,
		CurrentXP:     currentXP,
		XPToNextLevel: toNext,
		LevelUp:       levelAfter > levelBefore,
		GamesPlayed:   after.GamesPlayed,
		GamesWon:      after.GamesWon,
		WinRate:       after.WinRate(),
		WinStreak:     after.WinStreak,
	}))

	slog.Info("recorded game result",
		"userId", player.UserId,
		"room", result.RoomCode,
		"xpDelta", xpDelta,
		"won", player.Won,
	)
}
