package domain

import "errors"

var (
	ErrUserNotFound         = errors.New("user-not-found")
	ErrDuplicateUsername    = errors.New("duplicate-username")
	UnexpectedDatabaseError = errors.New("unexpected-database-error")
)

type User struct {
	Id           string
	Username     string
	PasswordHash string
}

// PlayerStats is the durable per-account ledger. Everything derived from it
// (level, currentXP, xpToNextLevel, winRate) is computed in code.
type PlayerStats struct {
	UserId      string
	XP          int64
	GamesPlayed int
	GamesWon    int
	WinStreak   int
}

func (ps PlayerStats) WinRate() float64 {
	if ps.GamesPlayed == 0 {
		return 0
	}
	return float64(ps.GamesWon) / float64(ps.GamesPlayed)
}
