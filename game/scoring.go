package game

import "time"

// scoreForGuess maps how fast a correct guess landed to points. Tiers are
// fixed absolute amounts of remaining time, not proportional to the
// configured round duration.
func scoreForGuess(elapsed time.Duration, roundDuration time.Duration) int {
	remaining := roundDuration - elapsed

	switch {
	case remaining > 50*time.Second:
		return 100
	case remaining > 30*time.Second:
		return 70
	case remaining > 10*time.Second:
		return 40
	default:
		return 20
	}
}
