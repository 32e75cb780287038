package game

// XP awards per finished session.
const (
	XPGameCompleted         = 50
	XPGameWon               = 100
	XPWordGuessedCorrectly  = 10
	XPWordDrawnSuccessfully = 15
	XPPerfectGameBonus      = 50
	XPWinStreakBonus        = 25
)

// levelThresholds[i] is the cumulative XP required to reach level i+1.
// Beyond the table, each level costs another xpPerExtraLevel.
var levelThresholds = []int64{0, 100, 250, 450, 700, 1000, 1350, 1750, 2200, 2700}

const xpPerExtraLevel = 600

type SessionXPContext struct {
	Won              bool
	WinStreak        int // streak length including this session's result
	TotalWordsInGame int
	Perfect          bool
}

// ComputeSessionXP turns one player's per-session counters into an XP delta.
func ComputeSessionXP(result PlayerResult, sessionCtx SessionXPContext) int64 {
	xp := int64(XPGameCompleted)

	if sessionCtx.Won {
		xp += XPGameWon
	}

	xp += int64(XPWordGuessedCorrectly) * int64(result.WordsGuessedCorrectly)
	xp += int64(XPWordDrawnSuccessfully) * int64(result.WordsDrawnSuccessfully)

	if sessionCtx.Perfect && result.WordsGuessedCorrectly == sessionCtx.TotalWordsInGame {
		xp += XPPerfectGameBonus
	}

	if sessionCtx.Won && sessionCtx.WinStreak > 1 {
		xp += int64(XPWinStreakBonus) * int64(sessionCtx.WinStreak-1)
	}

	return xp
}

// LevelForXP maps cumulative XP to a level, starting at 1.
func LevelForXP(xp int64) int {
	level := 1
	for i := 1; i < len(levelThresholds); i++ {
		if xp >= levelThresholds[i] {
			level = i + 1
		}
	}

	if level == len(levelThresholds) {
		extra := xp - levelThresholds[len(levelThresholds)-1]
		level += int(extra / xpPerExtraLevel)
	}

	return level
}

// LevelProgress returns the XP offset inside the current level band and the
// XP still needed to reach the next level.
func LevelProgress(xp int64) (currentXP int64, xpToNextLevel int64) {
	level := LevelForXP(xp)

	floor := levelFloor(level)
	ceiling := levelFloor(level + 1)

	return xp - floor, ceiling - xp
}

func levelFloor(level int) int64 {
	if level <= 1 {
		return 0
	}
	if level <= len(levelThresholds) {
		return levelThresholds[level-1]
	}
	extraLevels := int64(level - len(levelThresholds))
	return levelThresholds[len(levelThresholds)-1] + extraLevels*xpPerExtraLevel
}
