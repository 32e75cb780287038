package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeSessionXP(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc       string
		result     PlayerResult
		sessionCtx SessionXPContext
		expected   int64
	}{
		{
			desc:     "a loss with nothing guessed still pays the completion award",
			result:   PlayerResult{},
			expected: 50,
		},
		{
			desc:       "a plain win",
			result:     PlayerResult{Won: true},
			sessionCtx: SessionXPContext{Won: true, WinStreak: 1},
			expected:   150,
		},
		{
			desc:     "guesses and successful draws stack",
			result:   PlayerResult{WordsGuessedCorrectly: 3, WordsDrawnSuccessfully: 2},
			expected: 50 + 30 + 30,
		},
		{
			desc:       "a second consecutive win pays one streak bonus",
			result:     PlayerResult{Won: true},
			sessionCtx: SessionXPContext{Won: true, WinStreak: 2},
			expected:   50 + 100 + 25,
		},
		{
			desc:       "a fourth consecutive win pays three streak bonuses",
			result:     PlayerResult{Won: true},
			sessionCtx: SessionXPContext{Won: true, WinStreak: 4},
			expected:   50 + 100 + 75,
		},
		{
			desc:       "guessing every word pays the perfect bonus",
			result:     PlayerResult{WordsGuessedCorrectly: 6},
			sessionCtx: SessionXPContext{TotalWordsInGame: 6, Perfect: true},
			expected:   50 + 60 + 50,
		},
		{
			desc:       "the perfect flag alone is not enough",
			result:     PlayerResult{WordsGuessedCorrectly: 5},
			sessionCtx: SessionXPContext{TotalWordsInGame: 6, Perfect: true},
			expected:   50 + 50,
		},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.expected, ComputeSessionXP(tC.result, tC.sessionCtx))
		})
	}
}

func TestLevelForXP(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		xp       int64
		expected int
	}{
		{xp: 0, expected: 1},
		{xp: 99, expected: 1},
		{xp: 100, expected: 2},
		{xp: 249, expected: 2},
		{xp: 250, expected: 3},
		{xp: 2700, expected: 10},
		{xp: 3299, expected: 10},
		{xp: 3300, expected: 11},
		{xp: 3900, expected: 12},
	}

	for _, tC := range testCases {
		assert.Equal(t, tC.expected, LevelForXP(tC.xp), "xp=%d", tC.xp)
	}
}

func TestLevelProgress(t *testing.T) {
	t.Parallel()

	current, toNext := LevelProgress(0)
	assert.Equal(t, int64(0), current)
	assert.Equal(t, int64(100), toNext)

	current, toNext = LevelProgress(130)
	assert.Equal(t, int64(30), current)
	assert.Equal(t, int64(120), toNext)

	// Past the threshold table, every level is a fixed step.
	current, toNext = LevelProgress(2700)
	assert.Equal(t, int64(0), current)
	assert.Equal(t, int64(600), toNext)

	current, toNext = LevelProgress(3350)
	assert.Equal(t, int64(50), current)
	assert.Equal(t, int64(550), toNext)
}

func TestLevelNeverDecreasesWithXP(t *testing.T) {
	t.Parallel()

	prev := 0
	for xp := int64(0); xp <= 10000; xp += 37 {
		level := LevelForXP(xp)
		assert.GreaterOrEqual(t, level, prev)
		prev = level
	}
}
