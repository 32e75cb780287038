package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticWordBank_Generate(t *testing.T) {
	t.Parallel()

	bank := NewStaticWordBank()
	words := bank.Generate(5)

	assert.Len(t, words, 5)
	for _, w := range words {
		assert.NotEmpty(t, w)
	}
}

func TestFallbackSource_UsesPrimaryWhenItDelivers(t *testing.T) {
	t.Parallel()

	primary := &MockWordSource{}
	primary.On("Generate", 1).Return([]string{"primary-word"}).Once()

	source := NewFallbackSource(primary)

	assert.Equal(t, []string{"primary-word"}, source.Generate(1))
	primary.AssertExpectations(t)
}

func TestFallbackSource_FallsBackOnEmptyPrimary(t *testing.T) {
	t.Parallel()

	primary := &MockWordSource{}
	primary.On("Generate", 1).Return([]string{}).Once()

	source := NewFallbackSource(primary)

	words := source.Generate(1)
	assert.Len(t, words, 1)
	assert.NotEmpty(t, words[0])
	primary.AssertExpectations(t)
}

func TestMaskWord(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		word     string
		expected string
	}{
		{word: "cat", expected: "___"},
		{word: "ice cream", expected: "___ _____"},
		{word: "jack-o-lantern", expected: "____-_-_______"},
		{word: "r2d2", expected: "____"},
		{word: "", expected: ""},
	}

	for _, tC := range testCases {
		assert.Equal(t, tC.expected, maskWord(tC.word), "word=%q", tC.word)
	}
}
