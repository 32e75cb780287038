package game

import (
	_ "embed"
	"math/rand/v2"
	"strings"
	"unicode"
)

// WordSource supplies candidate secret words. The postgres repo implements
// it against the words table; StaticWordBank is the embedded fallback.
type WordSource interface {
	Generate(count int) []string
}

//go:embed words.txt
var embeddedWords string

type StaticWordBank struct {
	words []string
}

func NewStaticWordBank() *StaticWordBank {
	lines := strings.Split(strings.TrimSpace(embeddedWords), "\n")
	words := make([]string, 0, len(lines))
	for _, line := range lines {
		word := strings.TrimSpace(line)
		if word != "" {
			words = append(words, word)
		}
	}
	return &StaticWordBank{words: words}
}

// Generate picks uniformly at random. Repeats across calls are possible.
func (b *StaticWordBank) Generate(count int) []string {
	picked := make([]string, 0, count)
	for i := 0; i < count; i++ {
		picked = append(picked, b.words[rand.IntN(len(b.words))])
	}
	return picked
}

// fallbackSource wraps a primary source and falls through to the embedded
// bank when the primary returns nothing (e.g. the words table is empty).
type fallbackSource struct {
	primary  WordSource
	fallback WordSource
}

func NewFallbackSource(primary WordSource) WordSource {
	return &fallbackSource{primary: primary, fallback: NewStaticWordBank()}
}

func (f *fallbackSource) Generate(count int) []string {
	words := f.primary.Generate(count)
	if len(words) >= count {
		return words
	}
	return f.fallback.Generate(count)
}

// maskWord reveals only the word's shape: letters become underscores,
// spaces and punctuation stay visible.
func maskWord(word string) string {
	var sb strings.Builder
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune('_')
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
