package subtitle

import (
	"strings"
	"unicode/utf8"
)

// LineWrapper breaks cue text into at most two balanced lines
type LineWrapper struct {
	MaxCharsPerLine int
}

func NewLineWrapper() *LineWrapper {
	return &LineWrapper{
		MaxCharsPerLine: 42, // Standard subtitle line length
	}
}

// collapses whitespace and splits long text at the word closest to the middle
func (w *LineWrapper) Wrap(text string) string {
	words := strings.Fields(text)
	text = strings.Join(words, " ")
	runeCount := utf8.RuneCountInString(text)

	// if text fits on one line, return as is
	if runeCount <= w.MaxCharsPerLine || len(words) < 2 {
		return text
	}

	middle := runeCount / 2
	bestSplit := 0
	bestDiff := runeCount

	currentLen := 0
	for i, word := range words[:len(words)-1] {
		currentLen += utf8.RuneCountInString(word)
		if i > 0 {
			currentLen++ // space
		}

		diff := abs(currentLen - middle)
		if diff < bestDiff {
			bestDiff = diff
			bestSplit = i + 1
		}
	}

	if bestSplit > 0 && bestSplit < len(words) {
		line1 := strings.Join(words[:bestSplit], " ")
		line2 := strings.Join(words[bestSplit:], " ")
		return line1 + "\n" + line2
	}

	return text
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
