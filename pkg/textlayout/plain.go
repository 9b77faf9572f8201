package textlayout

import (
	"image/color"
	"strings"
)

// PlainWords splits text on whitespace into words of one color, keeping
// case and delimiters.
func PlainWords(text string, c color.NRGBA) []Word {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	words := make([]Word, len(fields))
	for i, f := range fields {
		words[i] = Word{Text: f, Color: c}
	}
	return words
}
