// Package textlayout turns marked-up headline text into colored word runs,
// wraps them greedily against a pixel budget using real glyph metrics, and
// draws the resulting lines word by word.
package textlayout

import (
	"fmt"
	"image/color"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Word is a colored word run, the atomic unit of layout.
// Attached words follow the previous word with no space and wrap with it.
type Word struct {
	Text     string      `json:"text"`
	Color    color.NRGBA `json:"color"`
	Attached bool        `json:"attached,omitempty"`
}

// Palette resolves the colors of the two delimiter kinds. A delimiter whose
// toggle is off renders in Base.
type Palette struct {
	Base          color.NRGBA
	Bracket       color.NRGBA // [...]
	BracketAccent bool
	Brace         color.NRGBA // {...}
	BraceAccent   bool
}

type segment struct {
	text  string
	color color.NRGBA
}

// ParseMarkup splits text on [...] and {...} runs, colors each run by the
// palette, uppercases every word and returns the flattened word list.
// Delimiters never nest: inside a run the other delimiter is literal text.
// An unclosed opener is literal text too.
func ParseMarkup(text string, p Palette) []Word {
	var words []Word
	// glue is true when the previous segment ended mid-word.
	glue := false
	for _, seg := range splitSegments(text, p) {
		if seg.text == "" {
			continue
		}
		first, _ := utf8.DecodeRuneInString(seg.text)
		startsSpace := unicode.IsSpace(first)
		fields := strings.Fields(seg.text)
		for i, f := range fields {
			words = append(words, Word{
				Text:     strings.ToUpper(f),
				Color:    seg.color,
				Attached: i == 0 && glue && !startsSpace && len(words) > 0,
			})
		}
		last, _ := utf8.DecodeLastRuneInString(seg.text)
		glue = len(fields) > 0 && !unicode.IsSpace(last)
	}
	return words
}

// splitSegments cuts text into base and delimited segments.
func splitSegments(text string, p Palette) []segment {
	var segs []segment
	var plain strings.Builder

	flush := func() {
		if plain.Len() > 0 {
			segs = append(segs, segment{text: plain.String(), color: p.Base})
			plain.Reset()
		}
	}

	for i := 0; i < len(text); {
		c := text[i]
		if c != '[' && c != '{' {
			plain.WriteByte(c)
			i++
			continue
		}
		closer := byte(']')
		col, on := p.Bracket, p.BracketAccent
		if c == '{' {
			closer = '}'
			col, on = p.Brace, p.BraceAccent
		}
		end := strings.IndexByte(text[i+1:], closer)
		if end < 0 {
			plain.WriteByte(c)
			i++
			continue
		}
		flush()
		if !on {
			col = p.Base
		}
		segs = append(segs, segment{text: text[i+1 : i+1+end], color: col})
		i += end + 2
	}
	flush()
	return segs
}

// MarkupIssues describes delimiters that will render literally: unclosed
// openers, stray closers and delimiters nested inside a run.
func MarkupIssues(text string) []string {
	var issues []string
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case ']', '}':
			issues = append(issues, fmt.Sprintf("stray %q at byte %d", c, i))
		case '[', '{':
			end := strings.IndexByte(text[i+1:], closerOf(c))
			if end < 0 {
				issues = append(issues, fmt.Sprintf("unclosed %q at byte %d renders literally", c, i))
				continue
			}
			inner := text[i+1 : i+1+end]
			if j := strings.IndexAny(inner, "[]{}"); j >= 0 {
				issues = append(issues, fmt.Sprintf("nested %q at byte %d renders literally", inner[j], i+1+j))
			}
			i += end + 1
		}
	}
	return issues
}

func closerOf(c byte) byte {
	if c == '{' {
		return '}'
	}
	return ']'
}

// Plain returns text with delimiters removed, uppercased, as it will read
// on the canvas.
func Plain(words []Word) string {
	var b strings.Builder
	for i, w := range words {
		if i > 0 && !w.Attached {
			b.WriteByte(' ')
		}
		b.WriteString(w.Text)
	}
	return b.String()
}
