package textlayout

import "strings"

// Line is one wrapped line of words with its measured width.
type Line struct {
	Words []Word  `json:"words"`
	Width float64 `json:"width"`
}

// Text returns the line as it reads on the canvas.
func (l Line) Text() string {
	return Plain(l.Words)
}

// unit is a run of attached words that wraps as one piece.
type unit struct {
	words []Word
	width float64
}

func units(words []Word, m Measurer) []unit {
	var us []unit
	for _, w := range words {
		if w.Attached && len(us) > 0 {
			u := &us[len(us)-1]
			u.words = append(u.words, w)
			continue
		}
		us = append(us, unit{words: []Word{w}})
	}
	for i := range us {
		us[i].width = m.Width(joinWords(us[i].words))
	}
	return us
}

func joinWords(ws []Word) string {
	var b strings.Builder
	for _, w := range ws {
		b.WriteString(w.Text)
	}
	return b.String()
}

// Wrap greedily breaks words into lines no wider than maxWidth. Widths come
// from m and include the separating space. A unit wider than maxWidth is
// placed alone on its own line, never split. Empty input yields one empty
// line.
func Wrap(words []Word, maxWidth float64, m Measurer) []Line {
	us := units(words, m)
	if len(us) == 0 {
		return []Line{{}}
	}
	space := m.Width(" ")

	var lines []Line
	cur := Line{}
	for _, u := range us {
		if len(cur.Words) == 0 {
			cur.Words = append(cur.Words, u.words...)
			cur.Width = u.width
			continue
		}
		next := cur.Width + space + u.width
		if next > maxWidth {
			lines = append(lines, cur)
			cur = Line{Words: append([]Word(nil), u.words...), Width: u.width}
			continue
		}
		cur.Words = append(cur.Words, u.words...)
		cur.Width = next
	}
	return append(lines, cur)
}

// WrapText is ParseMarkup followed by Wrap.
func WrapText(text string, p Palette, maxWidth float64, m Measurer) []Line {
	return Wrap(ParseMarkup(text, p), maxWidth, m)
}
