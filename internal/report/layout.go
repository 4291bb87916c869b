package report

import "strings"

// Sanitize flattens line breaks and tabs to spaces and keeps only printable
// 7-bit ASCII, which is all the built-in Helvetica encoding renders reliably.
func Sanitize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", " ")
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteByte(' ')
		case r >= 0x20 && r < 0x7f:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Wrap packs words greedily into lines no wider than maxWidth as reported by
// measure. A word wider than a whole line is split by characters.
func Wrap(text string, maxWidth float64, measure func(string) float64) []string {
	var (
		lines []string
		line  string
	)
	for _, word := range strings.Fields(text) {
		for _, piece := range splitWide(word, maxWidth, measure) {
			candidate := piece
			if line != "" {
				candidate = line + " " + piece
			}
			if measure(candidate) <= maxWidth {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			line = piece
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

func splitWide(word string, maxWidth float64, measure func(string) float64) []string {
	if measure(word) <= maxWidth {
		return []string{word}
	}
	var (
		pieces  []string
		current []rune
	)
	for _, r := range word {
		next := append(current, r)
		if len(current) > 0 && measure(string(next)) > maxWidth {
			pieces = append(pieces, string(current))
			current = []rune{r}
			continue
		}
		current = next
	}
	if len(current) > 0 {
		pieces = append(pieces, string(current))
	}
	return pieces
}
