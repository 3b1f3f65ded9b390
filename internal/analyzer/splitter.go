package analyzer

import (
	"strings"
	"unicode/utf8"
)

// minLineRunes is the shortest line worth parsing. OCR output is littered
// with one- and two-character fragments that never carry a label and amount.
const minLineRunes = 3

// splitLines breaks raw OCR text into trimmed candidate lines, dropping
// blanks and fragments shorter than minLineRunes.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || utf8.RuneCountInString(line) < minLineRunes {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
