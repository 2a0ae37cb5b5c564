package ocr

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxTitleLines  = 5
	minLineLength  = 5
	minTitleLength = 5
	maxTitleLength = 100
)

var noiseLine = regexp.MustCompile(`^[\p{N}\p{P}\p{S}\s]+$`)

// ExtractTitle picks a title from OCR text, falling back to the filename when
// the text is blank or nothing in it looks like a title.
func (a *Analyzer) ExtractTitle(text, filename string) string {
	if strings.TrimSpace(text) == "" {
		return TitleFromFilename(filename)
	}

	lines := splitLines(text)

	for i, line := range lines {
		if i >= maxTitleLines {
			break
		}
		if runeLen(line) < minLineLength || noiseLine.MatchString(line) {
			continue
		}
		for _, re := range a.titlePatterns {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			title := CleanTitle(m[1])
			if n := runeLen(title); n >= minTitleLength && n < maxTitleLength {
				return title
			}
		}
	}

	for _, line := range lines {
		if looksLikeTitle(line) {
			return CleanTitle(line)
		}
	}

	return TitleFromFilename(filename)
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// looksLikeTitle is the heuristic used when no title pattern matched.
func looksLikeTitle(line string) bool {
	n := runeLen(line)
	if n < minTitleLength || n > maxTitleLength {
		return false
	}

	first := []rune(line)[0]
	if !unicode.IsUpper(first) {
		return false
	}

	var letters, spaces, digits int
	for _, r := range line {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsSpace(r):
			spaces++
		case unicode.IsDigit(r):
			digits++
		}
	}

	if digits*2 >= n {
		return false
	}
	if float64(letters+spaces) < 0.6*float64(n) {
		return false
	}

	return alphabeticWords(line) >= 2
}

func alphabeticWords(line string) int {
	count := 0
	for _, w := range strings.Fields(line) {
		if isAlphabeticWord(w) {
			count++
		}
	}
	return count
}

func isAlphabeticWord(w string) bool {
	hasLetter := false
	for _, r := range w {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case r == '\'' || r == '-':
		default:
			return false
		}
	}
	return hasLetter
}
