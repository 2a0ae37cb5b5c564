package ocr

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const untitled = "Untitled"

var (
	disallowedTitleChars = regexp.MustCompile(`[^\p{L}\p{N}_\s'-]`)
	whitespaceRun        = regexp.MustCompile(`\s+`)
)

// CleanTitle strips everything except word characters, spaces, hyphens and
// apostrophes, collapses whitespace and title-cases each word. Acronyms are
// lower-cased past their first letter.
func CleanTitle(s string) string {
	s = disallowedTitleChars.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return titleCase(strings.TrimSpace(s))
}

// TitleFromFilename derives a title from an uploaded file's name.
func TitleFromFilename(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	if base == "." || base == string(filepath.Separator) {
		return untitled
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	base = strings.TrimSpace(whitespaceRun.ReplaceAllString(base, " "))
	if base == "" {
		return untitled
	}
	return titleCase(base)
}

func titleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// truncate shortens s to limit runes, ending in "..." when cut.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
