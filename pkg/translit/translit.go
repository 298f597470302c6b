// Package translit converts arbitrary media titles into safe ASCII
// filename tokens: Cyrillic is transliterated, accents are folded, and
// everything else is reduced to [A-Za-z0-9_-].
package translit

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// table maps lowercase Cyrillic (Russian plus the Ukrainian letters that
// differ) to Latin. Hard and soft signs map to nothing.
var table = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
	'ї': "yi", 'і': "i", 'ґ': "g", 'є': "ye",
}

var (
	separatorRuns = regexp.MustCompile(`[_\s]+`)
	unsafeChars   = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

const (
	maxTokenLen = 200
	fallback    = "video"
)

// Transliterate lowercases text, maps Cyrillic to Latin, folds accents on
// whatever remains, and drops characters that are neither alphanumeric nor
// one of space, underscore, hyphen. The result may still contain non-ASCII
// alphanumerics; Sanitize strips those.
func Transliterate(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if repl, ok := table[r]; ok {
			b.WriteString(repl)
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return removeAccents(b.String())
}

// Sanitize converts a title into a filename token. It transliterates,
// strips any remaining non-ASCII, collapses whitespace and underscore runs
// into single underscores, removes everything outside [A-Za-z0-9_-], trims
// leading and trailing separators, and caps the length at 200. The result
// is never empty: unusable input yields "video".
func Sanitize(name string) string {
	s := Transliterate(name)
	s = stripNonASCII(s)
	s = separatorRuns.ReplaceAllString(s, "_")
	s = unsafeChars.ReplaceAllString(s, "")
	s = strings.Trim(s, "_-")
	if len(s) > maxTokenLen {
		s = strings.Trim(s[:maxTokenLen], "_-")
	}
	if s == "" {
		return fallback
	}
	return s
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

func stripNonASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}
	return b.String()
}
