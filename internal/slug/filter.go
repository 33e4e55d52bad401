package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	defaultSeparatorConstant = "-"
)

// Filter transliterates free text into lower-case ASCII tokens joined by a separator.
type Filter struct {
	separator string
}

// NewFilter constructs a Filter. An empty separator selects "-".
func NewFilter(separator string) *Filter {
	trimmedSeparator := strings.TrimSpace(separator)
	if len(trimmedSeparator) == 0 {
		trimmedSeparator = defaultSeparatorConstant
	}
	return &Filter{separator: trimmedSeparator}
}

// Slug decomposes accented characters, drops combining marks, lower-cases the text,
// and collapses every run of characters outside [a-z0-9] into one separator.
// Letters with no Latin decomposition, such as Cyrillic, Han, ß or Ł, count as separators,
// so text without any Latin letters or digits yields "".
func (filter *Filter) Slug(text string) string {
	separator := defaultSeparatorConstant
	if filter != nil && len(filter.separator) > 0 {
		separator = filter.separator
	}

	stripMarks := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	transliterated, _, transformError := transform.String(stripMarks, text)
	if transformError != nil {
		transliterated = text
	}

	var builder strings.Builder
	pendingSeparator := false
	for _, character := range strings.ToLower(transliterated) {
		if isSlugCharacter(character) {
			if pendingSeparator && builder.Len() > 0 {
				builder.WriteString(separator)
			}
			pendingSeparator = false
			builder.WriteRune(character)
			continue
		}
		pendingSeparator = true
	}

	return builder.String()
}

func isSlugCharacter(character rune) bool {
	return (character >= 'a' && character <= 'z') || (character >= '0' && character <= '9')
}
