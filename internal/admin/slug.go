package admin

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	slugStrip = regexp.MustCompile(`[^\w\s-]`)
	slugDash  = regexp.MustCompile(`[-\s]+`)
)

// MaxSlugLength matches the categories.slug column.
const MaxSlugLength = 64

// cyrillic follows the admin prepopulate transliteration table.
var cyrillic = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "j", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "c", 'ч': "ch", 'ш': "sh", 'щ': "sh", 'ъ': "",
	'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
	'є': "ye", 'і': "i", 'ї': "yi", 'ґ': "g",
}

// Slugify converts s to an ASCII slug: Cyrillic is transliterated, accents
// are folded, anything that is not a letter, digit, underscore or hyphen is
// dropped, and runs of spaces or hyphens collapse to one hyphen.
func Slugify(s string) string {
	var latin strings.Builder
	for _, r := range strings.ToLower(s) {
		if t, ok := cyrillic[r]; ok {
			latin.WriteString(t)
		} else {
			latin.WriteRune(r)
		}
	}

	var b strings.Builder
	for _, r := range norm.NFKD.String(latin.String()) {
		if r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}

	out := strings.ToLower(b.String())
	out = slugStrip.ReplaceAllString(out, "")
	out = slugDash.ReplaceAllString(strings.TrimSpace(out), "-")
	out = strings.Trim(out, "-_")
	if len(out) > MaxSlugLength {
		out = strings.TrimRight(out[:MaxSlugLength], "-_")
	}
	return out
}
