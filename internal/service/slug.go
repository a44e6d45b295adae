package service

import (
	"strings"

	"github.com/gosimple/slug"
)

// NoteSlugMaxLength limits stored note slugs.
const NoteSlugMaxLength = 100

// russianTranslit 俄文转写表（я→ya, х→h, щ→sch），先于 unidecode 应用。
var russianTranslit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d",
	'е': "e", 'ё': "yo", 'ж': "zh", 'з': "z", 'и': "i",
	'й': "j", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t",
	'у': "u", 'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch",
	'ш': "sh", 'щ': "sch", 'ъ': "", 'ы': "y", 'ь': "",
	'э': "e", 'ю': "yu", 'я': "ya",
}

// Slugify transliterates title to a lowercase ASCII slug cut to NoteSlugMaxLength.
func Slugify(title string) string {
	latin := slug.SubstituteRune(strings.ToLower(strings.TrimSpace(title)), russianTranslit)
	generated := slug.Make(latin)
	if len(generated) > NoteSlugMaxLength {
		generated = generated[:NoteSlugMaxLength]
	}
	return generated
}

// ValidSlug reports whether value contains only letters, digits, underscores and hyphens.
func ValidSlug(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
