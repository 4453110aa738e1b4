package patient

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const idPrefixLen = 4

// GenerateID derives a patient identifier: the first four characters of the
// trimmed, upper-cased name padded with 'X', followed by the text of dob before
// its first '-'. Distinct patients can collide; collisions are rejected on create.
//
// Upper-casing uses full Unicode case mapping, so one character may expand
// ("ß" becomes "SS") before the prefix is cut.
func GenerateID(name, dob string) string {
	upper := cases.Upper(language.Und).String(strings.TrimSpace(name))

	prefix := []rune(upper)
	if len(prefix) > idPrefixLen {
		prefix = prefix[:idPrefixLen]
	}

	var b strings.Builder
	b.WriteString(string(prefix))
	for i := len(prefix); i < idPrefixLen; i++ {
		b.WriteByte('X')
	}
	b.WriteString(birthYear(dob))

	return b.String()
}

func birthYear(dob string) string {
	year, _, _ := strings.Cut(dob, "-")
	return year
}
