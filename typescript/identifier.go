package typescript

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// reservedWords are the TypeScript reserved words from Appendix B of the
// language specification.
var reservedWords = func() map[string]bool {
	words := strings.Fields(`
		break case catch class const continue debugger default delete do
		else enum export extends false finally for function if implements
		import in instanceof interface let new null package private
		protected public return static super switch this throw true try
		type typeof var void while with yield`)
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}()

// escapeReservedWord appends an underscore to reserved words.
func escapeReservedWord(name string) string {
	if reservedWords[name] {
		return name + "_"
	}
	return name
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$'
}

// needsQuoting reports whether a property key must be written as a string
// literal.
func needsQuoting(name string) bool {
	if name == "" || reservedWords[name] {
		return true
	}
	first, _ := utf8.DecodeRuneInString(name)
	if unicode.IsDigit(first) {
		return true
	}
	return strings.IndexFunc(name, func(r rune) bool { return !isIdentRune(r) }) >= 0
}

// propertyKey returns name as an object or interface key, quoting it when
// it is not a plain identifier.
func propertyKey(name string) string {
	if needsQuoting(name) {
		return strconv.Quote(name)
	}
	return name
}

// sanitizeIdentifier makes name usable as a declaration name.
func sanitizeIdentifier(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	if first, _ := utf8.DecodeRuneInString(name); unicode.IsDigit(first) {
		b.WriteByte('_')
	}
	for _, r := range name {
		if isIdentRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return escapeReservedWord(b.String())
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}
