package vm

// ---------------------------------------------------------------------------
// Character: immediate character values
// ---------------------------------------------------------------------------
//
// Characters carry their code point in the bits above the character tag, so
// no registry is needed. Whitespace characters have names in reader syntax
// (#\space, #\newline, #\tab); everything else is written as #\ followed by
// the character itself.

// CharacterNames maps named character literals to their code points.
var CharacterNames = map[string]rune{
	"space":   ' ',
	"newline": '\n',
	"tab":     '\t',
}

var characterSpellings = map[rune]string{
	' ':  "space",
	'\n': "newline",
	'\t': "tab",
}

// CharacterLiteral returns the reader spelling of c without the #\ prefix.
func CharacterLiteral(c rune) string {
	if name, ok := characterSpellings[c]; ok {
		return name
	}
	return string(c)
}
