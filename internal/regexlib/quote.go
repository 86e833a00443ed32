package regexlib

import "strings"

func isRegexSpecial(c byte) bool {
	switch c {
	case '\\', '+', '*', '?', '^', '$', '(', ')', '[', ']', '{', '}', '.', '|':
		return true
	}
	return false
}

// QuoteRegex escapes every metacharacter in s so the result matches s
// literally. Bytes >= 0x80 are copied as is.
func QuoteRegex(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if isRegexSpecial(s[i]) {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
