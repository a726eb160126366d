package domain

import "unicode/utf8"

// TextLength counts characters in s. Valid text counts runes; an unpaired
// UTF-16 surrogate kept in its 3-byte form (ED A0..BF xx) counts as one
// character, any other invalid byte as one.
func TextLength(s string) int {
	n := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 && isSurrogateSequence(s[i:]) {
			size = 3
		}
		i += size
		n++
	}
	return n
}

func isSurrogateSequence(s string) bool {
	return len(s) >= 3 &&
		s[0] == 0xED &&
		s[1] >= 0xA0 && s[1] <= 0xBF &&
		s[2] >= 0x80 && s[2] <= 0xBF
}
