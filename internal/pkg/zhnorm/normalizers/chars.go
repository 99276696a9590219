package normalizers

import "unicode"

// chineseChars covers the CJK Unified Ideographs blocks and their
// extensions plus the compatibility ideographs. Hangul, Hiragana and
// Katakana are not included since those scripts are space separated.
var chineseChars = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3400, Hi: 0x4dbf, Stride: 1},
		{Lo: 0x4e00, Hi: 0x9fff, Stride: 1},
		{Lo: 0xf900, Hi: 0xfaff, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x20000, Hi: 0x2a6df, Stride: 1},
		{Lo: 0x2a700, Hi: 0x2b73f, Stride: 1},
		{Lo: 0x2b740, Hi: 0x2b81f, Stride: 1},
		{Lo: 0x2b920, Hi: 0x2ceaf, Stride: 1},
		{Lo: 0x2f800, Hi: 0x2fa1f, Stride: 1},
	},
}

func isChineseChar(r rune) bool {
	return unicode.Is(chineseChars, r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isWhitespace treats \t, \n and \r as whitespace even though they are
// control characters.
func isWhitespace(r rune) bool {
	switch r {
	case '\t', '\n', '\r':
		return true
	}
	return unicode.Is(unicode.White_Space, r)
}

// isControl reports general category C (Cc, Cf, Cs, Co and unassigned Cn),
// except for the whitespace controls \t, \n and \r.
func isControl(r rune) bool {
	switch r {
	case '\t', '\n', '\r':
		return false
	}
	if unicode.In(r, unicode.C) {
		return true
	}
	return !unicode.In(r, unicode.L, unicode.M, unicode.N, unicode.P, unicode.S, unicode.Z)
}
