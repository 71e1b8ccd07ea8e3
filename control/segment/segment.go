// Package segment maps characters onto a 7-segment digit.
//
//	 AAA
//	F   B
//	 GGG
//	E   C
//	 DDD  DP
//
// The bit layout matches the MAX7219 no-decode mode: DP is the high bit and G the low bit.
package segment

import "unicode"

// Segment bits.
const (
	G byte = 1 << iota
	F
	E
	D
	C
	B
	A
	DP
)

var font = map[rune]byte{
	' ': 0,
	'0': A | B | C | D | E | F,
	'1': B | C,
	'2': A | B | D | E | G,
	'3': A | B | C | D | G,
	'4': B | C | F | G,
	'5': A | C | D | F | G,
	'6': A | C | D | E | F | G,
	'7': A | B | C,
	'8': A | B | C | D | E | F | G,
	'9': A | B | C | D | F | G,
	'-': G,
	'_': D,
	'.': DP,
	':': DP,
	'A': A | B | C | E | F | G,
	'B': C | D | E | F | G,
	'C': A | D | E | F,
	'D': B | C | D | E | G,
	'E': A | D | E | F | G,
	'F': A | E | F | G,
	'G': A | C | D | E | F,
	'H': B | C | E | F | G,
	'I': E | F,
	'J': B | C | D | E,
	'L': D | E | F,
	'N': C | E | G,
	'O': A | B | C | D | E | F,
	'P': A | B | E | F | G,
	'R': E | G,
	'S': A | C | D | F | G,
	'T': D | E | F | G,
	'U': B | C | D | E | F,
	'Y': B | C | D | F | G,
}

// Encode returns the segments that draw r.  Letters are drawn the same regardless of case.
// Characters with no 7-segment shape are blank.
func Encode(r rune) byte {
	if b, ok := font[unicode.ToUpper(r)]; ok {
		return b
	}
	return 0
}

// Drawable reports whether r has a shape, as opposed to being drawn blank.
func Drawable(r rune) bool {
	_, ok := font[unicode.ToUpper(r)]
	return ok
}
