package reader

import "strings"

// LineColumn converts a byte offset in src to a zero-based line and a
// zero-based column counted in UTF-16 code units, as editors expect.
// Offsets past the end clamp to the end of src.
func LineColumn(src string, offset int) (line, col int) {
	if offset > len(src) {
		offset = len(src)
	}
	for _, r := range src[:offset] {
		if r == '\n' {
			line++
			col = 0
			continue
		}
		if r >= 0x10000 {
			col += 2
		} else {
			col++
		}
	}
	return line, col
}

// Offset converts a zero-based line and UTF-16 column back to a byte offset
// in src. Positions past the end of a line clamp to its end; lines past the
// end of src clamp to len(src).
func Offset(src string, line, col int) int {
	off := 0
	for l := 0; l < line; l++ {
		nl := strings.IndexByte(src[off:], '\n')
		if nl < 0 {
			return len(src)
		}
		off += nl + 1
	}
	units := 0
	for i, r := range src[off:] {
		if r == '\n' || units >= col {
			return off + i
		}
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
	}
	return len(src)
}

// SkipBlank returns the offset of the first byte at or after off that is
// neither whitespace nor part of a ; comment.
func SkipBlank(src string, off int) int {
	for off < len(src) {
		switch c := src[off]; {
		case isSpace(c):
			off++
		case c == ';':
			nl := strings.IndexByte(src[off:], '\n')
			if nl < 0 {
				return len(src)
			}
			off += nl + 1
		default:
			return off
		}
	}
	return off
}
