// Package ansi implements the index-mapping layer that lets detection run
// against an ANSI-stripped view of a byte stream while writes land on the
// original, unstripped bytes at byte-exact offsets.
package ansi

// csiFinalByte reports whether c terminates a CSI (Control Sequence
// Introducer) escape sequence, per ECMA-48: the final byte is in the range
// 0x40-0x7E.
func csiFinalByte(c byte) bool {
	return c >= 0x40 && c <= 0x7E
}

// stripOne scans one ANSI escape sequence starting at original[i] (where
// original[i] == ESC) and returns the index just past it. Recognizes CSI
// (ESC '[' ... final-byte) and OSC (ESC ']' ... BEL or ESC '\') sequences;
// any other ESC-prefixed sequence is treated as a two-byte escape.
func stripOne(original []byte, i int) int {
	n := len(original)
	if i >= n || original[i] != 0x1b {
		return i
	}
	if i+1 >= n {
		return i + 1
	}

	switch original[i+1] {
	case '[':
		j := i + 2
		for j < n && !csiFinalByte(original[j]) {
			j++
		}
		if j < n {
			j++ // consume the final byte
		}
		return j
	case ']':
		j := i + 2
		for j < n {
			if original[j] == 0x07 {
				return j + 1
			}
			if original[j] == 0x1b && j+1 < n && original[j+1] == '\\' {
				return j + 2
			}
			j++
		}
		return j
	default:
		return i + 2
	}
}

// Strip removes ANSI escape sequences from b, returning the visible bytes.
func Strip(b []byte) []byte {
	out := make([]byte, 0, len(b))
	i := 0
	for i < len(b) {
		if b[i] == 0x1b {
			i = stripOne(b, i)
			continue
		}
		out = append(out, b[i])
		i++
	}
	return out
}

// Mapper maps byte offsets in the ANSI-stripped view back to byte offsets
// in the original, unstripped stream.
type Mapper struct {
	table []int // len(table) == len(stripped)+1
}

// NewMapper builds a Mapper plus the corresponding stripped view of
// original, walking both in lock-step: whenever a byte in original is part
// of an escape sequence, the original cursor is advanced past it without
// consuming a stripped byte.
func NewMapper(original []byte) (stripped []byte, mapper *Mapper) {
	table := make([]int, 0, len(original)+1)
	out := make([]byte, 0, len(original))

	oi := 0
	for oi < len(original) {
		if original[oi] == 0x1b {
			oi = stripOne(original, oi)
			continue
		}
		table = append(table, oi)
		out = append(out, original[oi])
		oi++
	}
	table = append(table, len(original))

	return out, &Mapper{table: table}
}

// Map returns the original-byte offset corresponding to stripped-byte
// offset i, clamped to [0, len(stripped)].
func (m *Mapper) Map(i int) int {
	if i < 0 {
		i = 0
	}
	if i >= len(m.table) {
		i = len(m.table) - 1
	}
	return m.table[i]
}

// Len returns the length of the stripped view this mapper was built from.
func (m *Mapper) Len() int {
	return len(m.table) - 1
}
