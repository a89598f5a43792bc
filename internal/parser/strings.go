package parser

import (
	"strconv"
	"strings"
)

// decodeEscapes resolves backslash escapes in the body of a non-raw string
// literal. Sequences Python would keep verbatim (unknown escapes, \N{...})
// are copied through unchanged.
func decodeEscapes(raw string) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw))
	for len(raw) > 0 {
		if raw[0] != '\\' || len(raw) == 1 {
			b.WriteByte(raw[0])
			raw = raw[1:]
			continue
		}

		switch next := raw[1]; next {
		case '\n':
			// line continuation inside the literal
			raw = raw[2:]
			continue
		case '\'', '"':
			b.WriteByte(next)
			raw = raw[2:]
			continue
		case '0', '1', '2', '3', '4', '5', '6', '7':
			// Python accepts one to three octal digits
			end := 2
			for end < len(raw) && end < 4 && raw[end] >= '0' && raw[end] <= '7' {
				end++
			}
			v, err := strconv.ParseUint(raw[1:end], 8, 32)
			if err == nil {
				b.WriteRune(rune(v))
				raw = raw[end:]
				continue
			}
		}

		r, multibyte, tail, err := strconv.UnquoteChar(raw, 0)
		if err != nil {
			b.WriteByte('\\')
			raw = raw[1:]
			continue
		}
		if multibyte || r >= 0x80 {
			b.WriteRune(r)
		} else {
			b.WriteByte(byte(r))
		}
		raw = tail
	}
	return b.String()
}
