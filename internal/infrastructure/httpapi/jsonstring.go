package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

var errNotString = errors.New("value is not a JSON string")

// stringField decodes an optional JSON string field. A missing or null field
// reports present=false.
func stringField(raw json.RawMessage) (value string, present bool, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false, nil
	}
	value, err = unquoteJSON(raw)
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// unquoteJSON decodes a JSON string literal. encoding/json replaces unpaired
// UTF-16 surrogate escapes with U+FFFD; here they are kept in their 3-byte
// form so the result is invalid UTF-8 and the evaluator rejects the encoding.
// Raw invalid bytes are copied through unchanged for the same reason.
func unquoteJSON(raw []byte) (string, error) {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return "", errNotString
	}
	s := raw[1 : len(raw)-1]

	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' {
			buf = append(buf, c)
			i++
			continue
		}
		if i+1 >= len(s) {
			return "", errors.New("truncated escape")
		}

		switch s[i+1] {
		case '"', '\\', '/':
			buf = append(buf, s[i+1])
		case 'b':
			buf = append(buf, '\b')
		case 'f':
			buf = append(buf, '\f')
		case 'n':
			buf = append(buf, '\n')
		case 'r':
			buf = append(buf, '\r')
		case 't':
			buf = append(buf, '\t')
		case 'u':
			r, ok := hex4(s[i+2:])
			if !ok {
				return "", errors.New("invalid unicode escape")
			}
			i += 6
			if !utf16.IsSurrogate(r) {
				buf = utf8.AppendRune(buf, r)
				continue
			}
			if r < 0xDC00 && i+6 <= len(s) && s[i] == '\\' && s[i+1] == 'u' {
				if low, ok := hex4(s[i+2:]); ok && low >= 0xDC00 && low <= 0xDFFF {
					buf = utf8.AppendRune(buf, utf16.DecodeRune(r, low))
					i += 6
					continue
				}
			}
			buf = append(buf, 0xE0|byte(r>>12), 0x80|byte(r>>6)&0x3F, 0x80|byte(r)&0x3F)
			continue
		default:
			return "", errors.New("invalid escape")
		}
		i += 2
	}

	return string(buf), nil
}

func hex4(s []byte) (rune, bool) {
	if len(s) < 4 {
		return 0, false
	}
	v, err := strconv.ParseUint(string(s[:4]), 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
