package parser

import (
	"bytes"
	"errors"
	"fmt"
)

// literalWords maps bare literals of the upstream's Python-flavoured dialect to JSON.
var literalWords = map[string]string{
	"True":  "true",
	"False": "false",
	"None":  "null",
}

var errUnterminatedString = errors.New("unterminated string")

// NormalizeLiteral rewrites the upstream's literal dialect into standard JSON.
//
// Bare True, False and None outside strings become JSON literals and single-quoted
// strings become double-quoted ones. Standard JSON passes through unchanged, so
// the adapter can be dropped once the server only emits strict JSON.
func NormalizeLiteral(raw []byte) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(raw))

	for i := 0; i < len(raw); {
		c := raw[i]
		switch {
		case c == '"':
			end, err := skipDoubleQuoted(raw, i)
			if err != nil {
				return nil, err
			}
			out.Write(raw[i:end])
			i = end

		case c == '\'':
			end, err := requoteSingleQuoted(&out, raw, i)
			if err != nil {
				return nil, err
			}
			i = end

		case isWordStart(c):
			j := i + 1
			for j < len(raw) && isWordPart(raw[j]) {
				j++
			}
			if rep, ok := literalWords[string(raw[i:j])]; ok {
				out.WriteString(rep)
			} else {
				out.Write(raw[i:j])
			}
			i = j

		default:
			out.WriteByte(c)
			i++
		}
	}

	return out.Bytes(), nil
}

// Envelope wraps payload as the single member of an object under key.
func Envelope(key string, payload []byte) []byte {
	out := make([]byte, 0, len(payload)+len(key)+5)
	out = append(out, `{"`...)
	out = append(out, key...)
	out = append(out, `":`...)
	out = append(out, payload...)
	return append(out, '}')
}

// skipDoubleQuoted returns the index just past the string opening at start.
func skipDoubleQuoted(raw []byte, start int) (int, error) {
	for i := start + 1; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			i++
		case '"':
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w at offset %d", errUnterminatedString, start)
}

// requoteSingleQuoted writes the single-quoted string opening at start as a JSON
// string and returns the index just past it.
func requoteSingleQuoted(out *bytes.Buffer, raw []byte, start int) (int, error) {
	out.WriteByte('"')
	for i := start + 1; i < len(raw); i++ {
		switch c := raw[i]; c {
		case '\\':
			if i+1 >= len(raw) {
				return 0, fmt.Errorf("%w at offset %d", errUnterminatedString, start)
			}
			i++
			if raw[i] == '\'' {
				out.WriteByte('\'')
			} else {
				out.WriteByte('\\')
				out.WriteByte(raw[i])
			}
		case '"':
			out.WriteString(`\"`)
		case '\'':
			out.WriteByte('"')
			return i + 1, nil
		default:
			out.WriteByte(c)
		}
	}
	return 0, fmt.Errorf("%w at offset %d", errUnterminatedString, start)
}

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordPart(c byte) bool {
	return isWordStart(c) || (c >= '0' && c <= '9')
}
