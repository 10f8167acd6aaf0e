package importers

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decodeText turns uploaded bytes into a Go string. UTF-8 (with or without a
// BOM) is accepted as is; UTF-16 is accepted only when it carries a BOM.
// Anything else must be valid UTF-8.
func decodeText(raw []byte) (string, error) {
	hasUTF16BOM := bytes.HasPrefix(raw, bomUTF16LE) || bytes.HasPrefix(raw, bomUTF16BE)
	if !hasUTF16BOM {
		if offset := firstInvalidUTF8(raw); offset >= 0 {
			return "", &EncodingError{Offset: offset}
		}
	}

	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return "", &EncodingError{Offset: 0}
	}
	return string(decoded), nil
}

// firstInvalidUTF8 returns the byte offset of the first invalid sequence, or
// -1 when b is valid UTF-8.
func firstInvalidUTF8(b []byte) int {
	if utf8.Valid(b) {
		return -1
	}
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
