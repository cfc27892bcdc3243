// Package textenc turns raw subtitle bytes into UTF-8 text.
package textenc

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Fallback is used for input that is neither BOM-marked nor valid UTF-8.
var Fallback encoding.Encoding = charmap.Windows1252

// Decode returns data as UTF-8 without a byte order mark. UTF-8 and UTF-16
// input is recognised by its BOM; BOM-less input is taken as UTF-8 when
// valid and as Fallback otherwise.
func Decode(data []byte) (string, error) {
	if hasBOM(data) {
		decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		out, _, err := transform.Bytes(decoder, data)
		if err != nil {
			return "", fmt.Errorf("decode bom-marked text: %w", err)
		}
		return string(out), nil
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	out, _, err := transform.Bytes(Fallback.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decode legacy text: %w", err)
	}
	return string(out), nil
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, bomUTF8) ||
		bytes.HasPrefix(data, bomUTF16LE) ||
		bytes.HasPrefix(data, bomUTF16BE)
}
