package extractor

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var byteOrderMarks = []struct {
	mark     []byte
	encoding encoding.Encoding
}{
	{[]byte{0xEF, 0xBB, 0xBF}, unicode.UTF8BOM},
	{[]byte{0xFF, 0xFE}, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{[]byte{0xFE, 0xFF}, unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
}

// DecodeText converts raw file bytes to a Go string. A UTF-8 or UTF-16 byte
// order mark selects the encoding; otherwise valid UTF-8 is kept as is and
// anything else is read as Windows-1252, then ISO-8859-1.
func DecodeText(data []byte) (string, error) {
	for _, bom := range byteOrderMarks {
		if bytes.HasPrefix(data, bom.mark) {
			return decodeWith(bom.encoding, data)
		}
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	for _, fallback := range []encoding.Encoding{charmap.Windows1252, charmap.ISO8859_1} {
		if text, err := decodeWith(fallback, data); err == nil {
			return text, nil
		}
	}

	return string(data), nil
}

func decodeWith(enc encoding.Encoding, data []byte) (string, error) {
	decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
