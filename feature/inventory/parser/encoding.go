package parser

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// lookupEncoding resolves a WHATWG label such as "utf-8" or "latin1".
func lookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		name = "utf-8"
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return enc, nil
}

// detectEncoding names the encoding implied by the leading bytes, or fallback when there is no BOM.
func detectEncoding(head []byte, fallback string) string {
	switch {
	case bytes.HasPrefix(head, bomUTF8):
		return "utf-8-sig"
	case bytes.HasPrefix(head, bomUTF16LE):
		return "utf-16le"
	case bytes.HasPrefix(head, bomUTF16BE):
		return "utf-16be"
	default:
		return fallback
	}
}

// decodingReader strips any BOM and decodes the stream to UTF-8.
// A UTF-8 or UTF-16 BOM overrides the fallback encoding.
func decodingReader(r io.Reader, fallback encoding.Encoding) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(fallback.NewDecoder()))
}
