package source

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var charsetPrefix = []byte(`@charset "`)

// Decode converts stylesheet to UTF-8. Byte order mark always wins, otherwise
// leading @charset rule is honored. Without either input is expected to be
// UTF-8 already. Returned name is canonical name of the source encoding, it
// is empty when no conversion was necessary.
func Decode(data []byte) ([]byte, string, error) {
	var (
		enc  encoding.Encoding = encoding.Nop
		name string
	)
	if label := charsetLabel(data); len(label) > 0 {
		var err error
		if enc, name, err = lookupEncoding(label); err != nil {
			return nil, "", err
		}
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), data)
	if err != nil {
		return nil, "", fmt.Errorf("unable to decode stylesheet: %w", err)
	}
	if len(name) == 0 && !bytes.Equal(out, data) {
		name = bomName(data)
	}
	return out, name, nil
}

func lookupEncoding(label string) (encoding.Encoding, string, error) {
	// WHATWG labels first, they cover all the usual aliases
	if enc, name := charset.Lookup(label); enc != nil {
		return enc, name, nil
	}
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, "", fmt.Errorf("unknown charset %q: %w", label, err)
	}
	if enc == nil {
		return nil, "", fmt.Errorf("unsupported charset %q", label)
	}
	name, err := ianaindex.IANA.Name(enc)
	if err != nil {
		name = label
	}
	return enc, name, nil
}

// charsetLabel returns encoding name from @charset rule which must be the very
// first thing in the stylesheet.
func charsetLabel(data []byte) string {
	if !bytes.HasPrefix(data, charsetPrefix) {
		return ""
	}
	rest := data[len(charsetPrefix):]
	end := bytes.Index(rest, []byte(`";`))
	if end <= 0 {
		return ""
	}
	return string(rest[:end])
}

func bomName(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return "utf-8"
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return "utf-16be"
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return "utf-16le"
	}
	return ""
}
