package adapter

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// ErrUnknownEncoding is returned when an encoding name cannot be resolved.
var ErrUnknownEncoding = errors.New("unknown text encoding")

// TextDecoder converts raw process output into text. Decoding is permissive:
// byte sequences that are invalid in the source encoding become U+FFFD.
type TextDecoder interface {
	Decode(raw []byte) string
	Name() string
}

type encodingDecoder struct {
	name string
	enc  encoding.Encoding
}

// NewTextDecoder resolves name (e.g. "utf-8", "gbk", "windows-1252") through
// the WHATWG encoding index.
func NewTextDecoder(name string) (TextDecoder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "utf-8"
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrUnknownEncoding, name, err)
	}

	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = name
	}

	return &encodingDecoder{name: canonical, enc: enc}, nil
}

func (d *encodingDecoder) Name() string {
	return d.name
}

func (d *encodingDecoder) Decode(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	decoded, err := d.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
	}

	return strings.ToValidUTF8(string(decoded), string(utf8.RuneError))
}
