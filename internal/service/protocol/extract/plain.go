package extract

import (
	"bytes"
	"context"
	"errors"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// PlainExtractor decodes the bytes as UTF-8 text, verbatim except that a
// leading byte order mark is dropped.
type PlainExtractor struct{}

func NewPlainExtractor() *PlainExtractor {
	return &PlainExtractor{}
}

func (p *PlainExtractor) Name() string {
	return "plain"
}

func (p *PlainExtractor) CanHandle(doc Document) bool {
	return doc.Kind == KindPlain || doc.Kind == KindUnknown || doc.Kind == ""
}

func (p *PlainExtractor) Extract(_ context.Context, doc Document) (string, error) {
	return decodeUTF8(doc.Content)
}

func decodeUTF8(b []byte) (string, error) {
	b = bytes.TrimPrefix(b, utf8BOM)
	if !utf8.Valid(b) {
		return "", errors.New("content is not valid UTF-8 text")
	}
	return string(b), nil
}
