package extract

import (
	"context"
	"regexp"
	"strings"
)

var (
	latexCommand   = regexp.MustCompile(`\\[a-zA-Z]+\*?`)
	latexLineBreak = regexp.MustCompile(`\\\\`)
	latexBraces    = regexp.MustCompile(`[{}]`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// TypesettingExtractor strips LaTeX style markup. Commands and brace delimiters
// become word boundaries, so `\section{Intro}Patient note.` reads
// "Intro Patient note.".
type TypesettingExtractor struct{}

func NewTypesettingExtractor() *TypesettingExtractor {
	return &TypesettingExtractor{}
}

func (t *TypesettingExtractor) Name() string {
	return "typesetting"
}

func (t *TypesettingExtractor) CanHandle(doc Document) bool {
	return doc.Kind == KindTypesetting
}

func (t *TypesettingExtractor) Extract(_ context.Context, doc Document) (string, error) {
	src, err := decodeUTF8(doc.Content)
	if err != nil {
		return "", err
	}
	return StripTypesetting(src), nil
}

// StripTypesetting removes commands and braces and collapses whitespace.
func StripTypesetting(src string) string {
	out := latexLineBreak.ReplaceAllString(src, " ")
	out = latexCommand.ReplaceAllString(out, " ")
	out = latexBraces.ReplaceAllString(out, " ")
	out = whitespaceRun.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
