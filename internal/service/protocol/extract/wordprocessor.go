package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBodyPart = "word/document.xml"

// WordProcessorExtractor reads the main body part of an Office Open XML (docx)
// package and keeps only its text runs. Paragraphs are separated by a blank line.
type WordProcessorExtractor struct{}

func NewWordProcessorExtractor() *WordProcessorExtractor {
	return &WordProcessorExtractor{}
}

func (w *WordProcessorExtractor) Name() string {
	return "word-processor"
}

func (w *WordProcessorExtractor) CanHandle(doc Document) bool {
	return doc.Kind == KindWordProcessor
}

func (w *WordProcessorExtractor) Extract(ctx context.Context, doc Document) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(doc.Content), int64(len(doc.Content)))
	if err != nil {
		return "", fmt.Errorf("open docx package: %w", err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == docxBodyPart {
			body = f
			break
		}
	}
	if body == nil {
		return "", fmt.Errorf("docx package has no %s", docxBodyPart)
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", docxBodyPart, err)
	}
	defer rc.Close()

	return readDocxText(ctx, rc)
}

// readDocxText walks the WordprocessingML body. Only w:t text, w:tab and
// w:br/w:cr breaks contribute; everything else is formatting.
func readDocxText(ctx context.Context, r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
	)

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", docxBodyPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br", "cr":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	return strings.TrimRight(strings.Join(paragraphs, "\n\n"), "\n"), nil
}
