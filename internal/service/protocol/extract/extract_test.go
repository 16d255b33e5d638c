package extract_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/extract"
)

func buildDocx(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const docxBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t>Study Protocol</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Dose: </w:t></w:r><w:r><w:t>10mg</w:t><w:tab/><w:t>daily</w:t></w:r></w:p>
    <w:p><w:r><w:t>Line one</w:t><w:br/><w:t>Line two</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestTextExtractor_Extract(t *testing.T) {
	ex := extract.NewDefault(zaptest.NewLogger(t))

	tests := []struct {
		name string
		doc  extract.Document
		want string
	}{
		{
			name: "typesetting commands and braces stripped",
			doc:  extract.Document{Name: "intro.tex", Kind: extract.KindTypesetting, Content: []byte(`\section{Intro}Patient note.`)},
			want: "Intro Patient note.",
		},
		{
			name: "typesetting bare commands and whitespace runs",
			doc:  extract.Document{Kind: extract.KindTypesetting, Content: []byte("\\documentclass{article}\n\\begin{document}\n\\textbf{Dose}:   10mg \\\\ daily\n\\end{document}\n")},
			want: "article document Dose : 10mg daily document",
		},
		{
			name: "plain text verbatim",
			doc:  extract.Document{Kind: extract.KindPlain, Content: []byte("  Line 1\n\tLine 2  ")},
			want: "  Line 1\n\tLine 2  ",
		},
		{
			name: "unknown kind read as plain text",
			doc:  extract.Document{Kind: extract.KindUnknown, Content: []byte("hello")},
			want: "hello",
		},
		{
			name: "byte order mark dropped",
			doc:  extract.Document{Kind: extract.KindPlain, Content: append([]byte{0xEF, 0xBB, 0xBF}, "text"...)},
			want: "text",
		},
		{
			name: "word processor text runs only",
			doc:  extract.Document{Kind: extract.KindWordProcessor, Content: buildDocx(t, map[string]string{"word/document.xml": docxBody})},
			want: "Study Protocol\n\nDose: 10mg\tdaily\n\nLine one\nLine two",
		},
		{
			name: "pdf placeholder names the file",
			doc:  extract.Document{Name: "trial.pdf", Kind: extract.KindPDF, Content: []byte("%PDF-1.7")},
			want: extract.PDFPlaceholderText("trial.pdf"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ex.Extract(context.Background(), tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Text)
			assert.Equal(t, extract.ProvenanceUploaded, got.Provenance)
		})
	}
}

func TestTextExtractor_Deterministic(t *testing.T) {
	ex := extract.NewDefault(nil)
	docs := []extract.Document{
		{Kind: extract.KindTypesetting, Content: []byte(`\title{A}\maketitle body`)},
		{Kind: extract.KindWordProcessor, Content: buildDocx(t, map[string]string{"word/document.xml": docxBody})},
		{Kind: extract.KindPlain, Content: []byte("same")},
	}

	for _, doc := range docs {
		first, err := ex.Extract(context.Background(), doc)
		require.NoError(t, err)
		second, err := ex.Extract(context.Background(), doc)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestTextExtractor_Errors(t *testing.T) {
	ex := extract.NewDefault(nil)

	tests := []struct {
		name string
		doc  extract.Document
	}{
		{name: "not a zip package", doc: extract.Document{Name: "bad.docx", Kind: extract.KindWordProcessor, Content: []byte("plain bytes")}},
		{name: "zip without body part", doc: extract.Document{Kind: extract.KindWordProcessor, Content: buildDocx(t, map[string]string{"other.xml": "<a/>"})}},
		{name: "malformed body xml", doc: extract.Document{Kind: extract.KindWordProcessor, Content: buildDocx(t, map[string]string{"word/document.xml": "<w:document><w:body>"})}},
		{name: "invalid utf-8 plain text", doc: extract.Document{Kind: extract.KindPlain, Content: []byte{0xff, 0xfe, 0xfd}}},
		{name: "invalid utf-8 typesetting", doc: extract.Document{Kind: extract.KindTypesetting, Content: []byte{0xc3, 0x28}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ex.Extract(context.Background(), tt.doc)
			require.Error(t, err)
			assert.Empty(t, got.Text)

			var extractionErr *extract.ExtractionError
			require.True(t, errors.As(err, &extractionErr))
			assert.Equal(t, tt.doc.Kind, extractionErr.Kind)
			assert.NotNil(t, extractionErr.Cause)
		})
	}
}

func TestTextExtractor_NoExtractorForKind(t *testing.T) {
	ex := extract.New(nil, extract.NewTypesettingExtractor())

	_, err := ex.Extract(context.Background(), extract.Document{Kind: extract.KindPlain, Content: []byte("x")})
	require.Error(t, err)
	assert.ErrorIs(t, err, extract.ErrUnsupportedKind)
	assert.Equal(t, []string{"typesetting"}, ex.Registered())
}

func TestTextExtractor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := extract.NewDefault(nil).Extract(ctx, extract.Document{Kind: extract.KindPlain, Content: []byte("x")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		mediaType string
		want      extract.Kind
	}{
		{name: "docx by extension", filename: "protocol.DOCX", want: extract.KindWordProcessor},
		{name: "word media type", filename: "protocol", mediaType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", want: extract.KindWordProcessor},
		{name: "pdf by media type", filename: "scan", mediaType: "application/pdf", want: extract.KindPDF},
		{name: "tex", filename: "paper.tex", want: extract.KindTypesetting},
		{name: "latex", filename: "paper.latex", want: extract.KindTypesetting},
		{name: "plain media type", filename: "notes", mediaType: "text/plain", want: extract.KindPlain},
		{name: "no hints", filename: "blob.bin", want: extract.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extract.DetectKind(tt.filename, tt.mediaType))
		})
	}
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, extract.KindWordProcessor, extract.ParseKind("docx"))
	assert.Equal(t, extract.KindTypesetting, extract.ParseKind(" LaTeX "))
	assert.Equal(t, extract.KindPlain, extract.ParseKind("txt"))
	assert.Equal(t, extract.KindPDF, extract.ParseKind("pdf"))
	assert.Equal(t, extract.KindUnknown, extract.ParseKind("rtf"))
}
