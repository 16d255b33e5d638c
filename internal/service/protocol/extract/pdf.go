package extract

import (
	"context"
	"fmt"
)

// PDFPlaceholderExtractor does not parse PDF. It returns a fixed illustrative
// protocol naming the file, so callers must not rely on it for real content.
type PDFPlaceholderExtractor struct{}

func NewPDFPlaceholderExtractor() *PDFPlaceholderExtractor {
	return &PDFPlaceholderExtractor{}
}

func (p *PDFPlaceholderExtractor) Name() string {
	return "pdf-placeholder"
}

func (p *PDFPlaceholderExtractor) CanHandle(doc Document) bool {
	return doc.Kind == KindPDF
}

func (p *PDFPlaceholderExtractor) Extract(_ context.Context, doc Document) (string, error) {
	return PDFPlaceholderText(doc.Name), nil
}

func PDFPlaceholderText(name string) string {
	return fmt.Sprintf(`PDF content extraction would happen here. File: %s

Clinical Protocol Example:
Patient presenting with acute chest pain
Diagnosis: Acute myocardial infarction
Treatment: Aspirin 300mg, Clopidogrel 600mg, Atorvastatin 80mg
Follow-up: Cardiology consultation within 24 hours`, name)
}
