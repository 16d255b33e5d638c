package extract

import (
	"context"

	"go.uber.org/zap"
)

// Extractor turns one family of documents into plain text.
type Extractor interface {
	CanHandle(doc Document) bool
	Extract(ctx context.Context, doc Document) (string, error)
	Name() string
}

// TextExtractor dispatches a document to the first registered extractor that
// accepts it.
type TextExtractor struct {
	extractors []Extractor
	logger     *zap.Logger
}

// New creates a TextExtractor over the given extractors. Order matters: the
// plain text extractor accepts anything and belongs last.
func New(logger *zap.Logger, extractors ...Extractor) *TextExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextExtractor{
		extractors: extractors,
		logger:     logger,
	}
}

// NewDefault registers the word-processor, typesetting, PDF and plain extractors.
func NewDefault(logger *zap.Logger) *TextExtractor {
	return New(logger,
		NewWordProcessorExtractor(),
		NewTypesettingExtractor(),
		NewPDFPlaceholderExtractor(),
		NewPlainExtractor(),
	)
}

func (t *TextExtractor) Extract(ctx context.Context, doc Document) (ExtractedText, error) {
	if err := ctx.Err(); err != nil {
		return ExtractedText{}, err
	}

	ex := t.selectExtractor(doc)
	if ex == nil {
		return ExtractedText{}, &ExtractionError{Document: doc.Name, Kind: doc.Kind, Cause: ErrUnsupportedKind}
	}

	text, err := ex.Extract(ctx, doc)
	if err != nil {
		t.logger.Warn("Document extraction failed",
			zap.String("document", doc.Name),
			zap.String("kind", string(doc.Kind)),
			zap.String("extractor", ex.Name()),
			zap.Error(err),
		)
		return ExtractedText{}, &ExtractionError{Document: doc.Name, Kind: doc.Kind, Cause: err}
	}

	t.logger.Debug("Document extracted",
		zap.String("document", doc.Name),
		zap.String("extractor", ex.Name()),
		zap.Int("chars", len(text)),
	)

	return ExtractedText{Text: text, Provenance: ProvenanceUploaded}, nil
}

// Registered returns the extractor names in dispatch order.
func (t *TextExtractor) Registered() []string {
	names := make([]string, len(t.extractors))
	for i, ex := range t.extractors {
		names[i] = ex.Name()
	}
	return names
}

func (t *TextExtractor) selectExtractor(doc Document) Extractor {
	for _, ex := range t.extractors {
		if ex.CanHandle(doc) {
			return ex
		}
	}
	return nil
}
