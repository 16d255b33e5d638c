package extract

import (
	"path/filepath"
	"strings"
)

// Kind is the declared media kind of an ingested document.
type Kind string

const (
	KindWordProcessor Kind = "word-processor"
	KindTypesetting   Kind = "typesetting"
	KindPlain         Kind = "plain"
	KindPDF           Kind = "pdf"
	KindUnknown       Kind = "unknown"
)

// ParseKind maps a user supplied kind name to a Kind. Unrecognised names map to
// KindUnknown, which is read as plain text.
func ParseKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindWordProcessor, "docx", "word":
		return KindWordProcessor
	case KindTypesetting, "latex", "tex":
		return KindTypesetting
	case KindPlain, "text", "txt":
		return KindPlain
	case KindPDF:
		return KindPDF
	default:
		return KindUnknown
	}
}

// DetectKind guesses the kind from a file name and an optional media type.
func DetectKind(filename, mediaType string) Kind {
	ext := strings.ToLower(filepath.Ext(filename))
	mediaType = strings.ToLower(mediaType)

	switch {
	case strings.Contains(mediaType, "word") || ext == ".docx":
		return KindWordProcessor
	case mediaType == "application/pdf" || ext == ".pdf":
		return KindPDF
	case ext == ".tex" || ext == ".latex":
		return KindTypesetting
	case strings.HasPrefix(mediaType, "text/") || ext == ".txt" || ext == ".md":
		return KindPlain
	default:
		return KindUnknown
	}
}

// Document is a raw input document. Content is never modified once ingested.
type Document struct {
	Name    string
	Kind    Kind
	Content []byte
}

// Provenance records where an ExtractedText came from.
type Provenance string

const (
	ProvenanceUploaded    Provenance = "uploaded"
	ProvenanceAIGenerated Provenance = "ai-generated"
)

type ExtractedText struct {
	Text       string     `json:"text"`
	Provenance Provenance `json:"provenance"`
}
