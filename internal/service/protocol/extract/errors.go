package extract

import (
	"errors"
	"fmt"
)

// ErrUnsupportedKind is the cause of an ExtractionError when no extractor accepts
// the document.
var ErrUnsupportedKind = errors.New("unsupported document kind")

// ExtractionError reports a document that could not be turned into text. No
// partial text accompanies it.
type ExtractionError struct {
	Document string
	Kind     Kind
	Cause    error
}

func (e *ExtractionError) Error() string {
	name := e.Document
	if name == "" {
		name = "document"
	}
	return fmt.Sprintf("extract %s (%s): %v", name, e.Kind, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
