package pipeline

import (
	fhirmodel "github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/fhir/model"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/extract"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/validate"
)

// Stage is the position of the session in the four step workflow.
type Stage int

const (
	// StageInput waits for a document or an authoring prompt.
	StageInput Stage = iota + 1
	// StageText holds extracted text ready for synthesis.
	StageText
	// StageReview holds a synthesized bundle and its validation report.
	StageReview
	// StageDeployed is terminal until Reset.
	StageDeployed
)

func (s Stage) String() string {
	switch s {
	case StageInput:
		return "input"
	case StageText:
		return "text"
	case StageReview:
		return "review"
	case StageDeployed:
		return "deployed"
	default:
		return "unknown"
	}
}

// Session is a point-in-time copy of the pipeline state. Pointer fields are nil
// until the stage that produces them has run; a Session returned by
// Controller.Snapshot shares nothing with the controller.
type Session struct {
	Stage    Stage
	Document *extract.Document
	Text     *extract.ExtractedText
	Bundle   *fhirmodel.Bundle
	// Source names the synthesis strategy behind Bundle, or synth.SourceFallback.
	Source    string
	Report    *validate.Report
	Deployed  bool
	LastError string
}

func newSession() Session {
	return Session{Stage: StageInput}
}

func (s Session) clone() Session {
	out := s
	if s.Document != nil {
		doc := *s.Document
		doc.Content = append([]byte(nil), s.Document.Content...)
		out.Document = &doc
	}
	if s.Text != nil {
		text := *s.Text
		out.Text = &text
	}
	if s.Bundle != nil {
		bundle := s.Bundle.Clone()
		out.Bundle = &bundle
	}
	if s.Report != nil {
		report := *s.Report
		report.Issues = append([]validate.Issue(nil), s.Report.Issues...)
		out.Report = &report
	}
	return out
}
