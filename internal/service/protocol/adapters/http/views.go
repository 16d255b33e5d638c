package http

import (
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/http/openapi"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/pipeline"
)

func toSession(s pipeline.Session) openapi.Session {
	out := openapi.Session{
		Stage:     int(s.Stage),
		StageName: s.Stage.String(),
		Deployed:  s.Deployed,
	}
	if s.Document != nil {
		out.Document = &openapi.DocumentInfo{
			Name: s.Document.Name,
			Kind: string(s.Document.Kind),
			Size: len(s.Document.Content),
		}
	}
	if s.Text != nil {
		text, provenance := s.Text.Text, string(s.Text.Provenance)
		out.Text = &text
		out.Provenance = &provenance
	}
	if s.Bundle != nil {
		summary := &openapi.BundleSummary{
			Id:            s.Bundle.ID,
			Timestamp:     s.Bundle.Timestamp,
			Source:        s.Source,
			ResourceCount: len(s.Bundle.Entry),
			Resources:     []string{},
		}
		for _, r := range s.Bundle.Resources() {
			summary.Resources = append(summary.Resources, r.Key())
		}
		out.Bundle = summary
	}
	if s.Report != nil {
		report := &openapi.ValidationReport{
			Valid:         s.Report.Valid,
			ResourceCount: s.Report.ResourceCount,
			Errors:        s.Report.Errors,
			Warnings:      s.Report.Warnings,
			Information:   s.Report.Information,
			Issues:        make([]openapi.ValidationIssue, 0, len(s.Report.Issues)),
		}
		for _, issue := range s.Report.Issues {
			report.Issues = append(report.Issues, openapi.ValidationIssue{
				Severity: string(issue.Severity),
				Code:     string(issue.Code),
				Details:  issue.Details,
				Location: issue.Location,
			})
		}
		out.Report = report
	}
	if s.LastError != "" {
		msg := s.LastError
		out.Error = &msg
	}
	return out
}
