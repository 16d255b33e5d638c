// Package authoring produces AI-authored protocol text. The current generator
// renders a fixed study template around the caller's prompt.
package authoring

import (
	"fmt"
	"strings"
	"time"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/extract"
)

// DefaultPrompt is used when the caller supplies none.
const DefaultPrompt = "Generate a clinical study protocol for treating hypertension with lifestyle interventions"

type Generator struct {
	now func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// NewGeneratorWithClock is for tests that need a stable protocol id.
func NewGeneratorWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

func (g *Generator) Generate(prompt string) extract.ExtractedText {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = DefaultPrompt
	}

	return extract.ExtractedText{
		Text:       fmt.Sprintf(protocolTemplate, strings.ToUpper(prompt), g.now().UnixMilli()),
		Provenance: extract.ProvenanceAIGenerated,
	}
}

const protocolTemplate = `CLINICAL STUDY PROTOCOL: %s

Protocol ID: AI-GEN-%d
Principal Investigator: Dr. Emma Larsson, MD, PhD
Institution: Karolinska Institute, Stockholm

STUDY OVERVIEW:
A randomized controlled trial investigating innovative treatment approaches.

PATIENT POPULATION:
Inclusion Criteria:
- Adults aged 18-65 years
- Confirmed diagnosis via standard criteria
- Written informed consent obtained

Exclusion Criteria:
- Pregnancy or lactation
- Severe comorbidities
- Previous adverse reactions to study medications

TREATMENT PROTOCOL:
Active Treatment Group:
- Primary medication: 10mg daily, titrated based on response
- Secondary medication: 5mg twice daily
- Lifestyle counseling sessions (weekly for 4 weeks)

Control Group:
- Standard care per clinical guidelines
- Placebo medication matching active treatment
- Standard lifestyle advice

STUDY PROCEDURES:
Baseline Visit (Week 0):
- Complete medical history and physical examination
- Laboratory tests: CBC, comprehensive metabolic panel, lipid profile
- Vital signs assessment
- Quality of life questionnaires

Follow-up Visits (Weeks 2, 4, 8, 12, 24):
- Vital signs monitoring
- Adverse event assessment
- Medication adherence evaluation
- Laboratory tests as indicated

PRIMARY ENDPOINTS:
- Time to clinical improvement (defined as >20%% reduction in primary outcome measure)
- Safety and tolerability profile

SECONDARY ENDPOINTS:
- Changes in biomarker levels
- Quality of life scores
- Healthcare resource utilization

STATISTICAL PLAN:
Sample size: 200 patients (100 per group)
Power: 80%% to detect clinically meaningful difference
Analysis: Intention-to-treat and per-protocol populations

CONTACT INFORMATION:
Study Coordinator: Dr. Anna Johansson
Phone: +46 8 517 700 00
Email: anna.johansson@ki.se
Emergency Contact: Available 24/7

This protocol has been reviewed and approved by the Regional Ethics Committee.
`
