package fhir

import (
	"fmt"
	"time"

	fhirmodel "github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/fhir/model"
	"github.com/google/uuid"
)

const (
	// Code systems
	csV2Degree = "http://terminology.hl7.org/CodeSystem/v2-0360"

	// LocalMedicationCodes is the illustrative medication code system the skeleton
	// cites. It is deliberately not a recognised terminology.
	LocalMedicationCodes = "http://example.org/medication-codes"

	// Skeleton resource ids, stable across runs
	idPatient      = "protocol-patient-001"
	idInvestigator = "principal-investigator"
	idStudy        = "clinical-protocol-study"
	idMedication   = "protocol-medication-001"
	idCarePlan     = "protocol-careplan-001"
)

// SkeletonResourceCount is the number of entries in a skeleton bundle.
const SkeletonResourceCount = 5

type Composer struct {
	now   func() time.Time
	newID func() string
}

type ComposerOption func(*Composer)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) ComposerOption {
	return func(c *Composer) { c.now = now }
}

// WithIDSource overrides how bundle ids are minted.
func WithIDSource(newID func() string) ComposerOption {
	return func(c *Composer) { c.newID = newID }
}

func NewComposer(opts ...ComposerOption) *Composer {
	c := &Composer{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildSkeleton composes the fixed five-resource protocol bundle: Patient,
// Practitioner, ResearchStudy, MedicationRequest and CarePlan. Only the bundle id
// and timestamp change between calls. It cannot fail.
func (c *Composer) BuildSkeleton() fhirmodel.Bundle {
	bundle := fhirmodel.NewCollection("ai-generated-protocol-"+c.newID(), c.now())

	urnPatient := ref(fhirmodel.ResourceTypePatient, idPatient)
	urnInvestigator := ref(fhirmodel.ResourceTypePractitioner, idInvestigator)

	pat := &fhirmodel.Patient{
		ResourceType: fhirmodel.ResourceTypePatient,
		ID:           idPatient,
		Name:         []fhirmodel.HumanName{{Family: "Generated", Given: []string{"Protocol"}}},
		Gender:       "unknown",
		BirthDate:    "1980-01-01",
	}

	prac := &fhirmodel.Practitioner{
		ResourceType: fhirmodel.ResourceTypePractitioner,
		ID:           idInvestigator,
		Name:         []fhirmodel.HumanName{{Family: "Larsson", Given: []string{"Emma"}, Prefix: []string{"Dr."}}},
		Qualification: []fhirmodel.PractitionerQualification{{
			Code: fhirmodel.CodeableConcept{
				Coding: []fhirmodel.Coding{{System: csV2Degree, Code: "MD", Display: "Doctor of Medicine"}},
			},
		}},
	}

	study := &fhirmodel.ResearchStudy{
		ResourceType:          fhirmodel.ResourceTypeResearchStudy,
		ID:                    idStudy,
		Status:                "active",
		Title:                 "AI Generated Clinical Protocol Study",
		Protocol:              []fhirmodel.Reference{{Display: "Study protocol generated from clinical text"}},
		PrincipalInvestigator: &fhirmodel.Reference{Reference: urnInvestigator},
	}

	med := &fhirmodel.MedicationRequest{
		ResourceType: fhirmodel.ResourceTypeMedicationRequest,
		ID:           idMedication,
		Status:       "active",
		Intent:       "order",
		Subject:      &fhirmodel.Reference{Reference: urnPatient},
		MedicationCodeableConcept: &fhirmodel.CodeableConcept{
			Coding: []fhirmodel.Coding{{System: LocalMedicationCodes, Code: "primary-medication"}},
			Text:   "Primary medication 10mg daily",
		},
		DosageInstruction: []fhirmodel.Dosage{{
			Text:   "10mg daily, titrated based on response",
			Timing: &fhirmodel.Timing{Repeat: &fhirmodel.TimingRepeat{Frequency: 1, Period: 1, PeriodUnit: "d"}},
		}},
	}

	plan := &fhirmodel.CarePlan{
		ResourceType: fhirmodel.ResourceTypeCarePlan,
		ID:           idCarePlan,
		Status:       "active",
		Intent:       "plan",
		Subject:      &fhirmodel.Reference{Reference: urnPatient},
		Title:        "Clinical Protocol Care Plan",
		Description:  "Comprehensive care plan derived from clinical protocol",
		Activity: []fhirmodel.CarePlanActivity{{
			Detail: &fhirmodel.CarePlanActivityDetail{
				Status:      "scheduled",
				Description: "Follow-up visits at weeks 2, 4, 8, 12, 24",
			},
		}},
	}

	for _, typed := range []any{pat, prac, study, med, plan} {
		bundle.Add(mustFromTyped(typed))
	}

	return bundle
}

// mustFromTyped panics on marshal failure, which only a programming error in the
// typed model can cause.
func mustFromTyped(v any) *fhirmodel.Resource {
	r, err := fhirmodel.FromTyped(v)
	if err != nil {
		panic(fmt.Sprintf("fhir: compose skeleton: %v", err))
	}
	return r
}

func ref(resourceType, id string) string {
	return resourceType + "/" + id
}
