package model

type MedicationRequest struct {
	ResourceType              string           `json:"resourceType"`
	ID                        string           `json:"id"`
	Meta                      *Meta            `json:"meta,omitempty"`
	Status                    string           `json:"status,omitempty"` // active|on-hold|cancelled|completed|...
	Intent                    string           `json:"intent,omitempty"` // proposal|plan|order|...
	Subject                   *Reference       `json:"subject,omitempty"`
	MedicationCodeableConcept *CodeableConcept `json:"medicationCodeableConcept,omitempty"`
	DosageInstruction         []Dosage         `json:"dosageInstruction,omitempty"`
}

type CarePlan struct {
	ResourceType string             `json:"resourceType"`
	ID           string             `json:"id"`
	Meta         *Meta              `json:"meta,omitempty"`
	Status       string             `json:"status,omitempty"`
	Intent       string             `json:"intent,omitempty"`
	Subject      *Reference         `json:"subject,omitempty"`
	Title        string             `json:"title,omitempty"`
	Description  string             `json:"description,omitempty"`
	Activity     []CarePlanActivity `json:"activity,omitempty"`
}

type CarePlanActivity struct {
	Detail *CarePlanActivityDetail `json:"detail,omitempty"`
}

type CarePlanActivityDetail struct {
	Status      string `json:"status,omitempty"` // not-started|scheduled|in-progress|...
	Description string `json:"description,omitempty"`
}
