package model

type Patient struct {
	ResourceType string       `json:"resourceType"`
	ID           string       `json:"id"`
	Meta         *Meta        `json:"meta,omitempty"`
	Identifier   []Identifier `json:"identifier,omitempty"`
	Name         []HumanName  `json:"name,omitempty"`
	Gender       string       `json:"gender,omitempty"` // male|female|other|unknown
	BirthDate    string       `json:"birthDate,omitempty"`
}

type Practitioner struct {
	ResourceType  string                      `json:"resourceType"`
	ID            string                      `json:"id"`
	Meta          *Meta                       `json:"meta,omitempty"`
	Identifier    []Identifier                `json:"identifier,omitempty"`
	Name          []HumanName                 `json:"name,omitempty"`
	Qualification []PractitionerQualification `json:"qualification,omitempty"`
}

type PractitionerQualification struct {
	Code CodeableConcept `json:"code"`
}
