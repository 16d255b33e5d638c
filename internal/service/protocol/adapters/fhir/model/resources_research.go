package model

type ResearchStudy struct {
	ResourceType          string       `json:"resourceType"`
	ID                    string       `json:"id"`
	Meta                  *Meta        `json:"meta,omitempty"`
	Identifier            []Identifier `json:"identifier,omitempty"`
	Status                string       `json:"status,omitempty"`
	Title                 string       `json:"title,omitempty"`
	Protocol              []Reference  `json:"protocol,omitempty"`
	PrincipalInvestigator *Reference   `json:"principalInvestigator,omitempty"`
}
