package validate

import (
	"fmt"
	"sort"
	"strings"

	fhirmodel "github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/fhir/model"
)

// Rule inspects a bundle and reports issues. Rules must not modify the bundle.
type Rule interface {
	Name() string
	Check(bundle fhirmodel.Bundle) []Issue
}

// RuleFunc adapts a function to the Rule interface.
type RuleFunc struct {
	RuleName string
	Fn       func(bundle fhirmodel.Bundle) []Issue
}

func (f RuleFunc) Name() string { return f.RuleName }

func (f RuleFunc) Check(bundle fhirmodel.Bundle) []Issue { return f.Fn(bundle) }

// DefaultCodeSystems are the terminologies the code system rule recognises.
var DefaultCodeSystems = []string{
	"http://snomed.info/sct",
	"http://loinc.org",
	"http://www.nlm.nih.gov/research/umls/rxnorm",
	"http://www.whocc.no/atc",
	"http://hl7.org/fhir/sid/icd-10",
	"http://unitsofmeasure.org",
	"http://terminology.hl7.org/CodeSystem/v2-0360",
	"http://terminology.hl7.org/CodeSystem/v3-ActCode",
	"http://terminology.hl7.org/CodeSystem/condition-clinical",
}

// resourceSummary always reports one information issue with the resource count.
type resourceSummary struct{}

func (resourceSummary) Name() string { return "resource-summary" }

func (resourceSummary) Check(bundle fhirmodel.Bundle) []Issue {
	return []Issue{{
		Severity: SeverityInformation,
		Code:     CodeInformational,
		Details:  fmt.Sprintf("Resource bundle contains %d FHIR resources", len(bundle.Entry)),
		Location: "Bundle",
	}}
}

// structure enforces that the bundle and every entry carry an id, that Type/id
// keys are unique, and that every reference resolves inside the bundle.
type structure struct{}

func (structure) Name() string { return "structure" }

func (structure) Check(bundle fhirmodel.Bundle) []Issue {
	var issues []Issue
	seen := make(map[string]bool, len(bundle.Entry))

	if bundle.ID == "" {
		issues = append(issues, Issue{Severity: SeverityError, Code: CodeRequired, Details: "Bundle has no id", Location: "Bundle.id"})
	}

	for i, e := range bundle.Entry {
		loc := fmt.Sprintf("Bundle.entry[%d]", i)
		r := e.Resource
		if r == nil {
			issues = append(issues, Issue{Severity: SeverityError, Code: CodeRequired, Details: "Entry has no resource", Location: loc})
			continue
		}
		if r.ResourceType == "" {
			issues = append(issues, Issue{Severity: SeverityError, Code: CodeRequired, Details: "Resource has no resourceType", Location: loc})
			continue
		}
		if r.ID == "" {
			issues = append(issues, Issue{Severity: SeverityError, Code: CodeRequired, Details: fmt.Sprintf("%s has no id", r.ResourceType), Location: r.ResourceType + ".id"})
			continue
		}
		if seen[r.Key()] {
			issues = append(issues, Issue{Severity: SeverityError, Code: CodeDuplicate, Details: fmt.Sprintf("Resource %s appears more than once", r.Key()), Location: r.ResourceType + ".id"})
		}
		seen[r.Key()] = true
	}

	for _, r := range bundle.Resources() {
		refs := r.References()
		paths := make([]string, 0, len(refs))
		for p := range refs {
			paths = append(paths, p)
		}
		sort.Strings(paths)

		for _, p := range paths {
			target := refs[p]
			if !isLocalReference(target) {
				continue
			}
			if !seen[target] {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Code:     CodeUnresolvedReference,
					Details:  fmt.Sprintf("Reference %q does not resolve within the bundle", target),
					Location: p,
				})
			}
		}
	}
	return issues
}

// isLocalReference reports whether ref has the relative "Type/id" form. Absolute
// URLs and urn:uuid references are left to a full validator.
func isLocalReference(ref string) bool {
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "urn:") || strings.HasPrefix(ref, "#") {
		return false
	}
	parts := strings.Split(ref, "/")
	return len(parts) == 2 && parts[0] != "" && parts[1] != ""
}

// codeSystems warns about codings that cite an unrecognised system.
type codeSystems struct {
	known map[string]bool
}

func newCodeSystems(systems []string) codeSystems {
	known := make(map[string]bool, len(systems))
	for _, s := range systems {
		known[s] = true
	}
	return codeSystems{known: known}
}

func (codeSystems) Name() string { return "code-systems" }

func (c codeSystems) Check(bundle fhirmodel.Bundle) []Issue {
	var issues []Issue
	for _, r := range bundle.Resources() {
		r.Walk(func(n fhirmodel.Node) {
			codings, ok := n.Fields["coding"].([]any)
			if !ok {
				return
			}
			for _, item := range codings {
				coding, ok := item.(map[string]any)
				if !ok {
					continue
				}
				system, _ := coding["system"].(string)
				if system == "" || c.known[system] {
					continue
				}
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Code:     CodeNotFound,
					Details:  fmt.Sprintf("CodeSystem %q not found", system),
					Location: n.Path,
				})
			}
		})
	}
	return issues
}
