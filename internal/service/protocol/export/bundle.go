package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	fhirmodel "github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/fhir/model"
	"github.com/goccy/go-yaml"
)

// DefaultBundleFilename is the download name offered for an exported bundle.
const DefaultBundleFilename = "fhir-resources.json"

// BundleJSON renders bundle as two-space indented JSON with a trailing newline.
func BundleJSON(bundle fhirmodel.Bundle) ([]byte, error) {
	out, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal bundle %s: %w", bundle.ID, err)
	}
	return append(out, '\n'), nil
}

// ParseBundleJSON reads a bundle previously written by BundleJSON or received
// from a synthesis service.
func ParseBundleJSON(data []byte) (fhirmodel.Bundle, error) {
	var bundle fhirmodel.Bundle
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&bundle); err != nil {
		return fhirmodel.Bundle{}, fmt.Errorf("parse bundle: %w", err)
	}
	if bundle.ResourceType != fhirmodel.ResourceTypeBundle {
		return fhirmodel.Bundle{}, fmt.Errorf("parse bundle: resourceType is %q, want %q", bundle.ResourceType, fhirmodel.ResourceTypeBundle)
	}
	return bundle, nil
}

// BundleYAML renders bundle as YAML, keeping the JSON field order.
func BundleYAML(bundle fhirmodel.Bundle) ([]byte, error) {
	js, err := json.Marshal(bundle)
	if err != nil {
		return nil, fmt.Errorf("marshal bundle %s: %w", bundle.ID, err)
	}
	out, err := yaml.JSONToYAML(js)
	if err != nil {
		return nil, fmt.Errorf("convert bundle %s to yaml: %w", bundle.ID, err)
	}
	return out, nil
}
