package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

const (
	ResourceTypePatient           = "Patient"
	ResourceTypePractitioner      = "Practitioner"
	ResourceTypeResearchStudy     = "ResearchStudy"
	ResourceTypeMedicationRequest = "MedicationRequest"
	ResourceTypeCarePlan          = "CarePlan"
)

// Resource is a single FHIR resource of any type. The resourceType and id are
// lifted out; every other member stays in Attributes exactly as decoded, so
// resources produced by a remote service survive a round trip unchanged.
type Resource struct {
	ResourceType string
	ID           string
	Attributes   map[string]any
}

// Key is the bundle-local reference target, "Type/id".
func (r *Resource) Key() string {
	return r.ResourceType + "/" + r.ID
}

func (r Resource) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Attributes)+2)
	for k, v := range r.Attributes {
		out[k] = v
	}
	out["resourceType"] = r.ResourceType
	out["id"] = r.ID
	return json.Marshal(out)
}

func (r *Resource) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("resource must be a JSON object")
	}

	rt, err := stringMember(raw, "resourceType")
	if err != nil {
		return err
	}
	id, err := stringMember(raw, "id")
	if err != nil {
		return err
	}

	r.ResourceType = rt
	r.ID = id
	r.Attributes = raw
	return nil
}

// stringMember removes key from raw and returns it. A missing key yields "";
// a present key of any other JSON type is an error.
func stringMember(raw map[string]any, key string) (string, error) {
	v, ok := raw[key]
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("resource %s must be a string, got %T", key, v)
	}
	delete(raw, key)
	return s, nil
}

// FromTyped converts one of the typed resource structs into a Resource.
func FromTyped(v any) (*Resource, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal typed resource: %w", err)
	}
	var r Resource
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode typed resource: %w", err)
	}
	return &r, nil
}

// Decode fills dst, a typed resource struct, from r.
func (r *Resource) Decode(dst any) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func (r *Resource) Clone() *Resource {
	if r == nil {
		return nil
	}
	return &Resource{
		ResourceType: r.ResourceType,
		ID:           r.ID,
		Attributes:   cloneMap(r.Attributes),
	}
}

// Node is a JSON object found while walking a resource, with its dotted path,
// e.g. "MedicationRequest.subject" or "Practitioner.qualification[0].code".
type Node struct {
	Path   string
	Fields map[string]any
}

// Walk visits every nested JSON object of the resource in a stable order.
// The resource root itself is not visited.
func (r *Resource) Walk(fn func(Node)) {
	walkMap(r.ResourceType, r.Attributes, fn)
}

// References returns every {"reference": "..."} found in the resource.
func (r *Resource) References() map[string]string {
	refs := make(map[string]string)
	r.Walk(func(n Node) {
		if ref, ok := n.Fields["reference"].(string); ok && ref != "" {
			refs[n.Path] = ref
		}
	})
	return refs
}

func walkMap(path string, m map[string]any, fn func(Node)) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		walkValue(path+"."+k, m[k], fn)
	}
}

func walkValue(path string, v any, fn func(Node)) {
	switch tv := v.(type) {
	case map[string]any:
		fn(Node{Path: path, Fields: tv})
		walkMap(path, tv, fn)
	case []any:
		for i, item := range tv {
			walkValue(path+"["+strconv.Itoa(i)+"]", item, fn)
		}
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return cloneMap(tv)
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
