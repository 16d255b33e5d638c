package model

import (
	"time"
)

const (
	ResourceTypeBundle = "Bundle"

	// BundleTypeCollection is the only bundle type the pipeline produces.
	BundleTypeCollection = "collection"
)

type Bundle struct {
	ResourceType string        `json:"resourceType"`
	ID           string        `json:"id"`
	Meta         *Meta         `json:"meta,omitempty"`
	Type         string        `json:"type"`
	Timestamp    string        `json:"timestamp,omitempty"`
	Entry        []BundleEntry `json:"entry,omitempty"`
}

type BundleEntry struct {
	FullURL  string    `json:"fullUrl,omitempty"`
	Resource *Resource `json:"resource"`
}

// NewCollection returns an empty collection bundle stamped with ts.
func NewCollection(id string, ts time.Time) Bundle {
	return Bundle{
		ResourceType: ResourceTypeBundle,
		ID:           id,
		Type:         BundleTypeCollection,
		Timestamp:    ts.UTC().Format(time.RFC3339),
	}
}

// Add appends resources as new entries, in order.
func (b *Bundle) Add(resources ...*Resource) {
	for _, r := range resources {
		b.Entry = append(b.Entry, BundleEntry{Resource: r})
	}
}

// Resources returns the non-nil entry resources in bundle order.
func (b Bundle) Resources() []*Resource {
	out := make([]*Resource, 0, len(b.Entry))
	for _, e := range b.Entry {
		if e.Resource != nil {
			out = append(out, e.Resource)
		}
	}
	return out
}

// Lookup finds a resource by its "Type/id" key.
func (b Bundle) Lookup(key string) (*Resource, bool) {
	for _, r := range b.Resources() {
		if r.Key() == key {
			return r, true
		}
	}
	return nil, false
}

// Clone returns a deep copy, so callers can hand out bundles without sharing entries.
func (b Bundle) Clone() Bundle {
	out := b
	if b.Meta != nil {
		meta := *b.Meta
		meta.Profile = append([]string(nil), b.Meta.Profile...)
		out.Meta = &meta
	}
	if b.Entry != nil {
		out.Entry = make([]BundleEntry, len(b.Entry))
		for i, e := range b.Entry {
			out.Entry[i] = BundleEntry{FullURL: e.FullURL, Resource: e.Resource.Clone()}
		}
	}
	return out
}
