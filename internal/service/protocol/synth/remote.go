package synth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	fhirmodel "github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/fhir/model"
	"github.com/go-resty/resty/v2"
)

// DefaultEndpoints are the candidate paths tried against the synthesis service.
var DefaultEndpoints = []string{"/process", "/convert", "/text-to-fhir", "/api/process", "/api/convert"}

// NewRemoteClient builds the HTTP client shared by all remote endpoints. Each
// request is bounded by timeout and is never retried; moving on to the next
// candidate takes the place of a retry.
func NewRemoteClient(baseURL string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
}

// RemoteEndpoint posts the text to one candidate path.
type RemoteEndpoint struct {
	client *resty.Client
	path   string
}

func NewRemoteEndpoint(client *resty.Client, path string) *RemoteEndpoint {
	return &RemoteEndpoint{client: client, path: path}
}

// RemoteChain returns one strategy per path, in order.
func RemoteChain(client *resty.Client, paths []string) []Strategy {
	out := make([]Strategy, 0, len(paths))
	for _, p := range paths {
		out = append(out, NewRemoteEndpoint(client, p))
	}
	return out
}

func (e *RemoteEndpoint) Name() string {
	return "remote:" + e.path
}

func (e *RemoteEndpoint) Synthesize(ctx context.Context, req Request) (fhirmodel.Bundle, error) {
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(req).
		Post(e.path)
	if err != nil {
		return fhirmodel.Bundle{}, fmt.Errorf("request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return fhirmodel.Bundle{}, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	bundle, err := parseBundle(resp.Body())
	if err != nil {
		return fhirmodel.Bundle{}, fmt.Errorf("malformed bundle: %w", err)
	}
	return bundle, nil
}

func parseBundle(body []byte) (fhirmodel.Bundle, error) {
	var b fhirmodel.Bundle
	if err := json.Unmarshal(body, &b); err != nil {
		return fhirmodel.Bundle{}, err
	}
	if b.ResourceType != fhirmodel.ResourceTypeBundle {
		return fhirmodel.Bundle{}, fmt.Errorf("resourceType %q is not Bundle", b.ResourceType)
	}
	if b.ID == "" {
		return fhirmodel.Bundle{}, errors.New("bundle has no id")
	}
	if b.Type != fhirmodel.BundleTypeCollection {
		return fhirmodel.Bundle{}, fmt.Errorf("bundle type %q is not %s", b.Type, fhirmodel.BundleTypeCollection)
	}
	if len(b.Resources()) == 0 {
		return fhirmodel.Bundle{}, errors.New("bundle has no resources")
	}
	return b, nil
}
