package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	fhirmodel "github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/fhir/model"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const fhirJSON = "application/fhir+json"

// FHIRServer publishes a bundle with PUT {base}/Bundle/{id}, so a repeated
// publish updates the same resource instead of creating another.
type FHIRServer struct {
	client *resty.Client
	logger *zap.Logger
}

func NewFHIRServer(baseURL, token string, timeout time.Duration, logger *zap.Logger) *FHIRServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", fhirJSON)
	if token != "" {
		client.SetAuthToken(token)
	}
	return &FHIRServer{client: client, logger: logger}
}

func (f *FHIRServer) Name() string {
	return "fhir-server"
}

func (f *FHIRServer) Publish(ctx context.Context, bundle fhirmodel.Bundle) error {
	body, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}

	path := "/Bundle/" + url.PathEscape(bundle.ID)
	f.logger.Info("Publishing bundle to FHIR server",
		zap.String("bundle_id", bundle.ID),
		zap.String("path", path),
	)

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", fhirJSON).
		SetBody(body).
		Put(path)
	if err != nil {
		return fmt.Errorf("PUT %s: %w", path, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("PUT %s: unexpected status %d: %s", path, resp.StatusCode(), truncate(resp.String(), 200))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
