package queries

import (
	"context"
	"fmt"
	"strings"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/export"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/pipeline"
)

type BundleFormat string

const (
	FormatJSON BundleFormat = "json"
	FormatYAML BundleFormat = "yaml"
)

type ExportBundleQuery struct {
	// Format defaults to FormatJSON.
	Format BundleFormat
}

type ExportBundleResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ExportBundleQueryHandler interface {
	Handle(ctx context.Context, query ExportBundleQuery) (result ExportBundleResult, err error)
}

func NewExportBundleQueryHandler(controller *pipeline.Controller) ExportBundleQueryHandler {
	return &exportBundleQueryHandler{
		controller: controller,
	}
}

type exportBundleQueryHandler struct {
	controller *pipeline.Controller
}

func (h *exportBundleQueryHandler) Handle(_ context.Context, query ExportBundleQuery) (ExportBundleResult, error) {
	session := h.controller.Snapshot()
	if session.Bundle == nil {
		return ExportBundleResult{}, pipeline.ErrNoBundle
	}

	switch query.Format {
	case "", FormatJSON:
		data, err := export.BundleJSON(*session.Bundle)
		if err != nil {
			return ExportBundleResult{}, err
		}
		return ExportBundleResult{
			Filename:    export.DefaultBundleFilename,
			ContentType: "application/fhir+json",
			Data:        data,
		}, nil
	case FormatYAML:
		data, err := export.BundleYAML(*session.Bundle)
		if err != nil {
			return ExportBundleResult{}, err
		}
		return ExportBundleResult{
			Filename:    strings.TrimSuffix(export.DefaultBundleFilename, ".json") + ".yaml",
			ContentType: "application/yaml",
			Data:        data,
		}, nil
	default:
		return ExportBundleResult{}, fmt.Errorf("unsupported bundle format %q", query.Format)
	}
}
