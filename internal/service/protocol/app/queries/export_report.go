package queries

import (
	"context"
	"errors"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/export"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/pipeline"
)

// ErrNoReport is returned when the session has not been validated yet.
var ErrNoReport = errors.New("no validation report in session")

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportReportQuery struct {
}

type ExportReportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ExportReportQueryHandler interface {
	Handle(ctx context.Context, query ExportReportQuery) (result ExportReportResult, err error)
}

func NewExportReportQueryHandler(controller *pipeline.Controller) ExportReportQueryHandler {
	return &exportReportQueryHandler{
		controller: controller,
	}
}

type exportReportQueryHandler struct {
	controller *pipeline.Controller
}

func (h *exportReportQueryHandler) Handle(_ context.Context, _ ExportReportQuery) (ExportReportResult, error) {
	session := h.controller.Snapshot()
	if session.Report == nil {
		return ExportReportResult{}, ErrNoReport
	}

	data, err := export.ReportWorkbook(*session.Report)
	if err != nil {
		return ExportReportResult{}, err
	}
	return ExportReportResult{
		Filename:    export.DefaultReportFilename,
		ContentType: xlsxContentType,
		Data:        data,
	}, nil
}
