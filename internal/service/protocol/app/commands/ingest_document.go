package commands

import (
	"context"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/extract"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/pipeline"
)

type IngestDocumentCommand struct {
	Filename string
	// Kind may be empty, in which case it is detected from Filename and MediaType.
	Kind      extract.Kind
	MediaType string
	Content   []byte
}

type IngestDocumentResult struct {
	Session pipeline.Session
}

type IngestDocumentHandler interface {
	Handle(ctx context.Context, cmd IngestDocumentCommand) (result IngestDocumentResult, err error)
}

func NewIngestDocumentHandler(controller *pipeline.Controller) IngestDocumentHandler {
	return &ingestDocumentCmdHandler{
		controller: controller,
	}
}

type ingestDocumentCmdHandler struct {
	controller *pipeline.Controller
}

func (h *ingestDocumentCmdHandler) Handle(ctx context.Context, cmd IngestDocumentCommand) (IngestDocumentResult, error) {
	kind := cmd.Kind
	if kind == "" {
		kind = extract.DetectKind(cmd.Filename, cmd.MediaType)
	}

	err := h.controller.Ingest(ctx, extract.Document{
		Name:    cmd.Filename,
		Kind:    kind,
		Content: cmd.Content,
	})
	return IngestDocumentResult{Session: h.controller.Snapshot()}, err
}
