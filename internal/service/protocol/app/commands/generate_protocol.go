package commands

import (
	"context"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/pipeline"
)

type GenerateProtocolCommand struct {
	Prompt string
}

type GenerateProtocolResult struct {
	Session pipeline.Session
}

type GenerateProtocolHandler interface {
	Handle(ctx context.Context, cmd GenerateProtocolCommand) (result GenerateProtocolResult, err error)
}

func NewGenerateProtocolHandler(controller *pipeline.Controller) GenerateProtocolHandler {
	return &generateProtocolCmdHandler{
		controller: controller,
	}
}

type generateProtocolCmdHandler struct {
	controller *pipeline.Controller
}

func (h *generateProtocolCmdHandler) Handle(_ context.Context, cmd GenerateProtocolCommand) (GenerateProtocolResult, error) {
	err := h.controller.GenerateProtocol(cmd.Prompt)
	return GenerateProtocolResult{Session: h.controller.Snapshot()}, err
}
