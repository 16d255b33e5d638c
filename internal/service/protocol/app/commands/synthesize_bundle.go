package commands

import (
	"context"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/pipeline"
)

type SynthesizeBundleCommand struct {
}

type SynthesizeBundleResult struct {
	Session pipeline.Session
}

type SynthesizeBundleHandler interface {
	Handle(ctx context.Context, cmd SynthesizeBundleCommand) (result SynthesizeBundleResult, err error)
}

func NewSynthesizeBundleHandler(controller *pipeline.Controller) SynthesizeBundleHandler {
	return &synthesizeBundleCmdHandler{
		controller: controller,
	}
}

type synthesizeBundleCmdHandler struct {
	controller *pipeline.Controller
}

func (h *synthesizeBundleCmdHandler) Handle(ctx context.Context, _ SynthesizeBundleCommand) (SynthesizeBundleResult, error) {
	err := h.controller.Synthesize(ctx)
	return SynthesizeBundleResult{Session: h.controller.Snapshot()}, err
}
