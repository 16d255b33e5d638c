package commands

import (
	"context"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/pipeline"
)

type DeployBundleCommand struct {
}

type DeployBundleResult struct {
	Session pipeline.Session
}

type DeployBundleHandler interface {
	Handle(ctx context.Context, cmd DeployBundleCommand) (result DeployBundleResult, err error)
}

func NewDeployBundleHandler(controller *pipeline.Controller) DeployBundleHandler {
	return &deployBundleCmdHandler{
		controller: controller,
	}
}

type deployBundleCmdHandler struct {
	controller *pipeline.Controller
}

func (h *deployBundleCmdHandler) Handle(ctx context.Context, _ DeployBundleCommand) (DeployBundleResult, error) {
	err := h.controller.Deploy(ctx)
	return DeployBundleResult{Session: h.controller.Snapshot()}, err
}
