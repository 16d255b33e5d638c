package commands

import (
	"context"
	"fmt"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/pipeline"
)

type NavigateAction string

const (
	// NavigateBack returns from review to the text stage.
	NavigateBack NavigateAction = "back"
	// NavigateReset starts a new session.
	NavigateReset NavigateAction = "reset"
)

type NavigateCommand struct {
	Action NavigateAction
}

type NavigateResult struct {
	Session pipeline.Session
}

type NavigateHandler interface {
	Handle(ctx context.Context, cmd NavigateCommand) (result NavigateResult, err error)
}

func NewNavigateHandler(controller *pipeline.Controller) NavigateHandler {
	return &navigateCmdHandler{
		controller: controller,
	}
}

type navigateCmdHandler struct {
	controller *pipeline.Controller
}

func (h *navigateCmdHandler) Handle(_ context.Context, cmd NavigateCommand) (NavigateResult, error) {
	var err error
	switch cmd.Action {
	case NavigateBack:
		err = h.controller.Back()
	case NavigateReset:
		h.controller.Reset()
	default:
		err = fmt.Errorf("unknown navigation action %q", cmd.Action)
	}
	return NavigateResult{Session: h.controller.Snapshot()}, err
}
