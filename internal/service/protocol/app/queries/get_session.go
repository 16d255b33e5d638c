package queries

import (
	"context"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/pipeline"
)

type GetSessionQuery struct {
}

type GetSessionResult struct {
	Session pipeline.Session
}

type GetSessionQueryHandler interface {
	Handle(ctx context.Context, query GetSessionQuery) (result GetSessionResult, err error)
}

func NewGetSessionQueryHandler(controller *pipeline.Controller) GetSessionQueryHandler {
	return &getSessionQueryHandler{
		controller: controller,
	}
}

type getSessionQueryHandler struct {
	controller *pipeline.Controller
}

func (h *getSessionQueryHandler) Handle(_ context.Context, _ GetSessionQuery) (GetSessionResult, error) {
	return GetSessionResult{Session: h.controller.Snapshot()}, nil
}
