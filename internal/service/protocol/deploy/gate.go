package deploy

import (
	"context"
	"errors"

	fhirmodel "github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/fhir/model"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/validate"
	"go.uber.org/zap"
)

type State string

const (
	StateNotDeployed State = "NotDeployed"
	StateDeployed    State = "Deployed"
)

// Publisher sends a bundle to the target system. Publishing the same bundle
// twice must be harmless.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, bundle fhirmodel.Bundle) error
}

// Gate lets a bundle through only when its validation report is absent or
// valid. The gate is not safe for concurrent use; its owner serialises calls.
type Gate struct {
	state     State
	publisher Publisher
	logger    *zap.Logger
}

func NewGate(publisher Publisher, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		state:     StateNotDeployed,
		publisher: publisher,
		logger:    logger,
	}
}

func (g *Gate) State() State {
	return g.state
}

// Deploy publishes bundle and moves to StateDeployed.
//
// A nil report is permissive: bundles that were never validated may be
// deployed. A report with Valid == false fails closed with
// DeploymentBlockedError and nothing is published.
func (g *Gate) Deploy(ctx context.Context, bundle fhirmodel.Bundle, report *validate.Report) error {
	if g.state == StateDeployed {
		return ErrAlreadyDeployed
	}

	if report != nil && !report.Valid {
		g.logger.Warn("Deployment blocked by validation",
			zap.String("bundle_id", bundle.ID),
			zap.Int("errors", report.Errors),
		)
		return &DeploymentBlockedError{Errors: report.Errors, Issues: report.Issues}
	}
	if report == nil {
		g.logger.Warn("Deploying bundle without a validation report", zap.String("bundle_id", bundle.ID))
	}

	if err := g.publisher.Publish(ctx, bundle); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return ctxErr
		}
		g.logger.Error("Deployment failed",
			zap.String("bundle_id", bundle.ID),
			zap.String("target", g.publisher.Name()),
			zap.Error(err),
		)
		return &DeploymentTransportError{Target: g.publisher.Name(), Cause: err}
	}

	g.state = StateDeployed
	g.logger.Info("Bundle deployed",
		zap.String("bundle_id", bundle.ID),
		zap.String("target", g.publisher.Name()),
		zap.Int("resource_count", len(bundle.Entry)),
	)
	return nil
}

// Reset returns the gate to StateNotDeployed. Only a full session reset calls it.
func (g *Gate) Reset() {
	g.state = StateNotDeployed
}
