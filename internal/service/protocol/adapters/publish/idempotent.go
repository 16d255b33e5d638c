package publish

import (
	"context"
	"errors"

	fhirmodel "github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/fhir/model"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/deploy"
	"go.uber.org/zap"
)

// Idempotent wraps a publisher so that a bundle id is sent at most once while
// its ledger claim lives.
type Idempotent struct {
	next   deploy.Publisher
	ledger Ledger
	logger *zap.Logger
}

func NewIdempotent(next deploy.Publisher, ledger Ledger, logger *zap.Logger) *Idempotent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Idempotent{next: next, ledger: ledger, logger: logger}
}

func (p *Idempotent) Name() string {
	return p.next.Name()
}

// ErrMissingBundleID is returned for a bundle that has no id to claim.
var ErrMissingBundleID = errors.New("bundle has no id")

func (p *Idempotent) Publish(ctx context.Context, bundle fhirmodel.Bundle) error {
	if bundle.ID == "" {
		return ErrMissingBundleID
	}
	first, err := p.ledger.Claim(ctx, bundle.ID)
	if err != nil {
		return err
	}
	if !first {
		p.logger.Info("Bundle already published, skipping", zap.String("bundle_id", bundle.ID))
		return nil
	}

	if err := p.next.Publish(ctx, bundle); err != nil {
		// release with a fresh context: ctx may be the reason the publish failed
		if relErr := p.ledger.Release(context.WithoutCancel(ctx), bundle.ID); relErr != nil {
			p.logger.Warn("Failed to release publish claim", zap.String("bundle_id", bundle.ID), zap.Error(relErr))
		}
		return err
	}
	return nil
}
