package publish

import (
	"context"
	"sync"
	"time"

	fhirmodel "github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/fhir/model"
	"go.uber.org/zap"
)

// Simulated stands in for a FHIR server during demos: it waits, then records
// the bundle id.
type Simulated struct {
	delay  time.Duration
	logger *zap.Logger

	mu        sync.Mutex
	published []string
}

func NewSimulated(delay time.Duration, logger *zap.Logger) *Simulated {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulated{delay: delay, logger: logger}
}

func (s *Simulated) Name() string {
	return "simulated"
}

func (s *Simulated) Publish(ctx context.Context, bundle fhirmodel.Bundle) error {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	s.published = append(s.published, bundle.ID)
	s.mu.Unlock()

	s.logger.Debug("Simulated publish", zap.String("bundle_id", bundle.ID))
	return nil
}

// Published lists the bundle ids seen so far, in order.
func (s *Simulated) Published() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.published...)
}
