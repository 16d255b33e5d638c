package synth

import (
	"context"
	"errors"
	"fmt"

	fhirmodel "github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/fhir/model"
	"go.uber.org/zap"
)

// SourceFallback marks a bundle produced by the local skeleton composer.
const SourceFallback = "fallback"

// DefaultLanguage is sent to the remote service when the caller gives no locale.
const DefaultLanguage = "da"

// ErrSynthesisDegraded reports that no remote candidate produced a bundle and the
// local skeleton was used instead. It never stops the pipeline.
var ErrSynthesisDegraded = errors.New("synthesis degraded: local fallback bundle used")

// Request is what every strategy receives. Strategies must not modify it.
type Request struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Strategy is one candidate way of turning text into a bundle.
type Strategy interface {
	Name() string
	Synthesize(ctx context.Context, req Request) (fhirmodel.Bundle, error)
}

// Fallback always yields a bundle.
type Fallback interface {
	BuildSkeleton() fhirmodel.Bundle
}

// AttemptError records why one strategy was skipped.
type AttemptError struct {
	Strategy string
	Err      error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s: %v", e.Strategy, e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

type Result struct {
	Bundle fhirmodel.Bundle
	// Source is the name of the strategy that produced the bundle, or SourceFallback.
	Source   string
	Attempts []*AttemptError
}

func (r Result) Degraded() bool {
	return r.Source == SourceFallback
}

// Err is nil for remote bundles. For fallback bundles it wraps ErrSynthesisDegraded
// together with every failed attempt.
func (r Result) Err() error {
	if !r.Degraded() {
		return nil
	}
	errs := make([]error, 0, len(r.Attempts)+1)
	errs = append(errs, ErrSynthesisDegraded)
	for _, a := range r.Attempts {
		errs = append(errs, a)
	}
	return errors.Join(errs...)
}

// Synthesizer tries each strategy in order and falls through to the local
// skeleton when none succeeds.
type Synthesizer struct {
	strategies []Strategy
	fallback   Fallback
	language   string
	logger     *zap.Logger
}

type Option func(*Synthesizer)

func WithStrategies(strategies ...Strategy) Option {
	return func(s *Synthesizer) { s.strategies = append(s.strategies, strategies...) }
}

func WithDefaultLanguage(lang string) Option {
	return func(s *Synthesizer) {
		if lang != "" {
			s.language = lang
		}
	}
}

func NewSynthesizer(fallback Fallback, logger *zap.Logger, opts ...Option) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Synthesizer{
		fallback: fallback,
		language: DefaultLanguage,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize never fails. A cancelled context stops the remote attempts early and
// still yields the fallback bundle; callers that care about cancellation check
// ctx themselves before committing the result.
func (s *Synthesizer) Synthesize(ctx context.Context, text, language string) Result {
	if language == "" {
		language = s.language
	}
	req := Request{Text: text, Language: language}

	var attempts []*AttemptError
	for _, st := range s.strategies {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, &AttemptError{Strategy: st.Name(), Err: err})
			break
		}

		bundle, err := st.Synthesize(ctx, req)
		if err == nil {
			s.logger.Info("Bundle synthesized remotely",
				zap.String("strategy", st.Name()),
				zap.String("bundle_id", bundle.ID),
				zap.Int("resource_count", len(bundle.Entry)),
				zap.Int("failed_attempts", len(attempts)),
			)
			return Result{Bundle: bundle, Source: st.Name(), Attempts: attempts}
		}

		s.logger.Warn("Synthesis candidate failed",
			zap.String("strategy", st.Name()),
			zap.Error(err),
		)
		attempts = append(attempts, &AttemptError{Strategy: st.Name(), Err: err})
	}

	bundle := s.fallback.BuildSkeleton()
	s.logger.Warn("Using local fallback bundle",
		zap.String("bundle_id", bundle.ID),
		zap.Int("failed_attempts", len(attempts)),
	)

	return Result{Bundle: bundle, Source: SourceFallback, Attempts: attempts}
}
