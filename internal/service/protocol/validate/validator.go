package validate

import (
	fhirmodel "github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/fhir/model"
	"go.uber.org/zap"
)

// Validator applies a fixed rule set. It is a baseline, not a FHIR schema
// validator.
type Validator struct {
	rules  []Rule
	logger *zap.Logger
}

type Option func(*validatorConfig)

type validatorConfig struct {
	codeSystems []string
	extra       []Rule
}

// WithCodeSystems adds recognised code systems on top of DefaultCodeSystems.
func WithCodeSystems(systems ...string) Option {
	return func(c *validatorConfig) { c.codeSystems = append(c.codeSystems, systems...) }
}

// WithRules appends rules after the built-in ones.
func WithRules(rules ...Rule) Option {
	return func(c *validatorConfig) { c.extra = append(c.extra, rules...) }
}

func New(logger *zap.Logger, opts ...Option) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := validatorConfig{codeSystems: append([]string(nil), DefaultCodeSystems...)}
	for _, opt := range opts {
		opt(&cfg)
	}

	rules := []Rule{
		resourceSummary{},
		structure{},
		newCodeSystems(cfg.codeSystems),
	}
	rules = append(rules, cfg.extra...)

	return &Validator{rules: rules, logger: logger}
}

// Validate never fails and never panics. A rule that panics turns the whole run
// into a single validation-failed error.
func (v *Validator) Validate(bundle fhirmodel.Bundle) (report Report) {
	defer func() {
		if rec := recover(); rec != nil {
			v.logger.Error("Validation aborted", zap.Any("cause", rec), zap.String("bundle_id", bundle.ID))
			report = failedReport(rec)
		}
	}()

	var issues []Issue
	for _, rule := range v.rules {
		issues = append(issues, rule.Check(bundle)...)
	}
	report = newReport(len(bundle.Entry), issues)

	v.logger.Debug("Bundle validated",
		zap.String("bundle_id", bundle.ID),
		zap.Bool("valid", report.Valid),
		zap.Int("errors", report.Errors),
		zap.Int("warnings", report.Warnings),
	)
	return report
}
