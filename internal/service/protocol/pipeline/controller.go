package pipeline

import (
	"context"
	"sync"

	fhirmodel "github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/fhir/model"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/deploy"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/extract"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/synth"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/validate"
	"go.uber.org/zap"
)

type Extractor interface {
	Extract(ctx context.Context, doc extract.Document) (extract.ExtractedText, error)
}

type Author interface {
	Generate(prompt string) extract.ExtractedText
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) synth.Result
}

type Validator interface {
	Validate(bundle fhirmodel.Bundle) validate.Report
}

type Gate interface {
	Deploy(ctx context.Context, bundle fhirmodel.Bundle, report *validate.Report) error
	State() deploy.State
	Reset()
}

// Controller owns the single pipeline session and moves it through the stages.
// Calls are serialised; a long synthesis or deployment blocks other callers
// until it returns.
type Controller struct {
	extractor   Extractor
	author      Author
	synthesizer Synthesizer
	validator   Validator
	gate        Gate
	language    string
	logger      *zap.Logger

	mu      sync.Mutex
	session Session
}

type Option func(*Controller)

// WithLanguage sets the locale sent with synthesis requests.
func WithLanguage(lang string) Option {
	return func(c *Controller) { c.language = lang }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewController(extractor Extractor, author Author, synthesizer Synthesizer, validator Validator, gate Gate, opts ...Option) *Controller {
	c := &Controller{
		extractor:   extractor,
		author:      author,
		synthesizer: synthesizer,
		validator:   validator,
		gate:        gate,
		logger:      zap.NewNop(),
		session:     newSession(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current session.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.clone()
}

// Ingest extracts text from doc and advances from StageInput to StageText.
func (c *Controller) Ingest(ctx context.Context, doc extract.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.LastError = ""

	if c.session.Stage != StageInput {
		return c.fail(invalidTransition("ingest document", c.session.Stage))
	}

	doc.Content = append([]byte(nil), doc.Content...)
	text, err := c.extractor.Extract(ctx, doc)
	if err != nil {
		return c.fail(err)
	}

	c.session.Document = &doc
	c.session.Text = &text
	c.session.Stage = StageText
	c.logger.Info("Document ingested",
		zap.String("document", doc.Name),
		zap.String("kind", string(doc.Kind)),
		zap.Int("chars", len(text.Text)),
	)
	return nil
}

// GenerateProtocol authors protocol text from prompt and advances from
// StageInput to StageText.
func (c *Controller) GenerateProtocol(prompt string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.LastError = ""

	if c.session.Stage != StageInput {
		return c.fail(invalidTransition("generate protocol", c.session.Stage))
	}

	text := c.author.Generate(prompt)
	c.session.Document = nil
	c.session.Text = &text
	c.session.Stage = StageText
	c.logger.Info("Protocol text generated", zap.Int("chars", len(text.Text)))
	return nil
}

// Synthesize builds and validates a bundle from the session text and advances
// from StageText to StageReview, whether or not the bundle is valid. If ctx is
// cancelled nothing is committed.
func (c *Controller) Synthesize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.LastError = ""

	if c.session.Stage != StageText {
		return c.fail(invalidTransition("synthesize", c.session.Stage))
	}
	if c.session.Text == nil {
		return c.fail(ErrNoText)
	}

	result := c.synthesizer.Synthesize(ctx, c.session.Text.Text, c.language)
	if err := ctx.Err(); err != nil {
		return c.fail(err)
	}
	if result.Degraded() {
		c.logger.Warn("Synthesis degraded", zap.Error(result.Err()))
	}

	report := c.validator.Validate(result.Bundle)

	bundle := result.Bundle
	c.session.Bundle = &bundle
	c.session.Source = result.Source
	c.session.Report = &report
	c.session.Stage = StageReview
	c.logger.Info("Bundle ready for review",
		zap.String("bundle_id", bundle.ID),
		zap.String("source", result.Source),
		zap.Bool("valid", report.Valid),
		zap.Int("errors", report.Errors),
		zap.Int("warnings", report.Warnings),
	)
	return nil
}

// Deploy sends the reviewed bundle through the deployment gate and advances
// from StageReview to StageDeployed. A blocked or failed deployment leaves the
// session in StageReview with the error recorded.
func (c *Controller) Deploy(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.LastError = ""

	if c.session.Stage != StageReview {
		return c.fail(invalidTransition("deploy", c.session.Stage))
	}
	if c.session.Bundle == nil {
		return c.fail(ErrNoBundle)
	}

	if err := c.gate.Deploy(ctx, *c.session.Bundle, c.session.Report); err != nil {
		return c.fail(err)
	}

	c.session.Deployed = c.gate.State() == deploy.StateDeployed
	c.session.Stage = StageDeployed
	return nil
}

// Back returns from StageReview to StageText. The extracted text is kept; the
// bundle and report are dropped so the next Synthesize starts clean.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.LastError = ""

	if c.session.Stage != StageReview {
		return c.fail(invalidTransition("back", c.session.Stage))
	}

	c.session.Bundle = nil
	c.session.Source = ""
	c.session.Report = nil
	c.session.Stage = StageText
	return nil
}

// Reset clears the session and the deployment gate. It is valid from any stage.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gate.Reset()
	c.session = newSession()
	c.logger.Info("Session reset")
}

func (c *Controller) fail(err error) error {
	c.session.LastError = err.Error()
	return err
}
