package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/config"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/fhir"
	protocolHTTP "github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/http"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/publish"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/app"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/authoring"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/deploy"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/extract"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/pipeline"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/synth"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/validate"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/runtime"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Service struct {
	httpServer *http.Server
	controller *pipeline.Controller
	closers    []func() error
	logger     *zap.Logger
}

// NewProtocolService wires the pipeline and its HTTP surface from cfg.
func NewProtocolService(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	controller, closers, err := NewController(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	cmdBus, queryBus := app.NewBuses(controller)
	protocolServer := protocolHTTP.NewServer(cmdBus, queryBus, logger)

	httpServer, err := runtime.NewHTTPServer(cfg, protocolServer, logger)
	if err != nil {
		closeAll(closers, logger)
		return nil, err
	}

	return &Service{
		httpServer: httpServer,
		controller: controller,
		closers:    closers,
		logger:     logger,
	}, nil
}

// NewController builds the pipeline controller and returns cleanup funcs for
// any external clients it opened.
func NewController(ctx context.Context, cfg config.Config, logger *zap.Logger) (*pipeline.Controller, []func() error, error) {
	var closers []func() error

	// synthesis
	var strategies []synth.Strategy
	if cfg.Synth.BaseURL != "" {
		client := synth.NewRemoteClient(cfg.Synth.BaseURL, cfg.Synth.Timeout)
		strategies = synth.RemoteChain(client, cfg.Synth.Endpoints)
	} else {
		logger.Warn("SYNTH_BASE_URL not set, every bundle will be the local skeleton")
	}
	synthesizer := synth.NewSynthesizer(fhir.NewComposer(), logger,
		synth.WithStrategies(strategies...),
		synth.WithDefaultLanguage(cfg.Synth.Language),
	)

	// validation
	var validateOpts []validate.Option
	if cfg.TerminologyFile != "" {
		systems, err := validate.LoadCodeSystems(cfg.TerminologyFile)
		if err != nil {
			return nil, nil, err
		}
		validateOpts = append(validateOpts, validate.WithCodeSystems(systems...))
	}
	validator := validate.New(logger, validateOpts...)

	// deployment
	publisher, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	var ledger publish.Ledger = publish.NewMemoryLedger()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		closers = append(closers, client.Close)
		ledger = publish.NewRedisLedger(client, cfg.Deploy.LedgerTTL)
	}
	gate := deploy.NewGate(publish.NewIdempotent(publisher, ledger, logger), logger)

	controller := pipeline.NewController(
		extract.NewDefault(logger),
		authoring.NewGenerator(),
		synthesizer,
		validator,
		gate,
		pipeline.WithLanguage(cfg.Synth.Language),
		pipeline.WithLogger(logger),
	)
	return controller, closers, nil
}

func newPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (deploy.Publisher, error) {
	switch cfg.Deploy.Target {
	case config.DeployTargetFHIR:
		return publish.NewFHIRServer(cfg.Deploy.FHIRBaseURL, cfg.Deploy.FHIRToken, cfg.Deploy.Timeout, logger), nil
	case config.DeployTargetObjectStore:
		client, err := publish.NewMinioClient(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
		if err != nil {
			return nil, err
		}
		if err := publish.EnsureBucket(ctx, client, cfg.Minio.Bucket); err != nil {
			return nil, err
		}
		return publish.NewObjectStore(client, cfg.Minio.Bucket, logger), nil
	case config.DeployTargetSimulated, "":
		return publish.NewSimulated(cfg.Deploy.SimulatedDelay, logger), nil
	default:
		return nil, fmt.Errorf("unknown deploy target %q", cfg.Deploy.Target)
	}
}

// Start serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts down gracefully.
func (s *Service) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer closeAll(s.closers, s.logger)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down...")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(timeoutCtx); err != nil {
		return err
	}

	s.logger.Info("Server stopped.")

	return nil
}

func closeAll(closers []func() error, logger *zap.Logger) {
	for _, c := range closers {
		if err := c(); err != nil {
			logger.Warn("Close failed", zap.Error(err))
		}
	}
}
