package app

import (
	"context"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/app/commands"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/app/queries"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/pipeline"
)

type CommandBus interface {
	IngestDocument(ctx context.Context, cmd commands.IngestDocumentCommand) (commands.IngestDocumentResult, error)
	GenerateProtocol(ctx context.Context, cmd commands.GenerateProtocolCommand) (commands.GenerateProtocolResult, error)
	SynthesizeBundle(ctx context.Context, cmd commands.SynthesizeBundleCommand) (commands.SynthesizeBundleResult, error)
	DeployBundle(ctx context.Context, cmd commands.DeployBundleCommand) (commands.DeployBundleResult, error)
	Navigate(ctx context.Context, cmd commands.NavigateCommand) (commands.NavigateResult, error)
}

type QueryBus interface {
	GetSession(ctx context.Context, q queries.GetSessionQuery) (queries.GetSessionResult, error)
	ExportBundle(ctx context.Context, q queries.ExportBundleQuery) (queries.ExportBundleResult, error)
	ExportReport(ctx context.Context, q queries.ExportReportQuery) (queries.ExportReportResult, error)
}

type commandBus struct {
	ingestDocument   commands.IngestDocumentHandler
	generateProtocol commands.GenerateProtocolHandler
	synthesizeBundle commands.SynthesizeBundleHandler
	deployBundle     commands.DeployBundleHandler
	navigate         commands.NavigateHandler
}

type queryBus struct {
	getSession   queries.GetSessionQueryHandler
	exportBundle queries.ExportBundleQueryHandler
	exportReport queries.ExportReportQueryHandler
}

func NewCommandBus(
	ingest commands.IngestDocumentHandler,
	generate commands.GenerateProtocolHandler,
	synthesize commands.SynthesizeBundleHandler,
	deploy commands.DeployBundleHandler,
	navigate commands.NavigateHandler,
) CommandBus {
	return &commandBus{
		ingestDocument:   ingest,
		generateProtocol: generate,
		synthesizeBundle: synthesize,
		deployBundle:     deploy,
		navigate:         navigate,
	}
}

func NewQueryBus(
	get queries.GetSessionQueryHandler,
	exportBundle queries.ExportBundleQueryHandler,
	exportReport queries.ExportReportQueryHandler,
) QueryBus {
	return &queryBus{
		getSession:   get,
		exportBundle: exportBundle,
		exportReport: exportReport,
	}
}

// NewBuses wires every handler to the same controller.
func NewBuses(controller *pipeline.Controller) (CommandBus, QueryBus) {
	cmds := NewCommandBus(
		commands.NewIngestDocumentHandler(controller),
		commands.NewGenerateProtocolHandler(controller),
		commands.NewSynthesizeBundleHandler(controller),
		commands.NewDeployBundleHandler(controller),
		commands.NewNavigateHandler(controller),
	)
	qs := NewQueryBus(
		queries.NewGetSessionQueryHandler(controller),
		queries.NewExportBundleQueryHandler(controller),
		queries.NewExportReportQueryHandler(controller),
	)
	return cmds, qs
}

func (b *commandBus) IngestDocument(ctx context.Context, cmd commands.IngestDocumentCommand) (commands.IngestDocumentResult, error) {
	return b.ingestDocument.Handle(ctx, cmd)
}

func (b *commandBus) GenerateProtocol(ctx context.Context, cmd commands.GenerateProtocolCommand) (commands.GenerateProtocolResult, error) {
	return b.generateProtocol.Handle(ctx, cmd)
}

func (b *commandBus) SynthesizeBundle(ctx context.Context, cmd commands.SynthesizeBundleCommand) (commands.SynthesizeBundleResult, error) {
	return b.synthesizeBundle.Handle(ctx, cmd)
}

func (b *commandBus) DeployBundle(ctx context.Context, cmd commands.DeployBundleCommand) (commands.DeployBundleResult, error) {
	return b.deployBundle.Handle(ctx, cmd)
}

func (b *commandBus) Navigate(ctx context.Context, cmd commands.NavigateCommand) (commands.NavigateResult, error) {
	return b.navigate.Handle(ctx, cmd)
}

func (b *queryBus) GetSession(ctx context.Context, q queries.GetSessionQuery) (queries.GetSessionResult, error) {
	return b.getSession.Handle(ctx, q)
}

func (b *queryBus) ExportBundle(ctx context.Context, q queries.ExportBundleQuery) (queries.ExportBundleResult, error) {
	return b.exportBundle.Handle(ctx, q)
}

func (b *queryBus) ExportReport(ctx context.Context, q queries.ExportReportQuery) (queries.ExportReportResult, error) {
	return b.exportReport.Handle(ctx, q)
}
