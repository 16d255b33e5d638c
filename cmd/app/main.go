package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/config"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/logger"
)

const serviceName = "clinical-protocol-fhir"

func main() {
	rootCmd := &cobra.Command{
		Use:          "protocol-fhir",
		Short:        "Convert clinical protocol documents into validated FHIR bundles",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(convertCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			svc, err := service.NewProtocolService(ctx, cfg, log)
			if err != nil {
				return err
			}
			return svc.Start(ctx)
		},
	}
}

func convertCmd() *cobra.Command {
	var opts convertOptions
	cmd := &cobra.Command{
		Use:   "convert [document]",
		Short: "Run the pipeline once over a document or an authoring prompt",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Input = args[0]
			}
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			return runConvert(cmd.Context(), cfg, log, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "document kind (word-processor, typesetting, plain, pdf); detected from the file name when empty")
	cmd.Flags().StringVar(&opts.Prompt, "prompt", "", "author the protocol from this prompt instead of reading a document")
	cmd.Flags().StringVar(&opts.Format, "format", "json", "bundle output format: json or yaml")
	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "write the bundle here instead of stdout")
	cmd.Flags().StringVar(&opts.ReportPath, "report", "", "also write the validation report workbook (.xlsx) here")
	cmd.Flags().BoolVar(&opts.Deploy, "deploy", false, "deploy the bundle to the configured target when it is valid")
	return cmd
}

func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, serviceName)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}
