package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/config"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/export"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/extract"
)

type convertOptions struct {
	Input      string
	Kind       string
	Prompt     string
	Format     string
	Output     string
	ReportPath string
	Deploy     bool
}

var errInvalidBundle = errors.New("bundle is not valid")

// runConvert drives one session from input to (optionally) deployment and
// writes the bundle to stdout or opts.Output.
func runConvert(ctx context.Context, cfg config.Config, log *zap.Logger, opts convertOptions, stdout, stderr io.Writer) error {
	if opts.Input == "" && opts.Prompt == "" {
		return errors.New("give a document path or --prompt")
	}
	if opts.Format != "json" && opts.Format != "yaml" {
		return fmt.Errorf("unknown format %q", opts.Format)
	}

	controller, closers, err := service.NewController(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			_ = c()
		}
	}()

	if opts.Input != "" {
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return err
		}
		kind := extract.ParseKind(opts.Kind)
		if opts.Kind == "" {
			kind = extract.DetectKind(opts.Input, "")
		}
		doc := extract.Document{Name: filepath.Base(opts.Input), Kind: kind, Content: content}
		if err := controller.Ingest(ctx, doc); err != nil {
			return err
		}
	} else if err := controller.GenerateProtocol(opts.Prompt); err != nil {
		return err
	}

	if err := controller.Synthesize(ctx); err != nil {
		return err
	}
	session := controller.Snapshot()

	var out []byte
	if opts.Format == "yaml" {
		out, err = export.BundleYAML(*session.Bundle)
	} else {
		out, err = export.BundleJSON(*session.Bundle)
	}
	if err != nil {
		return err
	}
	if opts.Output == "" {
		if _, err := stdout.Write(out); err != nil {
			return err
		}
	} else if err := os.WriteFile(opts.Output, out, 0o644); err != nil {
		return err
	}

	if opts.ReportPath != "" {
		workbook, err := export.ReportWorkbook(*session.Report)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.ReportPath, workbook, 0o644); err != nil {
			return err
		}
	}

	report := session.Report
	fmt.Fprintf(stderr, "bundle %s from %s: %d resources, valid=%t, %d errors, %d warnings\n",
		session.Bundle.ID, session.Source, report.ResourceCount, report.Valid, report.Errors, report.Warnings)
	for _, issue := range report.Issues {
		fmt.Fprintln(stderr, "  "+issue.String())
	}

	if opts.Deploy {
		if err := controller.Deploy(ctx); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "deployed to %s\n", cfg.Deploy.Target)
		return nil
	}
	if !report.Valid {
		return errInvalidBundle
	}
	return nil
}
