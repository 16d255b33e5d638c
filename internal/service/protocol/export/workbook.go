package export

import (
	"bytes"
	"fmt"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/validate"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Summary"
	IssuesSheet  = "Issues"

	// DefaultReportFilename is the download name offered for a report workbook.
	DefaultReportFilename = "validation-report.xlsx"
)

var issueHeaders = []string{"Severity", "Code", "Details", "Location"}

// ReportWorkbook renders report as an xlsx file with a Summary sheet of counts
// and an Issues sheet listing every issue in report order.
func ReportWorkbook(report validate.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	if _, err := f.NewSheet(IssuesSheet); err != nil {
		return nil, fmt.Errorf("create issues sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	summary := [][]any{
		{"Valid", report.Valid},
		{"Resources", report.ResourceCount},
		{"Errors", report.Errors},
		{"Warnings", report.Warnings},
		{"Information", report.Information},
	}
	for i, row := range summary {
		if err := setRow(f, SummarySheet, i+1, row); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", fmt.Sprintf("A%d", len(summary)), headerStyle); err != nil {
		return nil, fmt.Errorf("style summary labels: %w", err)
	}

	header := make([]any, len(issueHeaders))
	for i, h := range issueHeaders {
		header[i] = h
	}
	if err := setRow(f, IssuesSheet, 1, header); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(IssuesSheet, "A1", "D1", headerStyle); err != nil {
		return nil, fmt.Errorf("style issue header: %w", err)
	}
	for i, issue := range report.Issues {
		row := []any{string(issue.Severity), string(issue.Code), issue.Details, issue.Location}
		if err := setRow(f, IssuesSheet, i+2, row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(IssuesSheet, "C", "D", 50); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetPanes(IssuesSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze issue header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
