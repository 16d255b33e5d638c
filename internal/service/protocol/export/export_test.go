package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/fhir"
	fhirmodel "github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/fhir/model"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/validate"
)

func skeleton() fhirmodel.Bundle {
	return fhir.NewComposer(
		fhir.WithIDSource(func() string { return "export" }),
		fhir.WithClock(func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }),
	).BuildSkeleton()
}

func assertStructurallyEqual(t *testing.T, want, got fhirmodel.Bundle) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Type, got.Type)
	assert.Equal(t, want.Timestamp, got.Timestamp)
	require.Len(t, got.Entry, len(want.Entry))
	for i, w := range want.Resources() {
		g := got.Entry[i].Resource
		require.NotNil(t, g)
		assert.Equal(t, w.Key(), g.Key())
		assert.Equal(t, w.References(), g.References())
	}
}

func TestBundleJSON_RoundTrip(t *testing.T) {
	b := skeleton()

	out, err := BundleJSON(b)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("{\n  \"resourceType\": \"Bundle\"")))
	assert.True(t, bytes.HasSuffix(out, []byte("}\n")))

	parsed, err := ParseBundleJSON(out)
	require.NoError(t, err)
	assertStructurallyEqual(t, b, parsed)

	again, err := BundleJSON(parsed)
	require.NoError(t, err)
	assert.JSONEq(t, string(out), string(again))
}

func TestParseBundleJSON_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "<Bundle/>"},
		{name: "wrong resource type", data: `{"resourceType":"Patient","id":"p"}`},
		{name: "entry resource not an object", data: `{"resourceType":"Bundle","entry":[{"resource":[]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBundleJSON([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestBundleYAML(t *testing.T) {
	b := skeleton()

	out, err := BundleYAML(b)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "resourceType: Bundle\n"))

	js, err := yaml.YAMLToJSON(out)
	require.NoError(t, err)
	parsed, err := ParseBundleJSON(js)
	require.NoError(t, err)
	assertStructurallyEqual(t, b, parsed)
}

func TestReportWorkbook(t *testing.T) {
	report := validate.New(nil).Validate(skeleton())

	data, err := ReportWorkbook(report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, IssuesSheet}, f.GetSheetList())

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Valid", "TRUE"},
		{"Resources", "5"},
		{"Errors", "0"},
		{"Warnings", "1"},
		{"Information", "1"},
	}, summary)

	issues, err := f.GetRows(IssuesSheet)
	require.NoError(t, err)
	require.Len(t, issues, 1+len(report.Issues))
	assert.Equal(t, []string{"Severity", "Code", "Details", "Location"}, issues[0])
	for i, issue := range report.Issues {
		assert.Equal(t, []string{string(issue.Severity), string(issue.Code), issue.Details, issue.Location}, issues[i+1])
	}
}

func TestReportWorkbook_NoIssues(t *testing.T) {
	data, err := ReportWorkbook(validate.Report{Valid: true, Issues: []validate.Issue{}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	issues, err := f.GetRows(IssuesSheet)
	require.NoError(t, err)
	assert.Len(t, issues, 1)
}
