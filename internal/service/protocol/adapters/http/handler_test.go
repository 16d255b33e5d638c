package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/fhir"
	fhirmodel "github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/fhir/model"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/http/openapi"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/app"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/authoring"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/deploy"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/export"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/extract"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/pipeline"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/synth"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/validate"
)

type fakePublisher struct {
	err error
}

func (p *fakePublisher) Name() string { return "fake" }

func (p *fakePublisher) Publish(context.Context, fhirmodel.Bundle) error { return p.err }

func newTestServer(t *testing.T, publisher deploy.Publisher, opts ...validate.Option) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	controller := pipeline.NewController(
		extract.NewDefault(logger),
		authoring.NewGenerator(),
		synth.NewSynthesizer(fhir.NewComposer(), logger),
		validate.New(logger, opts...),
		deploy.NewGate(publisher, logger),
	)
	cmdBus, queryBus := app.NewBuses(controller)
	handler, err := Router(NewServer(cmdBus, queryBus, logger))
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, contentType, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeSession(t *testing.T, resp *http.Response) openapi.Session {
	t.Helper()
	var s openapi.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
	return s
}

func decodeError(t *testing.T, resp *http.Response) openapi.Error {
	t.Helper()
	var e openapi.Error
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, &fakePublisher{})

	resp := do(t, http.MethodGet, srv.URL+"/health", "", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_FullSession(t *testing.T) {
	srv := newTestServer(t, &fakePublisher{})

	resp := do(t, http.MethodPost, srv.URL+"/session/document?kind=typesetting&filename=protocol.tex", "text/plain", `\section{Intro}Patient note.`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s := decodeSession(t, resp)
	assert.Equal(t, 2, s.Stage)
	require.NotNil(t, s.Text)
	assert.Equal(t, "Intro Patient note.", *s.Text)
	assert.Equal(t, "uploaded", *s.Provenance)
	assert.Equal(t, "protocol.tex", s.Document.Name)

	resp = do(t, http.MethodPost, srv.URL+"/session/synthesize", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s = decodeSession(t, resp)
	assert.Equal(t, 3, s.Stage)
	require.NotNil(t, s.Bundle)
	assert.Equal(t, synth.SourceFallback, s.Bundle.Source)
	assert.Equal(t, 5, s.Bundle.ResourceCount)
	assert.True(t, s.Report.Valid)
	assert.Equal(t, 1, s.Report.Warnings)

	resp = do(t, http.MethodGet, srv.URL+"/session/bundle", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/fhir+json", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), export.DefaultBundleFilename)

	resp = do(t, http.MethodGet, srv.URL+"/session/report.xlsx", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/session/deploy", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s = decodeSession(t, resp)
	assert.Equal(t, 4, s.Stage)
	assert.True(t, s.Deployed)

	resp = do(t, http.MethodPost, srv.URL+"/session/deploy", "", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/session/reset", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s = decodeSession(t, resp)
	assert.Equal(t, 1, s.Stage)
	assert.Nil(t, s.Bundle)
}

func TestServer_GenerateProtocolAndBack(t *testing.T) {
	srv := newTestServer(t, &fakePublisher{})

	resp := do(t, http.MethodPost, srv.URL+"/session/protocol", "application/json", `{"prompt":"sleep apnoea"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s := decodeSession(t, resp)
	assert.Equal(t, "ai-generated", *s.Provenance)
	assert.Contains(t, *s.Text, "SLEEP APNOEA")

	do(t, http.MethodPost, srv.URL+"/session/synthesize", "", "")
	resp = do(t, http.MethodPost, srv.URL+"/session/back", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s = decodeSession(t, resp)
	assert.Equal(t, 2, s.Stage)
	assert.Contains(t, *s.Text, "SLEEP APNOEA")
}

func TestServer_Errors(t *testing.T) {
	forceError := validate.RuleFunc{RuleName: "force-error", Fn: func(fhirmodel.Bundle) []validate.Issue {
		return []validate.Issue{{Severity: validate.SeverityError, Code: validate.CodeRequired, Details: "forced", Location: "Bundle"}}
	}}

	tests := []struct {
		name      string
		publisher deploy.Publisher
		opts      []validate.Option
		setup     []string
		method    string
		path      string
		body      string
		status    int
		contains  string
	}{
		{
			name:     "synthesize without text",
			method:   http.MethodPost,
			path:     "/session/synthesize",
			status:   http.StatusConflict,
			contains: "invalid stage transition",
		},
		{
			name:     "unreadable word document",
			method:   http.MethodPost,
			path:     "/session/document?kind=docx&filename=broken.docx",
			body:     "not a zip archive",
			status:   http.StatusUnprocessableEntity,
			contains: "broken.docx",
		},
		{
			name:   "unknown kind rejected by the api document",
			method: http.MethodPost,
			path:   "/session/document?kind=spreadsheet",
			body:   "x",
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown export format",
			method: http.MethodGet,
			path:   "/session/bundle?format=xml",
			status: http.StatusBadRequest,
		},
		{
			name:   "bundle before synthesis",
			method: http.MethodGet,
			path:   "/session/bundle",
			status: http.StatusNotFound,
		},
		{
			name:   "report before synthesis",
			method: http.MethodGet,
			path:   "/session/report.xlsx",
			status: http.StatusNotFound,
		},
		{
			name:     "deployment blocked by validation",
			opts:     []validate.Option{validate.WithRules(forceError)},
			setup:    []string{"/session/protocol", "/session/synthesize"},
			method:   http.MethodPost,
			path:     "/session/deploy",
			status:   http.StatusConflict,
			contains: "Cannot deploy invalid FHIR resources (1 validation errors)",
		},
		{
			name:      "deployment transport failure",
			publisher: &fakePublisher{err: errors.New("server unavailable")},
			setup:     []string{"/session/protocol", "/session/synthesize"},
			method:    http.MethodPost,
			path:      "/session/deploy",
			status:    http.StatusBadGateway,
			contains:  "server unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := tt.publisher
			if publisher == nil {
				publisher = &fakePublisher{}
			}
			srv := newTestServer(t, publisher, tt.opts...)
			for _, path := range tt.setup {
				require.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+path, "", "").StatusCode)
			}

			resp := do(t, tt.method, srv.URL+tt.path, "application/octet-stream", tt.body)

			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.contains != "" {
				e := decodeError(t, resp)
				assert.Contains(t, e.Error, tt.contains)
				require.NotNil(t, e.Session)
				require.NotNil(t, e.Session.Error)
				assert.Equal(t, e.Error, *e.Session.Error)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "blocked", err: &deploy.DeploymentBlockedError{Errors: 1}, want: http.StatusConflict},
		{name: "transport", err: &deploy.DeploymentTransportError{Cause: errors.New("x")}, want: http.StatusBadGateway},
		{name: "extraction", err: &extract.ExtractionError{Cause: errors.New("x")}, want: http.StatusUnprocessableEntity},
		{name: "transition", err: pipeline.ErrInvalidTransition, want: http.StatusConflict},
		{name: "deadline", err: context.DeadlineExceeded, want: http.StatusGatewayTimeout},
		{name: "other", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
