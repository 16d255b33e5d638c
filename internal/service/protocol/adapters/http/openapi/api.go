// Package openapi holds the service's OpenAPI document and the chi binder for
// its operations.
package openapi

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

//go:embed openapi.yaml
var rawDocument []byte

// GetSwagger loads and validates the embedded OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawDocument)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
}

type Health struct {
	Status string `json:"status"`
}

type GenerateProtocolRequest struct {
	Prompt *string `json:"prompt,omitempty"`
}

type Error struct {
	Error   string   `json:"error"`
	Session *Session `json:"session,omitempty"`
}

type Session struct {
	Stage      int               `json:"stage"`
	StageName  string            `json:"stageName"`
	Document   *DocumentInfo     `json:"document,omitempty"`
	Text       *string           `json:"text,omitempty"`
	Provenance *string           `json:"provenance,omitempty"`
	Bundle     *BundleSummary    `json:"bundle,omitempty"`
	Report     *ValidationReport `json:"report,omitempty"`
	Deployed   bool              `json:"deployed"`
	Error      *string           `json:"error,omitempty"`
}

type DocumentInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Size int    `json:"size"`
}

type BundleSummary struct {
	Id            string   `json:"id"`
	Timestamp     string   `json:"timestamp,omitempty"`
	Source        string   `json:"source"`
	ResourceCount int      `json:"resourceCount"`
	Resources     []string `json:"resources"`
}

type ValidationReport struct {
	Valid         bool              `json:"valid"`
	ResourceCount int               `json:"resourceCount"`
	Errors        int               `json:"errors"`
	Warnings      int               `json:"warnings"`
	Information   int               `json:"information"`
	Issues        []ValidationIssue `json:"issues"`
}

type ValidationIssue struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Details  string `json:"details"`
	Location string `json:"location"`
}

type IngestDocumentParams struct {
	Kind     *string `form:"kind,omitempty" json:"kind,omitempty"`
	Filename *string `form:"filename,omitempty" json:"filename,omitempty"`
}

type ExportBundleParams struct {
	Format *string `form:"format,omitempty" json:"format,omitempty"`
}

// ServerInterface is implemented by the HTTP adapter, one method per operation.
type ServerInterface interface {
	// (GET /health)
	GetHealthStatus(w http.ResponseWriter, r *http.Request)
	// (GET /session)
	GetSession(w http.ResponseWriter, r *http.Request)
	// (POST /session/document)
	IngestDocument(w http.ResponseWriter, r *http.Request, params IngestDocumentParams)
	// (POST /session/protocol)
	GenerateProtocol(w http.ResponseWriter, r *http.Request)
	// (POST /session/synthesize)
	SynthesizeBundle(w http.ResponseWriter, r *http.Request)
	// (POST /session/back)
	NavigateBack(w http.ResponseWriter, r *http.Request)
	// (POST /session/deploy)
	DeployBundle(w http.ResponseWriter, r *http.Request)
	// (POST /session/reset)
	ResetSession(w http.ResponseWriter, r *http.Request)
	// (GET /session/bundle)
	ExportBundle(w http.ResponseWriter, r *http.Request, params ExportBundleParams)
	// (GET /session/report.xlsx)
	ExportReport(w http.ResponseWriter, r *http.Request)
}

// HandlerFromMux registers every operation of si on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	r.Get("/health", si.GetHealthStatus)
	r.Get("/session", si.GetSession)
	r.Post("/session/document", func(w http.ResponseWriter, req *http.Request) {
		var params IngestDocumentParams
		query := req.URL.Query()
		if err := runtime.BindQueryParameter("form", true, false, "kind", query, &params.Kind); err != nil {
			invalidParam(w, "kind", err)
			return
		}
		if err := runtime.BindQueryParameter("form", true, false, "filename", query, &params.Filename); err != nil {
			invalidParam(w, "filename", err)
			return
		}
		si.IngestDocument(w, req, params)
	})
	r.Post("/session/protocol", si.GenerateProtocol)
	r.Post("/session/synthesize", si.SynthesizeBundle)
	r.Post("/session/back", si.NavigateBack)
	r.Post("/session/deploy", si.DeployBundle)
	r.Post("/session/reset", si.ResetSession)
	r.Get("/session/bundle", func(w http.ResponseWriter, req *http.Request) {
		var params ExportBundleParams
		if err := runtime.BindQueryParameter("form", true, false, "format", req.URL.Query(), &params.Format); err != nil {
			invalidParam(w, "format", err)
			return
		}
		si.ExportBundle(w, req, params)
	})
	r.Get("/session/report.xlsx", si.ExportReport)
	return r
}

func invalidParam(w http.ResponseWriter, name string, err error) {
	http.Error(w, fmt.Sprintf("Invalid format for parameter %s: %s", name, err), http.StatusBadRequest)
}
