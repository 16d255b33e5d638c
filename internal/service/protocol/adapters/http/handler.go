package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/http/openapi"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/app"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/app/commands"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/app/queries"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/deploy"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/extract"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/pipeline"
	"go.uber.org/zap"
)

// MaxDocumentBytes caps an uploaded document.
const MaxDocumentBytes = 20 << 20

const defaultDocumentName = "document"

type Server struct {
	cmdBus   app.CommandBus
	queryBus app.QueryBus
	logger   *zap.Logger
}

var _ openapi.ServerInterface = (*Server)(nil)

func NewServer(cmdBus app.CommandBus, queryBus app.QueryBus, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cmdBus:   cmdBus,
		queryBus: queryBus,
		logger:   logger,
	}
}

func (s *Server) GetHealthStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, openapi.Health{Status: "ok"})
}

func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	result, err := s.queryBus.GetSession(r.Context(), queries.GetSessionQuery{})
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, toSession(result.Session))
}

func (s *Server) IngestDocument(w http.ResponseWriter, r *http.Request, params openapi.IngestDocumentParams) {
	content, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "document too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "read document: "+err.Error(), http.StatusBadRequest)
		return
	}

	cmd := commands.IngestDocumentCommand{
		Filename: defaultDocumentName,
		Content:  content,
	}
	if params.Filename != nil && *params.Filename != "" {
		cmd.Filename = *params.Filename
	}
	if params.Kind != nil {
		cmd.Kind = extract.ParseKind(*params.Kind)
	}
	if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil {
		cmd.MediaType = mediaType
	}

	result, err := s.cmdBus.IngestDocument(r.Context(), cmd)
	if err != nil {
		s.writeError(w, err, &result.Session)
		return
	}
	writeJSON(w, http.StatusOK, toSession(result.Session))
}

func (s *Server) GenerateProtocol(w http.ResponseWriter, r *http.Request) {
	var in openapi.GenerateProtocolRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	cmd := commands.GenerateProtocolCommand{}
	if in.Prompt != nil {
		cmd.Prompt = *in.Prompt
	}

	result, err := s.cmdBus.GenerateProtocol(r.Context(), cmd)
	if err != nil {
		s.writeError(w, err, &result.Session)
		return
	}
	writeJSON(w, http.StatusOK, toSession(result.Session))
}

func (s *Server) SynthesizeBundle(w http.ResponseWriter, r *http.Request) {
	result, err := s.cmdBus.SynthesizeBundle(r.Context(), commands.SynthesizeBundleCommand{})
	if err != nil {
		s.writeError(w, err, &result.Session)
		return
	}
	writeJSON(w, http.StatusOK, toSession(result.Session))
}

func (s *Server) NavigateBack(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, commands.NavigateBack)
}

func (s *Server) ResetSession(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, commands.NavigateReset)
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request, action commands.NavigateAction) {
	result, err := s.cmdBus.Navigate(r.Context(), commands.NavigateCommand{Action: action})
	if err != nil {
		s.writeError(w, err, &result.Session)
		return
	}
	writeJSON(w, http.StatusOK, toSession(result.Session))
}

func (s *Server) DeployBundle(w http.ResponseWriter, r *http.Request) {
	result, err := s.cmdBus.DeployBundle(r.Context(), commands.DeployBundleCommand{})
	if err != nil {
		s.writeError(w, err, &result.Session)
		return
	}
	writeJSON(w, http.StatusOK, toSession(result.Session))
}

func (s *Server) ExportBundle(w http.ResponseWriter, r *http.Request, params openapi.ExportBundleParams) {
	q := queries.ExportBundleQuery{}
	if params.Format != nil {
		q.Format = queries.BundleFormat(*params.Format)
	}

	result, err := s.queryBus.ExportBundle(r.Context(), q)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeAttachment(w, result.Filename, result.ContentType, result.Data)
}

func (s *Server) ExportReport(w http.ResponseWriter, r *http.Request) {
	result, err := s.queryBus.ExportReport(r.Context(), queries.ExportReportQuery{})
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeAttachment(w, result.Filename, result.ContentType, result.Data)
}

// statusFor maps pipeline failures onto HTTP status codes.
func statusFor(err error) int {
	var (
		blocked    *deploy.DeploymentBlockedError
		transport  *deploy.DeploymentTransportError
		extraction *extract.ExtractionError
	)
	switch {
	case errors.As(err, &blocked),
		errors.Is(err, pipeline.ErrInvalidTransition),
		errors.Is(err, deploy.ErrAlreadyDeployed):
		return http.StatusConflict
	case errors.As(err, &transport):
		return http.StatusBadGateway
	case errors.As(err, &extraction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrNoBundle), errors.Is(err, queries.ErrNoReport):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error, session *pipeline.Session) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.Int("status", status), zap.Error(err))
	} else {
		s.logger.Info("Request rejected", zap.Int("status", status), zap.Error(err))
	}

	body := openapi.Error{Error: err.Error()}
	if session != nil {
		view := toSession(*session)
		body.Session = &view
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAttachment(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
