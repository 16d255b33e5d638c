package http

import (
	"net/http"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/http/openapi"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/go-chi/chi/v5"
	oapimw "github.com/oapi-codegen/nethttp-middleware"
)

// Router validates path and query parameters against the embedded OpenAPI
// document and mounts every operation of srv. Bodies are raw documents or
// small JSON objects and are checked by the handlers.
func Router(srv *Server) (http.Handler, error) {
	swagger, err := openapi.GetSwagger()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(oapimw.OapiRequestValidatorWithOptions(swagger, &oapimw.Options{
		Options: openapi3filter.Options{
			ExcludeRequestBody:  true,
			ExcludeResponseBody: true,
			AuthenticationFunc:  openapi3filter.NoopAuthenticationFunc,
		},
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			writeJSON(w, statusCode, openapi.Error{Error: message})
		},
		SilenceServersWarning: true,
	}))

	openapi.HandlerFromMux(srv, r)

	return r, nil
}
