package runtime

import (
	"fmt"
	"net/http"
	"time"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/config"
	protocolHTTP "github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// publicPaths skip API key enforcement.
var publicPaths = map[string]bool{
	"/health": true,
}

func NewHTTPServer(config config.Config, server *protocolHTTP.Server, logger *zap.Logger) (*http.Server, error) {
	api, err := protocolHTTP.Router(server)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	// synthesis tries every remote candidate and deployment may publish remotely
	r.Use(middleware.Timeout(config.RequestTimeout()))
	r.Use(apiKeyAuth(config.APIKey))

	r.Mount("/", api)

	srv := &http.Server{
		Addr:              ":" + config.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return srv, nil
}

// apiKeyAuth returns a middleware that validates X-API-Key if expected is non-empty.
// With no key configured every request is allowed (handy for local dev).
func apiKeyAuth(expected string) func(http.Handler) http.Handler {
	const hdr = "X-API-Key"
	return func(next http.Handler) http.Handler {
		if expected == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			got := r.Header.Get(hdr)
			if got == "" || got != expected {
				w.Header().Set("WWW-Authenticate", fmt.Sprintf(`ApiKey header="%s"`, hdr))
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("HTTP request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
