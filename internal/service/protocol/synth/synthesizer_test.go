package synth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/adapters/fhir"
	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/synth"
)

const remoteBundle = `{
  "resourceType": "Bundle",
  "id": "remote-1",
  "type": "collection",
  "entry": [
    {"resource": {"resourceType": "Patient", "id": "p-1"}},
    {"resource": {"resourceType": "MedicationRequest", "id": "m-1", "subject": {"reference": "Patient/p-1"}}}
  ]
}`

// recordingServer answers each path with the configured handler and records
// the order in which paths were hit.
type recordingServer struct {
	mu     sync.Mutex
	hits   []string
	bodies []synth.Request
}

func (rs *recordingServer) start(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req synth.Request
		_ = json.NewDecoder(r.Body).Decode(&req)

		rs.mu.Lock()
		rs.hits = append(rs.hits, r.URL.Path)
		rs.bodies = append(rs.bodies, req)
		rs.mu.Unlock()

		if h, ok := routes[r.URL.Path]; ok {
			h(w, r)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(code) }
}

func body(s string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(s))
	}
}

func newSynthesizer(t *testing.T, baseURL string, timeout time.Duration) *synth.Synthesizer {
	client := synth.NewRemoteClient(baseURL, timeout)
	return synth.NewSynthesizer(fhir.NewComposer(), zaptest.NewLogger(t),
		synth.WithStrategies(synth.RemoteChain(client, synth.DefaultEndpoints)...),
	)
}

func TestSynthesizer_AllCandidatesFail(t *testing.T) {
	rs := &recordingServer{}
	srv := rs.start(t, nil) // every path answers 500

	res := newSynthesizer(t, srv.URL, time.Second).Synthesize(context.Background(), "protocol text", "")

	assert.True(t, res.Degraded())
	assert.Equal(t, synth.SourceFallback, res.Source)
	assert.Len(t, res.Bundle.Entry, fhir.SkeletonResourceCount)
	assert.Equal(t, synth.DefaultEndpoints, rs.hits)
	require.Len(t, res.Attempts, len(synth.DefaultEndpoints))
	assert.Equal(t, "remote:/process", res.Attempts[0].Strategy)
	assert.ErrorIs(t, res.Err(), synth.ErrSynthesisDegraded)
}

func TestSynthesizer_FirstSuccessWins(t *testing.T) {
	tests := []struct {
		name       string
		routes     map[string]http.HandlerFunc
		wantSource string
		wantHits   []string
	}{
		{
			name:       "first candidate succeeds",
			routes:     map[string]http.HandlerFunc{"/process": body(remoteBundle)},
			wantSource: "remote:/process",
			wantHits:   []string{"/process"},
		},
		{
			name: "non-success status skipped",
			routes: map[string]http.HandlerFunc{
				"/process": status(http.StatusNotFound),
				"/convert": body(remoteBundle),
			},
			wantSource: "remote:/convert",
			wantHits:   []string{"/process", "/convert"},
		},
		{
			name: "malformed bodies skipped",
			routes: map[string]http.HandlerFunc{
				"/process":      body(`not json`),
				"/convert":      body(`{"resourceType": "Patient", "id": "x"}`),
				"/text-to-fhir": body(`{"resourceType": "Bundle", "id": "empty", "type": "collection"}`),
				"/api/process":  body(remoteBundle),
			},
			wantSource: "remote:/api/process",
			wantHits:   []string{"/process", "/convert", "/text-to-fhir", "/api/process"},
		},
		{
			name: "bundles without id or collection type skipped",
			routes: map[string]http.HandlerFunc{
				"/process":      body(`{"resourceType": "Bundle", "type": "collection", "entry": [{"resource": {"resourceType": "Patient", "id": "a"}}]}`),
				"/convert":      body(`{"resourceType": "Bundle", "id": "t-1", "type": "transaction", "entry": [{"resource": {"resourceType": "Patient", "id": "a"}}]}`),
				"/text-to-fhir": body(remoteBundle),
			},
			wantSource: "remote:/text-to-fhir",
			wantHits:   []string{"/process", "/convert", "/text-to-fhir"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := &recordingServer{}
			srv := rs.start(t, tt.routes)

			res := newSynthesizer(t, srv.URL, time.Second).Synthesize(context.Background(), "text", "en")

			assert.False(t, res.Degraded())
			assert.NoError(t, res.Err())
			assert.Equal(t, tt.wantSource, res.Source)
			assert.Equal(t, "remote-1", res.Bundle.ID)
			assert.Len(t, res.Bundle.Entry, 2)
			assert.Equal(t, tt.wantHits, rs.hits)
			assert.Len(t, res.Attempts, len(tt.wantHits)-1)
		})
	}
}

func TestSynthesizer_SendsTextAndLanguage(t *testing.T) {
	rs := &recordingServer{}
	srv := rs.start(t, map[string]http.HandlerFunc{"/process": body(remoteBundle)})

	newSynthesizer(t, srv.URL, time.Second).Synthesize(context.Background(), "Aspirin 300mg", "")

	require.Len(t, rs.bodies, 1)
	assert.Equal(t, synth.Request{Text: "Aspirin 300mg", Language: synth.DefaultLanguage}, rs.bodies[0])
}

func TestSynthesizer_UnreachableService(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := newSynthesizer(t, url, time.Second).Synthesize(context.Background(), "text", "")

	assert.True(t, res.Degraded())
	assert.NotEmpty(t, res.Bundle.Entry)
	assert.Len(t, res.Attempts, len(synth.DefaultEndpoints))
}

func TestSynthesizer_PerCandidateTimeout(t *testing.T) {
	rs := &recordingServer{}
	slow := func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
		body(remoteBundle)(w, r)
	}
	srv := rs.start(t, map[string]http.HandlerFunc{
		"/process": slow,
		"/convert": body(remoteBundle),
	})

	start := time.Now()
	res := newSynthesizer(t, srv.URL, 100*time.Millisecond).Synthesize(context.Background(), "text", "")

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, "remote:/convert", res.Source)
}

func TestSynthesizer_CancelledContext(t *testing.T) {
	rs := &recordingServer{}
	srv := rs.start(t, map[string]http.HandlerFunc{"/process": body(remoteBundle)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newSynthesizer(t, srv.URL, time.Second).Synthesize(ctx, "text", "")

	assert.True(t, res.Degraded())
	assert.Empty(t, rs.hits)
	require.Len(t, res.Attempts, 1)
	assert.ErrorIs(t, res.Attempts[0], context.Canceled)
}

func TestSynthesizer_Offline(t *testing.T) {
	s := synth.NewSynthesizer(fhir.NewComposer(), nil)

	res := s.Synthesize(context.Background(), "", "")

	assert.True(t, res.Degraded())
	assert.Empty(t, res.Attempts)
	assert.Len(t, res.Bundle.Entry, fhir.SkeletonResourceCount)
	assert.ErrorIs(t, res.Err(), synth.ErrSynthesisDegraded)
}
