package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpadapter "github.com/couchcryptid/heat-response/internal/adapter/http"
	"github.com/couchcryptid/heat-response/internal/domain"
	"github.com/couchcryptid/heat-response/internal/model"
	"github.com/couchcryptid/heat-response/internal/observability"
	"github.com/couchcryptid/heat-response/internal/sweep"
	"github.com/couchcryptid/heat-response/internal/thermo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

// zeros is a JSON number list of n zeros.
func zeros(n int) string {
	return strings.Repeat("0,", n-1) + "0"
}

type mockGreenspace struct {
	stats domain.GreenspaceStats
	err   error
}

func (m *mockGreenspace) Lookup(_ context.Context, postcode string) (domain.GreenspaceStats, error) {
	if err := domain.ValidatePostcode(postcode); err != nil {
		return domain.GreenspaceStats{}, err
	}
	return m.stats, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAPI(t *testing.T) httpadapter.API {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	svc, err := thermo.NewService(model.DefaultParams(), discardLogger(), metrics)
	require.NoError(t, err)
	return httpadapter.API{
		Raw:       svc,
		Exposures: svc,
		Sweeps:    sweep.NewService(svc, sweep.New(sweep.Options{}, discardLogger(), metrics)),
	}
}

func newTestServer(t *testing.T, readyErr error) *httpadapter.Server {
	t.Helper()
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, newTestAPI(t), discardLogger())
}

func do(t *testing.T, srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	srv.ServeHTTP(rec, httptest.NewRequest(method, path, r))
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const malePerson = `{"sex":"male","age":30,"height_cm":175,"mass_kg":75}`

func TestHealthzReturns200(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody[map[string]string](t, rec)["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decodeBody[map[string]string](t, rec)["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := do(t, newTestServer(t, fmt.Errorf("not ready yet")), http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/healthz", "")
	_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "caller-supplied")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "caller-supplied", rec.Header().Get("X-Request-ID"))
}

func TestPredictions(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("default steps", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/v1/predictions",
			`{"person":`+malePerson+`,"environment":{"ambient_temp":23,"humidity":50}}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got := decodeBody[domain.Temperatures](t, rec)
		assert.InDelta(t, 37.11904232206019, got.Rectal, 1e-9)
		assert.InDelta(t, 34.51647050428367, got.Skin, 1e-9)
	})

	t.Run("zero steps", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/v1/predictions",
			`{"person":`+malePerson+`,"environment":{"ambient_temp":23,"humidity":50},"steps":0}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.InDelta(t, 37.0, decodeBody[domain.Temperatures](t, rec).Rectal, 1e-9)
	})

	t.Run("too many steps", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/v1/predictions",
			`{"person":`+malePerson+`,"environment":{"ambient_temp":23,"humidity":50},"steps":100000000}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestExposures(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/v1/exposures",
		`{"person":`+malePerson+`,"environment":{"ambient_temp":40,"humidity":50}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decodeBody[domain.ExposureResult](t, rec)
	rectal, skin, ok := result.Deltas()
	require.True(t, ok)
	assert.InDelta(t, 1.1771735191597799, rectal, 1e-9)
	assert.InDelta(t, 3.347945418152989, skin, 1e-9)

	rec = do(t, srv, http.MethodPost, "/api/v1/exposures",
		`{"person":`+malePerson+`,"environment":{"ambient_temp":45,"humidity":100}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	raw := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "out_of_range", raw["status"])
	assert.Nil(t, raw["rectal_temp_delta"])
	assert.Nil(t, raw["skin_temp_delta"])
}

func TestSweeps(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/v1/sweeps",
		`{"person":`+malePerson+`,"humidity":[50,100],"temperature":[35,40,45]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := decodeBody[domain.SweepResult](t, rec)
	_, err := uuid.Parse(result.ID)
	assert.NoError(t, err, "missing ids are generated")
	require.Len(t, result.Grid.Cells, 2)
	require.Len(t, result.Grid.Cells[0], 3)
	assert.Equal(t, 4, result.Summary.Computed)
	assert.Equal(t, 2, result.Summary.OutOfRange)
}

func TestValidationErrors(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"malformed json", "/api/v1/exposures", `{"person":`},
		{"unknown field", "/api/v1/exposures", `{"person":` + malePerson + `,"environment":{"ambient_temp":30,"humidity":20},"extra":1}`},
		{"humidity out of range", "/api/v1/exposures", `{"person":` + malePerson + `,"environment":{"ambient_temp":30,"humidity":101}}`},
		{"non-positive mass", "/api/v1/predictions", `{"person":{"sex":"female","age":40,"height_cm":160,"mass_kg":0},"environment":{"ambient_temp":30,"humidity":20}}`},
		{"negative steps", "/api/v1/predictions", `{"person":` + malePerson + `,"environment":{"ambient_temp":30,"humidity":20},"steps":-1}`},
		{"unknown sex", "/api/v1/sweeps", `{"person":{"sex":"x","age":40,"height_cm":160,"mass_kg":60}}`},
		{"bad sweep axis", "/api/v1/sweeps", `{"person":` + malePerson + `,"humidity":[-5]}`},
		{"sweep grid too large", "/api/v1/sweeps", `{"person":` + malePerson + `,"humidity":[` + zeros(200_000) + `],"temperature":[` + zeros(200_000) + `]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			body := decodeBody[map[string]string](t, rec)
			assert.Equal(t, "invalid request", body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/api/v1/exposures", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGreenspace(t *testing.T) {
	api := newTestAPI(t)

	t.Run("disabled", func(t *testing.T) {
		srv := httpadapter.NewServer(":0", &mockReadiness{}, api, discardLogger())
		rec := do(t, srv, http.MethodGet, "/api/v1/greenspace?postcode=3000", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	api.Greenspace = &mockGreenspace{stats: domain.GreenspaceStats{Postcode: "3000", GreenspacePercentage: 18.5}}
	srv := httpadapter.NewServer(":0", &mockReadiness{}, api, discardLogger())

	t.Run("found", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/v1/greenspace?postcode=3000", "")
		require.Equal(t, http.StatusOK, rec.Code)
		stats := decodeBody[domain.GreenspaceStats](t, rec)
		assert.Equal(t, "3000", stats.Postcode)
		assert.InDelta(t, 18.5, stats.GreenspacePercentage, 0)
	})

	t.Run("missing postcode", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/v1/greenspace", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed postcode", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/v1/greenspace?postcode=30A0", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("upstream failures", func(t *testing.T) {
		api.Greenspace = &mockGreenspace{err: fmt.Errorf("postcode 9999: %w", domain.ErrNotFound)}
		rec := do(t, httpadapter.NewServer(":0", &mockReadiness{}, api, discardLogger()), http.MethodGet, "/api/v1/greenspace?postcode=9999", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		api.Greenspace = &mockGreenspace{err: fmt.Errorf("greenspace API error: status 500")}
		rec = do(t, httpadapter.NewServer(":0", &mockReadiness{}, api, discardLogger()), http.MethodGet, "/api/v1/greenspace?postcode=2000", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeBody[map[string]string](t, rec)
		assert.Equal(t, "server error", body["error"])
		assert.NotContains(t, body["message"], "status 500")
	})
}
