package httpapi_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aerostat/flight-delay-service/internal/adapter/httpapi"
	"github.com/aerostat/flight-delay-service/internal/aggregate"
	"github.com/aerostat/flight-delay-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockService scripts the prediction orchestrator.
type mockService struct {
	loaded   bool
	readyErr error
	outcome  domain.Outcome
	err      error

	predicted bool
}

func (m *mockService) ModelLoaded() bool { return m.loaded }

func (m *mockService) CheckReadiness(_ context.Context) error { return m.readyErr }

func (m *mockService) Predict(_ context.Context, _ domain.RawInput) (domain.Outcome, error) {
	m.predicted = true
	if m.err != nil {
		return domain.Outcome{}, m.err
	}
	return m.outcome, nil
}

func doRequest(srv *httpapi.Server, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

const validBody = `{"carrier":"AA","origin":"JFK","dest":"LAX","dayOfWeek":3,"depHour":15,"length":210}`

func TestPredictContinuousResponse(t *testing.T) {
	likelihood := 42.3
	svc := &mockService{loaded: true, outcome: domain.Outcome{
		Status:     domain.StatusDelayed,
		Likelihood: &likelihood,
		Detail:     "Predicted delay: 42.30 minutes",
	}}
	srv := httpapi.NewPredictionServer(":0", svc, slog.Default())

	rec := doRequest(srv, http.MethodPost, "/predict", validBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "DELAYED", body["status"])
	assert.Equal(t, 42.3, body["likelihood"])
	assert.Equal(t, "Predicted delay: 42.30 minutes", body["detail"])
}

func TestPredictBinaryResponseOmitsLikelihood(t *testing.T) {
	svc := &mockService{loaded: true, outcome: domain.Outcome{Status: domain.StatusOnTime}}
	srv := httpapi.NewPredictionServer(":0", svc, slog.Default())

	rec := doRequest(srv, http.MethodPost, "/predict", validBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ON TIME", body["status"])
	assert.NotContains(t, body, "likelihood")
	assert.NotContains(t, body, "detail")
}

func TestPredictMalformedBody(t *testing.T) {
	svc := &mockService{loaded: true}
	srv := httpapi.NewPredictionServer(":0", svc, slog.Default())

	rec := doRequest(srv, http.MethodPost, "/predict", "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "JSON request expected", decodeBody(t, rec)["error"])
	assert.False(t, svc.predicted)
}

func TestPredictClientFaultMaps400(t *testing.T) {
	svc := &mockService{loaded: true, err: &domain.MissingFieldError{Field: "length"}}
	srv := httpapi.NewPredictionServer(":0", svc, slog.Default())

	rec := doRequest(srv, http.MethodPost, "/predict", validBody)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing field: length", decodeBody(t, rec)["error"])
}

func TestPredictServerFaultMaps500(t *testing.T) {
	svc := &mockService{loaded: true, err: &domain.PredictionError{Err: assert.AnError}}
	srv := httpapi.NewPredictionServer(":0", svc, slog.Default())

	rec := doRequest(srv, http.MethodPost, "/predict", validBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, assert.AnError.Error(), decodeBody(t, rec)["error"])
}

func TestPredictModelNotLoadedShortCircuits(t *testing.T) {
	svc := &mockService{loaded: false}
	srv := httpapi.NewPredictionServer(":0", svc, slog.Default())

	// Body is intentionally garbage: the degraded state must win before
	// any parsing happens.
	rec := doRequest(srv, http.MethodPost, "/predict", "{not json")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "model not loaded", decodeBody(t, rec)["error"])
	assert.False(t, svc.predicted)
}

func TestHealthz(t *testing.T) {
	srv := httpapi.NewPredictionServer(":0", &mockService{loaded: true}, slog.Default())
	rec := doRequest(srv, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestReadyz(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		srv := httpapi.NewPredictionServer(":0", &mockService{loaded: true}, slog.Default())
		rec := doRequest(srv, http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("model missing", func(t *testing.T) {
		svc := &mockService{loaded: false, readyErr: domain.ErrModelUnavailable}
		srv := httpapi.NewPredictionServer(":0", svc, slog.Default())
		rec := doRequest(srv, http.MethodGet, "/readyz", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "not ready", body["status"])
		assert.Equal(t, "model not loaded", body["error"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := httpapi.NewPredictionServer(":0", &mockService{loaded: true}, slog.Default())
	rec := doRequest(srv, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestCORSHeaders(t *testing.T) {
	srv := httpapi.NewPredictionServer(":0", &mockService{loaded: true}, slog.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatsServer(t *testing.T) {
	report := aggregate.Report{
		Summary: aggregate.Summary{TotalAirlines: 2, TotalOrigins: 3, TotalDestinations: 3, TotalFlights: 10},
		ByAirline: []aggregate.AirlineCounts{
			{Airline: "AA", OnTime: 4, Delayed: 2},
			{Airline: "DL", OnTime: 3, Delayed: 1},
		},
		DelayByDay:   []aggregate.DayDelay{{DayOfWeek: 1, TotalDelay: 45}},
		StatusTotals: aggregate.StatusTotals{OnTime: 7, Delayed: 3},
	}
	srv := httpapi.NewStatsServer(":0", report, slog.Default())

	t.Run("summary", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/api/summary", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, 2.0, body["total_airlines"])
		assert.Equal(t, 10.0, body["total_flights"])
	})

	t.Run("flights by airline", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/api/flights-by-airline", "")
		assert.Equal(t, http.StatusOK, rec.Code)

		var rows []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
		require.Len(t, rows, 2)
		assert.Equal(t, "AA", rows[0]["airline"])
		assert.Equal(t, 2.0, rows[0]["delayed"])
	})

	t.Run("delays by day", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/api/delays-by-day", "")
		assert.Equal(t, http.StatusOK, rec.Code)

		var rows []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, 45.0, rows[0]["total_delay"])
	})

	t.Run("status totals", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/api/status-totals", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, 7.0, body["on_time"])
		assert.Equal(t, 3.0, body["delayed"])
	})

	t.Run("healthz", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
