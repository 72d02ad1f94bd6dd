package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pipeerr "twmw/internal/errors"
	"twmw/internal/render"
	"twmw/internal/report"
)

type stubReportService struct {
	rep       *report.Report
	err       error
	refreshes int
}

func (s *stubReportService) LatestReport(ctx context.Context) (*report.Report, error) {
	return s.rep, s.err
}

func (s *stubReportService) Refresh(ctx context.Context) (*report.Report, error) {
	s.refreshes++
	return s.rep, s.err
}

func sampleReport() *report.Report {
	return &report.Report{
		Dates: []string{"2024-03-31"},
		Rows: []report.Row{
			{
				MeasureID: "bias", Category: "技術面", MeasureName: "乖離率", Unit: "%",
				Values: map[string]float64{"2024-03-31": 1.5},
				Score:  4, ScoreTotal: 4,
			},
		},
	}
}

func newTestRouter(svc ReportServiceInterface) http.Handler {
	logger := slog.Default()
	return NewRouter(
		NewReportHandler(svc, logger, render.Options{MergeColumns: []string{render.FieldCategory}}),
		NewHealthHandler("test"),
		logger)
}

func TestGetReportJSON(t *testing.T) {
	router := newTestRouter(&stubReportService{rep: sampleReport()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var got report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "bias", got.Rows[0].MeasureID)
	assert.Equal(t, 4.0, got.Rows[0].Score)
}

func TestGetPageHTML(t *testing.T) {
	router := newTestRouter(&stubReportService{rep: sampleReport()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "乖離率")
	assert.Contains(t, rec.Body.String(), "<table")
}

func TestRefreshReport(t *testing.T) {
	svc := &stubReportService{rep: sampleReport()}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/report/refresh", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.refreshes)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "empty result maps to not found",
			err:        pipeerr.EmptyResult("bias"),
			wantStatus: http.StatusNotFound,
			wantCode:   "EMPTY_RESULT",
		},
		{
			name:       "connectivity maps to bad gateway",
			err:        pipeerr.Connectivity(nil, "backend down"),
			wantStatus: http.StatusBadGateway,
			wantCode:   "CONNECTIVITY",
		},
		{
			name:       "upstream maps to bad gateway",
			err:        pipeerr.Upstream("error"),
			wantStatus: http.StatusBadGateway,
			wantCode:   "UPSTREAM",
		},
		{
			name:       "config maps to internal error",
			err:        pipeerr.ConfigError("bad profile"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "CONFIG",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubReportService{err: tt.err})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

			require.Equal(t, tt.wantStatus, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(&stubReportService{rep: sampleReport()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "test", body.Version)
}
