// Package http exposes the built report over HTTP: a server rendered HTML
// page for people and a JSON endpoint for other systems. Handlers stay
// thin; all shaping happens in the report builder.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	pipeerr "twmw/internal/errors"
	htmlrender "twmw/internal/render"
)

// ReportHandler serves the report page and API.
type ReportHandler struct {
	service ReportServiceInterface
	logger  *slog.Logger
	opts    htmlrender.Options
}

// NewReportHandler creates a report handler.
func NewReportHandler(service ReportServiceInterface, logger *slog.Logger, opts htmlrender.Options) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With(slog.String("component", "report_handler")),
		opts:    opts,
	}
}

// Routes returns the report routes.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetPage)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/report", h.GetReport)
		r.Post("/report/refresh", h.RefreshReport)
	})

	return r
}

// GetPage handles GET / and renders the report as an HTML table.
func (h *ReportHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.LatestReport(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := htmlrender.RenderHTML(w, rep, h.opts); err != nil {
		h.logger.Error("failed to render report page", slog.String("error", err.Error()))
	}
}

// GetReport handles GET /api/report and returns the report as JSON.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.LatestReport(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, rep)
}

// RefreshReport handles POST /api/report/refresh. It recomputes every
// measure and returns the rebuilt report.
func (h *ReportHandler) RefreshReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.Refresh(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, rep)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *ReportHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	code := pipeerr.CodeOf(err)
	status := statusFor(code)

	h.logger.Error("request failed",
		slog.String("path", r.URL.Path),
		slog.String("code", string(code)),
		slog.String("error", err.Error()),
		slog.Int("status", status))

	render.Status(r, status)
	render.JSON(w, r, errorResponse{Code: string(code), Message: err.Error()})
}

// statusFor maps pipeline error codes onto HTTP status codes. Upstream
// data problems surface as bad gateway so callers can tell our fault
// from the provider's.
func statusFor(code pipeerr.Code) int {
	switch code {
	case pipeerr.CodeEmptyResult:
		return http.StatusNotFound
	case pipeerr.CodeConnectivity, pipeerr.CodeUpstream, pipeerr.CodeSchema:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
