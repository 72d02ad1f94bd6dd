package http

import (
	"context"

	"twmw/internal/report"
)

// ReportServiceInterface defines the operations the report handlers need.
type ReportServiceInterface interface {
	// LatestReport returns the most recently built report.
	LatestReport(ctx context.Context) (*report.Report, error)
	// Refresh recomputes all measures and rebuilds the report.
	Refresh(ctx context.Context) (*report.Report, error)
}
