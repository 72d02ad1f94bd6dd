// Package exporter persists computed frames as CSV snapshots. These files
// are the durable record of a pipeline run and the input to the report
// builder on replay, so the layout stays stable: a Date column followed by
// one column per measure id in the frame's deterministic order.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"twmw/internal/config"
	"twmw/internal/series"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Exporter writes frame snapshots using a fixed export policy.
type Exporter struct {
	dateFormat string
	precision  int32
	bom        bool
}

// New builds an exporter from the export section of the configuration.
func New(cfg config.ExportConfig) *Exporter {
	return &Exporter{
		dateFormat: cfg.DateFormat,
		precision:  cfg.Precision,
		bom:        cfg.BOM,
	}
}

// WriteFrame streams a frame as CSV. The first column is the row date in
// the configured format; remaining columns follow the frame's column
// order. Absent cells are written empty, present cells are rounded
// half-up to the configured precision.
func (e *Exporter) WriteFrame(w io.Writer, f series.Frame) error {
	if e.bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(w)

	header := append([]string{"Date"}, f.Columns()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, d := range f.Dates() {
		record := make([]string, 0, len(header))
		record = append(record, d.Format(e.dateFormat))
		for _, id := range f.Columns() {
			if v, ok := f.Value(id, d); ok {
				record = append(record, e.format(v))
			} else {
				record = append(record, "")
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %s: %w", d.Format(e.dateFormat), err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFrameFile writes the frame to a file, creating parent directories
// as needed.
func (e *Exporter) WriteFrameFile(path string, f series.Frame) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	if err := e.WriteFrame(file, f); err != nil {
		return err
	}
	return file.Close()
}

// format renders a cell value rounded to the export precision. Decimal
// arithmetic keeps 0.005-style boundaries exact instead of drifting
// through binary floats.
func (e *Exporter) format(v float64) string {
	return decimal.NewFromFloat(v).Round(e.precision).String()
}
