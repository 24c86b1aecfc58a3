// Package export renders batch detection results as an XLSX workbook.
package export

import (
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/billscan-dev/billscan/internal/common"
	"github.com/billscan-dev/billscan/internal/detect"
)

// FileResult is one processed input file with its detection outcome.
type FileResult struct {
	Path   string
	Result detect.Result
	Err    string // non-empty when extraction/detection failed outright
}

// Service produces XLSX bytes for batch runs.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// BuildXLSX writes one row per detected amount; guardrail and failed files get
// a single row carrying the reason.
func (s *Service) BuildXLSX(results []FileResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Amounts"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defIdx, _ := f.GetSheetIndex("Sheet1"); defIdx != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"File",
		"Status",
		"Reason",
		"Type",
		"Value",
		"Currency",
		"Source",
		"Confidence",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	write := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	for _, r := range results {
		switch {
		case r.Err != "":
			write(1, r.Path)
			write(2, "error")
			write(3, r.Err)
			row++
		case r.Result.Status != detect.StatusOK:
			write(1, r.Path)
			write(2, string(r.Result.Status))
			write(3, r.Result.Reason)
			row++
		default:
			for _, a := range r.Result.Amounts {
				write(1, r.Path)
				write(2, string(r.Result.Status))
				write(4, string(a.Type))
				v, _ := a.Value.Float64()
				write(5, v)
				write(6, r.Result.Currency)
				write(7, a.Source)
				write(8, r.Result.Confidence)
				row++
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, common.WrapError(err, "write workbook")
	}

	s.logger.Info("export.xlsx.ok",
		"files", len(results),
		"rows", row-2,
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
