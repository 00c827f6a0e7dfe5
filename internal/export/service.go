package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mfigueredo/comprobantes-tracker/internal/repository"
)

// Service is a tiny façade over the repository that produces XLSX bytes for exports.
type Service struct {
	repo   repository.ComprobanteRepository
	logger *slog.Logger
}

func NewService(repo repository.ComprobanteRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportComprobantesXLSX returns an XLSX workbook (as bytes) for the given
// storage-date window, newest first.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> every stored comprobante.
func (s *Service) ExportComprobantesXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	// Normalize dates (date-only, UTC)
	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}

	recs, err := s.repo.ListCreatedBetween(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query comprobantes: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Comprobantes"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Fecha Emisión",
		"Tipo",
		"Número",
		"Razón Social",
		"CUIT Emisor",
		"Subtotal",
		"IVA",
		"Total",
		"Confianza",
		"Archivo",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		writeOptStr := func(col int, v *string) {
			if v != nil {
				write(col, *v)
			}
		}
		writeOptNum := func(col int, v *float64) {
			if v != nil {
				write(col, *v)
			}
		}

		writeOptStr(1, r.FechaEmision)
		writeOptStr(2, r.Tipo)
		writeOptStr(3, r.Numero)
		writeOptStr(4, r.RazonSocial)
		writeOptStr(5, r.CUITEmisor)
		writeOptNum(6, r.Subtotal)
		writeOptNum(7, r.IVA)
		writeOptNum(8, r.Total)
		write(9, r.Confidence)
		write(10, r.Filename)

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 20) // fecha
	_ = f.SetColWidth(sheet, "B", "B", 14) // tipo
	_ = f.SetColWidth(sheet, "C", "C", 16) // numero
	_ = f.SetColWidth(sheet, "D", "D", 28) // razon social
	_ = f.SetColWidth(sheet, "E", "E", 14) // cuit
	_ = f.SetColWidth(sheet, "F", "H", 12) // importes
	_ = f.SetColWidth(sheet, "J", "J", 40) // archivo

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
