package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gomboskr/k2barber/internal/metrics"
	"github.com/gomboskr/k2barber/internal/models"
)

// handleStats returns dashboard statistics.
// GET /api/admin/stats
func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_stats")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats, err := s.svc.AdminStats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleExport streams every booking as an .xlsx workbook.
// GET /api/admin/export
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_export")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	bookings, err := s.svc.ListBookings(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	const sheet = "Foglalások"
	file.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Dátum", "Idő", "Szolgáltatás", "Név", "Telefon", "Email", "Megjegyzés", "Státusz", "Ár (Ft)"}
	for i, col := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = file.SetCellValue(sheet, cell, col)
	}
	if style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = file.SetCellStyle(sheet, startCell, endCell, style)
	}

	for i, b := range bookings {
		row := []any{
			b.ID, b.Date, b.Time, b.Service, b.CustomerName,
			b.Phone, b.Email, b.Notes, b.Status,
			models.ServicePrice(b.ServiceKind),
		}
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				continue
			}
			_ = file.SetCellValue(sheet, cell, val)
		}
	}

	filename := fmt.Sprintf("k2_barber_bookings_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := file.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("export write failed")
	}
}
