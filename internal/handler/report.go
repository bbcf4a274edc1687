package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/deatransindo/absensi/internal/service"
	"github.com/go-chi/chi/v5"
)

type ReportHandler struct {
	Service *service.ReportService
}

func (h ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/reports", h.list)
	r.Get("/admin/reports/export", h.export)
}

func (h ReportHandler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAttendanceFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, stats, err := h.Service.Query(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		item := attendancePayload(rec.Attendance)
		item["userName"] = rec.UserName
		item["userEmail"] = rec.UserEmail
		resp = append(resp, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"attendance": resp,
		"stats": map[string]any{
			"totalDays":       stats.TotalDays,
			"present":         stats.Present,
			"excused":         stats.Excused,
			"sick":            stats.Sick,
			"absent":          stats.Absent,
			"lateCheckins":    stats.LateCheckins,
			"avgWorkDuration": stats.AvgWorkDuration,
		},
	})
}

func (h ReportHandler) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}

	filter, err := parseAttendanceFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.OldestFirst = true

	records, _, err := h.Service.Query(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "no data found for the selected period")
		return
	}

	filenameSuffix := time.Now().Format("20060102_150405")
	if filter.From != nil && filter.To != nil {
		filenameSuffix = fmt.Sprintf("%s_%s", filter.From.Format("20060102"), filter.To.Format("20060102"))
	}

	switch format {
	case "csv":
		data, err := h.Service.ExportCSV(records)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"attendance_%s.csv\"", filenameSuffix))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := h.Service.ExportSpreadsheet(r.Context(), records)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"attendance_%s.xlsx\"", filenameSuffix))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
	}
}
