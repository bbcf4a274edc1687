package handler

import (
	"net/http"
	"time"

	"github.com/deatransindo/absensi/internal/repository"
	"github.com/go-chi/chi/v5"
)

type DashboardHandler struct {
	Repo repository.DashboardRepository
}

func (h DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/dashboard", h.today)
}

func (h DashboardHandler) today(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	summary, err := h.Repo.Summary(r.Context(), now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	records, err := h.Repo.TodayRecords(r.Context(), now)
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
		"stats": map[string]any{
			"totalStaff":   summary.TotalStaff,
			"checkedIn":    summary.CheckedIn,
			"checkedOut":   summary.CheckedOut,
			"notCheckedIn": summary.NotCheckedIn,
		},
		"todayAttendance": resp,
	})
}
