package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/deatransindo/absensi/internal/domain"
	"github.com/deatransindo/absensi/internal/server/authctx"
	"github.com/deatransindo/absensi/internal/service"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler struct {
	Service *service.AttendanceService
}

func (h AttendanceHandler) RegisterRoutes(r chi.Router) {
	r.Post("/attendance/checkin", h.checkIn)
	r.Post("/attendance/checkout", h.checkOut)
	r.Get("/attendance/today", h.today)
	r.Get("/attendance/history", h.history)
}

func (h AttendanceHandler) checkIn(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Lat     *float64 `json:"lat"`
		Lng     *float64 `json:"lng"`
		Address *string  `json:"address"`
		Photo   *string  `json:"photo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	rec, err := h.Service.CheckIn(r.Context(), user.ID, service.CheckInInput{
		Lat:     req.Lat,
		Lng:     req.Lng,
		Address: req.Address,
		Photo:   req.Photo,
	})
	if err != nil {
		if errors.Is(err, service.ErrAlreadyCheckedIn) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "check-in failed")
		return
	}
	writeJSON(w, http.StatusOK, attendancePayload(*rec))
}

func (h AttendanceHandler) checkOut(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Lat         *float64 `json:"lat"`
		Lng         *float64 `json:"lng"`
		Address     *string  `json:"address"`
		Photo       *string  `json:"photo"`
		DailyReport *string  `json:"dailyReport"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	rec, err := h.Service.CheckOut(r.Context(), user.ID, service.CheckOutInput{
		Lat:     req.Lat,
		Lng:     req.Lng,
		Address: req.Address,
		Photo:   req.Photo,
		Report:  req.DailyReport,
	})
	if err != nil {
		if errors.Is(err, service.ErrNotCheckedIn) || errors.Is(err, service.ErrAlreadyCheckedOut) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "check-out failed")
		return
	}
	writeJSON(w, http.StatusOK, attendancePayload(*rec))
}

func (h AttendanceHandler) today(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	rec, err := h.Service.Today(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// No record yet is a normal state, not an error.
	if rec == nil {
		writeJSON(w, http.StatusOK, map[string]any{"attendance": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"attendance": attendancePayload(*rec)})
}

func (h AttendanceHandler) history(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	items, err := h.Service.History(r.Context(), user.ID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, rec := range items {
		resp = append(resp, attendancePayload(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func attendancePayload(rec domain.Attendance) map[string]any {
	return map[string]any{
		"id":              rec.ID,
		"userId":          rec.UserID,
		"date":            rec.Day.Format("2006-01-02"),
		"status":          string(rec.Status),
		"checkInTime":     timeOrNil(rec.CheckInTime),
		"checkInLat":      rec.CheckInLat,
		"checkInLng":      rec.CheckInLng,
		"checkInAddress":  rec.CheckInAddress,
		"checkInPhoto":    rec.CheckInPhoto,
		"checkOutTime":    timeOrNil(rec.CheckOutTime),
		"checkOutLat":     rec.CheckOutLat,
		"checkOutLng":     rec.CheckOutLng,
		"checkOutAddress": rec.CheckOutAddress,
		"checkOutPhoto":   rec.CheckOutPhoto,
		"dailyReport":     rec.DailyReport,
		"workDuration":    rec.WorkDuration,
	}
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
