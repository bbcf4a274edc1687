package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"testing"

	"github.com/deatransindo/absensi/internal/domain"
	"github.com/deatransindo/absensi/internal/repository"
	"github.com/deatransindo/absensi/internal/server/authctx"
	"github.com/deatransindo/absensi/internal/service"
)

type stubAttendanceStore struct {
	today   *domain.Attendance
	history []domain.Attendance
}

func (s *stubAttendanceStore) GetForDay(context.Context, int64, time.Time) (*domain.Attendance, error) {
	if s.today == nil {
		return nil, repository.ErrNotFound
	}
	return s.today, nil
}

func (s *stubAttendanceStore) CreateCheckIn(_ context.Context, userID int64, day time.Time, p repository.CheckInParams) (*domain.Attendance, error) {
	checkIn := p.Time
	s.today = &domain.Attendance{
		ID:          1,
		UserID:      userID,
		Day:         day,
		Status:      domain.AttendancePresent,
		CheckInTime: &checkIn,
		CheckInLat:  p.Lat,
		CheckInLng:  p.Lng,
	}
	return s.today, nil
}

func (s *stubAttendanceStore) SetCheckIn(_ context.Context, _ int64, p repository.CheckInParams) (*domain.Attendance, error) {
	checkIn := p.Time
	s.today.CheckInTime = &checkIn
	return s.today, nil
}

func (s *stubAttendanceStore) SetCheckOut(_ context.Context, _ int64, p repository.CheckOutParams) (*domain.Attendance, error) {
	checkOut := p.Time
	s.today.CheckOutTime = &checkOut
	s.today.WorkDuration = &p.Duration
	return s.today, nil
}

func (s *stubAttendanceStore) History(context.Context, int64, int) ([]domain.Attendance, error) {
	return s.history, nil
}

func asUser(req *http.Request, id int64, role domain.UserRole) *http.Request {
	ctx := authctx.WithCurrentUser(req.Context(), authctx.CurrentUser{ID: id, Role: role})
	return req.WithContext(ctx)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func attendanceHandler(store *stubAttendanceStore) AttendanceHandler {
	return AttendanceHandler{Service: &service.AttendanceService{Store: store}}
}

func TestCheckInReturnsRecord(t *testing.T) {
	h := attendanceHandler(&stubAttendanceStore{})

	body := strings.NewReader(`{"lat":-6.2,"lng":106.8,"address":"Jakarta"}`)
	req := asUser(httptest.NewRequest(http.MethodPost, "/attendance/checkin", body), 5, domain.RoleUser)
	rec := httptest.NewRecorder()
	h.checkIn(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("data is %T, want object", resp.Data)
	}
	if data["userId"] != float64(5) {
		t.Errorf("userId = %v, want 5", data["userId"])
	}
	if data["checkInTime"] == nil {
		t.Error("checkInTime missing from payload")
	}
	if data["checkOutTime"] != nil {
		t.Errorf("checkOutTime = %v, want null", data["checkOutTime"])
	}
}

func TestCheckInTwiceReturnsBadRequest(t *testing.T) {
	now := time.Now()
	store := &stubAttendanceStore{today: &domain.Attendance{
		ID: 1, UserID: 5, Day: now, Status: domain.AttendancePresent, CheckInTime: &now,
	}}
	h := attendanceHandler(store)

	req := asUser(httptest.NewRequest(http.MethodPost, "/attendance/checkin", strings.NewReader(`{}`)), 5, domain.RoleUser)
	rec := httptest.NewRecorder()
	h.checkIn(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp := decodeEnvelope(t, rec); resp.Message != "already checked in today" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestCheckOutWithoutCheckInReturnsBadRequest(t *testing.T) {
	h := attendanceHandler(&stubAttendanceStore{})

	req := asUser(httptest.NewRequest(http.MethodPost, "/attendance/checkout", strings.NewReader(`{}`)), 5, domain.RoleUser)
	rec := httptest.NewRecorder()
	h.checkOut(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTodayWithoutRecordReturnsNull(t *testing.T) {
	h := attendanceHandler(&stubAttendanceStore{})

	req := asUser(httptest.NewRequest(http.MethodGet, "/attendance/today", nil), 5, domain.RoleUser)
	rec := httptest.NewRecorder()
	h.today(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("data is %T, want object", resp.Data)
	}
	if v, present := data["attendance"]; !present || v != nil {
		t.Errorf(`data["attendance"] = %v, want explicit null`, v)
	}
}

func TestAttendanceRequiresAuthenticatedUser(t *testing.T) {
	h := attendanceHandler(&stubAttendanceStore{})

	rec := httptest.NewRecorder()
	h.today(rec, httptest.NewRequest(http.MethodGet, "/attendance/today", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHistoryInvalidLimit(t *testing.T) {
	h := attendanceHandler(&stubAttendanceStore{})

	req := asUser(httptest.NewRequest(http.MethodGet, "/attendance/history?limit=abc", nil), 5, domain.RoleUser)
	rec := httptest.NewRecorder()
	h.history(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
