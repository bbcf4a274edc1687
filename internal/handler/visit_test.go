package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"testing"

	"github.com/deatransindo/absensi/internal/domain"
	"github.com/deatransindo/absensi/internal/repository"
)

type stubVisitStore struct {
	created    []repository.CreateVisitParams
	listedUser int64
}

func (s *stubVisitStore) Create(_ context.Context, p repository.CreateVisitParams) (*domain.Visit, error) {
	s.created = append(s.created, p)
	return &domain.Visit{
		ID:              int64(len(s.created)),
		UserID:          p.UserID,
		CustomerName:    p.CustomerName,
		CustomerPhone:   p.CustomerPhone,
		CustomerAddress: p.CustomerAddress,
		VisitTime:       p.VisitTime,
		VisitLat:        p.VisitLat,
		VisitLng:        p.VisitLng,
		VisitType:       p.VisitType,
		VisitResult:     p.VisitResult,
		Notes:           p.Notes,
		Photos:          p.Photos,
	}, nil
}

func (s *stubVisitStore) ListByUser(_ context.Context, userID int64, _ int) ([]domain.Visit, error) {
	s.listedUser = userID
	return []domain.Visit{}, nil
}

const validVisitBody = `{
	"customerName": "Toko Maju",
	"customerAddress": "Jl. Sudirman 1",
	"visitLat": -6.2,
	"visitLng": 106.8,
	"visitType": "sales",
	"visitResult": "deal"
}`

func TestCreateVisit(t *testing.T) {
	store := &stubVisitStore{}
	h := VisitHandler{Store: store}

	req := asUser(httptest.NewRequest(http.MethodPost, "/visits", strings.NewReader(validVisitBody)), 9, domain.RoleUser)
	rec := httptest.NewRecorder()
	h.create(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d visits, want 1", len(store.created))
	}
	p := store.created[0]
	if p.UserID != 9 {
		t.Errorf("userId = %d, want caller's id 9", p.UserID)
	}
	if p.Photos == nil {
		t.Error("photos should default to an empty slice")
	}
}

func TestCreateVisitValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing customer", `{"visitLat":-6.2,"visitLng":106.8,"visitType":"sales","visitResult":"deal"}`},
		{"missing coordinates", `{"customerName":"A","customerAddress":"B","visitType":"sales","visitResult":"deal"}`},
		{"missing type and result", `{"customerName":"A","customerAddress":"B","visitLat":-6.2,"visitLng":106.8}`},
		{"malformed json", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &stubVisitStore{}
			h := VisitHandler{Store: store}

			req := asUser(httptest.NewRequest(http.MethodPost, "/visits", strings.NewReader(tc.body)), 9, domain.RoleUser)
			rec := httptest.NewRecorder()
			h.create(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if len(store.created) != 0 {
				t.Error("invalid payload reached the store")
			}
		})
	}
}

func TestListVisitsDefaultsToCaller(t *testing.T) {
	store := &stubVisitStore{}
	h := VisitHandler{Store: store}

	req := asUser(httptest.NewRequest(http.MethodGet, "/visits", nil), 9, domain.RoleUser)
	rec := httptest.NewRecorder()
	h.list(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if store.listedUser != 9 {
		t.Errorf("listed user = %d, want caller's id 9", store.listedUser)
	}
}

func TestListVisitsForbidsReadingOthersLog(t *testing.T) {
	h := VisitHandler{Store: &stubVisitStore{}}

	req := asUser(httptest.NewRequest(http.MethodGet, "/visits?userId=3", nil), 9, domain.RoleUser)
	rec := httptest.NewRecorder()
	h.list(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestListVisitsAdminMayReadAnyLog(t *testing.T) {
	store := &stubVisitStore{}
	h := VisitHandler{Store: store}

	req := asUser(httptest.NewRequest(http.MethodGet, "/visits?userId=3", nil), 1, domain.RoleAdmin)
	rec := httptest.NewRecorder()
	h.list(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if store.listedUser != 3 {
		t.Errorf("listed user = %d, want 3", store.listedUser)
	}
}
