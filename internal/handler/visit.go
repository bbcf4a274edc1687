package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/deatransindo/absensi/internal/domain"
	"github.com/deatransindo/absensi/internal/repository"
	"github.com/deatransindo/absensi/internal/server/authctx"
	"github.com/go-chi/chi/v5"
)

// VisitStore is the slice of the visit repository the handler needs.
type VisitStore interface {
	Create(ctx context.Context, p repository.CreateVisitParams) (*domain.Visit, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Visit, error)
}

type VisitHandler struct {
	Store VisitStore
}

func (h VisitHandler) RegisterRoutes(r chi.Router) {
	r.Post("/visits", h.create)
	r.Get("/visits", h.list)
}

func (h VisitHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		CustomerName    string   `json:"customerName"`
		CustomerPhone   string   `json:"customerPhone"`
		CustomerAddress string   `json:"customerAddress"`
		VisitLat        *float64 `json:"visitLat"`
		VisitLng        *float64 `json:"visitLng"`
		VisitType       string   `json:"visitType"`
		VisitResult     string   `json:"visitResult"`
		Notes           string   `json:"notes"`
		Photos          []string `json:"photos"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.CustomerName == "" || req.CustomerAddress == "" {
		writeError(w, http.StatusBadRequest, "customerName and customerAddress are required")
		return
	}
	if req.VisitLat == nil || req.VisitLng == nil {
		writeError(w, http.StatusBadRequest, "visitLat and visitLng are required")
		return
	}
	if req.VisitType == "" || req.VisitResult == "" {
		writeError(w, http.StatusBadRequest, "visitType and visitResult are required")
		return
	}
	if req.Photos == nil {
		req.Photos = []string{}
	}
	visit, err := h.Store.Create(r.Context(), repository.CreateVisitParams{
		UserID:          user.ID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		VisitTime:       time.Now(),
		VisitLat:        *req.VisitLat,
		VisitLng:        *req.VisitLng,
		VisitType:       req.VisitType,
		VisitResult:     req.VisitResult,
		Notes:           req.Notes,
		Photos:          req.Photos,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, visitPayload(*visit))
}

func (h VisitHandler) list(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	// Admins may read any subject's log; staff only their own.
	targetID := user.ID
	if v := r.URL.Query().Get("userId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid userId")
			return
		}
		if id != user.ID && user.Role != domain.RoleAdmin {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		targetID = id
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	items, err := h.Store.ListByUser(r.Context(), targetID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, v := range items {
		resp = append(resp, visitPayload(v))
	}
	writeJSON(w, http.StatusOK, resp)
}

func visitPayload(v domain.Visit) map[string]any {
	return map[string]any{
		"id":              v.ID,
		"userId":          v.UserID,
		"customerName":    v.CustomerName,
		"customerPhone":   v.CustomerPhone,
		"customerAddress": v.CustomerAddress,
		"visitTime":       v.VisitTime.Format(time.RFC3339),
		"visitLat":        v.VisitLat,
		"visitLng":        v.VisitLng,
		"visitType":       v.VisitType,
		"visitResult":     v.VisitResult,
		"notes":           v.Notes,
		"photos":          v.Photos,
	}
}
