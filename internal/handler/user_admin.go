package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/deatransindo/absensi/internal/domain"
	"github.com/deatransindo/absensi/internal/repository"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserAdminHandler manages field-staff accounts. All routes sit behind the
// admin role gate.
type UserAdminHandler struct {
	Repo repository.UserRepository
}

func (h UserAdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/users", h.list)
	r.Post("/admin/users", h.create)
	r.Patch("/admin/users/{id}", h.update)
	r.Delete("/admin/users/{id}", h.delete)
}

func (h UserAdminHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.ListWithCounts(r.Context(), domain.RoleUser)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, u := range items {
		resp = append(resp, map[string]any{
			"id":        u.ID,
			"name":      u.Name,
			"email":     u.Email,
			"phone":     u.Phone,
			"role":      string(u.Role),
			"isActive":  u.IsActive,
			"createdAt": u.CreatedAt.Format(time.RFC3339),
			"counts": map[string]any{
				"attendance": u.AttendanceCount,
				"visits":     u.VisitCount,
			},
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h UserAdminHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	user, err := h.Repo.Create(r.Context(), repository.CreateUserParams{
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		Phone:        req.Phone,
		Role:         domain.RoleUser,
		PasswordHash: string(hash),
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			writeError(w, http.StatusBadRequest, "email already used")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

func (h UserAdminHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		Name     *string `json:"name"`
		Email    *string `json:"email"`
		Phone    *string `json:"phone"`
		Password *string `json:"password"`
		IsActive *bool   `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	params := repository.UpdateUserParams{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		IsActive: req.IsActive,
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to hash password")
			return
		}
		params.PasswordHash = ptr(string(hash))
	}
	user, err := h.Repo.Update(r.Context(), id, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		if repository.IsDuplicate(err) {
			writeError(w, http.StatusBadRequest, "email already used")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       user.ID,
		"name":     user.Name,
		"email":    user.Email,
		"phone":    user.Phone,
		"isActive": user.IsActive,
	})
}

func (h UserAdminHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func ptr[T any](v T) *T { return &v }
