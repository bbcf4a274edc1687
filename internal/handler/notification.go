package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/deatransindo/absensi/internal/domain"
	"github.com/deatransindo/absensi/internal/repository"
	"github.com/deatransindo/absensi/internal/server/authctx"
	"github.com/deatransindo/absensi/internal/service"
	"github.com/go-chi/chi/v5"
)

// SubscriptionWriter is the slice of the subscription repository the
// subscribe/unsubscribe endpoints need.
type SubscriptionWriter interface {
	Save(ctx context.Context, p repository.SaveSubscriptionParams) (*domain.PushSubscription, error)
	DeactivateEndpoint(ctx context.Context, userID int64, endpoint string) error
}

type NotificationHandler struct {
	Reminders      *service.ReminderService
	Subs           SubscriptionWriter
	VAPIDPublicKey string
}

// RegisterPublicRoutes exposes the VAPID public key clients need before they
// can create a push subscription.
func (h NotificationHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/notifications/send", h.publicKey)
}

func (h NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/notifications/subscribe", h.subscribe)
	r.Delete("/notifications/subscribe", h.unsubscribe)
}

func (h NotificationHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/notifications/send", h.send)
}

func (h NotificationHandler) publicKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"publicKey": h.VAPIDPublicKey})
}

func (h NotificationHandler) subscribe(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Subscription struct {
			Endpoint string `json:"endpoint"`
			Keys     struct {
				P256dh string `json:"p256dh"`
				Auth   string `json:"auth"`
			} `json:"keys"`
		} `json:"subscription"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	sub := req.Subscription
	if sub.Endpoint == "" || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		writeError(w, http.StatusBadRequest, "invalid subscription data")
		return
	}
	saved, err := h.Subs.Save(r.Context(), repository.SaveSubscriptionParams{
		UserID:   user.ID,
		Endpoint: sub.Endpoint,
		P256dh:   sub.Keys.P256dh,
		Auth:     sub.Keys.Auth,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       saved.ID,
		"endpoint": saved.Endpoint,
		"isActive": saved.IsActive,
	})
}

func (h NotificationHandler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "endpoint is required")
		return
	}
	if err := h.Subs.DeactivateEndpoint(r.Context(), user.ID, req.Endpoint); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to remove subscription")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h NotificationHandler) send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	kind := service.ReminderKind(strings.ToLower(strings.TrimSpace(req.Type)))
	result, err := h.Reminders.SendReminders(r.Context(), kind)
	if err != nil {
		if errors.Is(err, service.ErrInvalidReminderKind) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to send notifications")
		return
	}

	details := make([]map[string]any, 0, len(result.Details))
	for _, d := range result.Details {
		details = append(details, map[string]any{
			"userId": d.UserID,
			"name":   d.Name,
			"status": d.Status,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":          result.Total,
		"sent":           result.Sent,
		"failed":         result.Failed,
		"noSubscription": result.NoSubscription,
		"details":        details,
	})
}
