package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/deatransindo/absensi/internal/domain"
	"github.com/deatransindo/absensi/internal/ports"
	"github.com/deatransindo/absensi/internal/repository"
)

type ReminderKind string

const (
	ReminderCheckIn  ReminderKind = "checkin"
	ReminderCheckOut ReminderKind = "checkout"
)

var ErrInvalidReminderKind = errors.New(`invalid reminder type, use "checkin" or "checkout"`)

type ReminderUserStore interface {
	ListActiveByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error)
}

type ReminderAttendanceStore interface {
	GetForDay(ctx context.Context, userID int64, day time.Time) (*domain.Attendance, error)
}

type SubscriptionStore interface {
	ListActiveByUser(ctx context.Context, userID int64) ([]domain.PushSubscription, error)
	Deactivate(ctx context.Context, id int64) error
}

// ReminderService pushes check-in/check-out reminders to field staff whose
// day record lacks the corresponding timestamp.
type ReminderService struct {
	Users         ReminderUserStore
	Attendance    ReminderAttendanceStore
	Subscriptions SubscriptionStore
	Sender        ports.PushSender
	Logger        *slog.Logger
	Now           func() time.Time
}

type DispatchResult struct {
	Total          int
	Sent           int
	Failed         int
	NoSubscription int
	Details        []DispatchDetail
}

type DispatchDetail struct {
	UserID int64
	Name   string
	Status string
}

const (
	dispatchSent           = "sent"
	dispatchFailed         = "failed"
	dispatchNoSubscription = "no_subscription"
)

func (s ReminderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SendReminders delivers one reminder per selected subject. Subjects are
// processed independently; one delivery failure never blocks the rest.
func (s ReminderService) SendReminders(ctx context.Context, kind ReminderKind) (*DispatchResult, error) {
	if kind != ReminderCheckIn && kind != ReminderCheckOut {
		return nil, ErrInvalidReminderKind
	}

	users, err := s.Users.ListActiveByRole(ctx, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	day := dayOf(s.now())
	result := &DispatchResult{Total: len(users)}

	for _, user := range users {
		rec, err := s.Attendance.GetForDay(ctx, user.ID, day)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}

		var send bool
		switch kind {
		case ReminderCheckIn:
			send = rec == nil || rec.CheckInTime == nil
		case ReminderCheckOut:
			send = rec != nil && rec.CheckInTime != nil && rec.CheckOutTime == nil
		}
		if !send {
			continue
		}

		subs, err := s.Subscriptions.ListActiveByUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if len(subs) == 0 {
			result.NoSubscription++
			result.Details = append(result.Details, DispatchDetail{
				UserID: user.ID, Name: user.Name, Status: dispatchNoSubscription,
			})
			continue
		}

		payload, err := json.Marshal(reminderPayload(kind, user.Name))
		if err != nil {
			return nil, err
		}

		delivered := false
		for _, sub := range subs {
			if err := s.Sender.Send(ctx, sub, payload); err != nil {
				if errors.Is(err, ports.ErrSubscriptionGone) {
					// Expired endpoint, stop dispatching to it.
					if derr := s.Subscriptions.Deactivate(ctx, sub.ID); derr != nil {
						s.logWarn("deactivate subscription", "err", derr, "subscriptionId", sub.ID)
					}
				}
				s.logWarn("push delivery failed", "err", err, "userId", user.ID)
				continue
			}
			delivered = true
		}

		if delivered {
			result.Sent++
			result.Details = append(result.Details, DispatchDetail{
				UserID: user.ID, Name: user.Name, Status: dispatchSent,
			})
		} else {
			result.Failed++
			result.Details = append(result.Details, DispatchDetail{
				UserID: user.ID, Name: user.Name, Status: dispatchFailed,
			})
		}
	}

	return result, nil
}

func reminderPayload(kind ReminderKind, name string) map[string]any {
	title := "Check-in reminder"
	body := fmt.Sprintf("Hi %s, don't forget to check in today!", name)
	if kind == ReminderCheckOut {
		title = "Check-out reminder"
		body = fmt.Sprintf("Hi %s, don't forget to check out before you leave!", name)
	}
	return map[string]any{
		"title": title,
		"body":  body,
		"icon":  "/favicon.svg",
		"badge": "/favicon.svg",
		"data": map[string]string{
			"url":  "/user",
			"type": string(kind),
		},
	}
}

func (s ReminderService) logWarn(msg string, args ...any) {
	if s.Logger != nil {
		s.Logger.Warn(msg, args...)
	}
}
