package service

import (
	"context"
	"errors"
	"time"

	"testing"

	"github.com/deatransindo/absensi/internal/domain"
	"github.com/deatransindo/absensi/internal/ports"
	"github.com/deatransindo/absensi/internal/repository"
)

type fakeUserList []domain.User

func (f fakeUserList) ListActiveByRole(context.Context, domain.UserRole) ([]domain.User, error) {
	return f, nil
}

type fakeDayStore map[int64]*domain.Attendance

func (f fakeDayStore) GetForDay(_ context.Context, userID int64, _ time.Time) (*domain.Attendance, error) {
	rec, ok := f[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return rec, nil
}

type fakeSubs struct {
	byUser      map[int64][]domain.PushSubscription
	deactivated []int64
}

func (f *fakeSubs) ListActiveByUser(_ context.Context, userID int64) ([]domain.PushSubscription, error) {
	return f.byUser[userID], nil
}

func (f *fakeSubs) Deactivate(_ context.Context, id int64) error {
	f.deactivated = append(f.deactivated, id)
	return nil
}

type fakeSender struct {
	errs  map[int64]error // per subscription id
	sends []int64
}

func (f *fakeSender) Send(_ context.Context, sub domain.PushSubscription, _ []byte) error {
	f.sends = append(f.sends, sub.ID)
	return f.errs[sub.ID]
}

func staff(id int64, name string) domain.User {
	return domain.User{ID: id, Name: name, Role: domain.RoleUser, IsActive: true}
}

func checkedIn(userID int64) *domain.Attendance {
	t := time.Now()
	return &domain.Attendance{UserID: userID, CheckInTime: &t}
}

func checkedOut(userID int64) *domain.Attendance {
	rec := checkedIn(userID)
	t := time.Now()
	rec.CheckOutTime = &t
	return rec
}

func TestSendRemindersTallies(t *testing.T) {
	// Three active subjects, none checked in. One has a working
	// subscription, the other two have none.
	sender := &fakeSender{}
	subs := &fakeSubs{byUser: map[int64][]domain.PushSubscription{
		1: {{ID: 11, UserID: 1, Endpoint: "https://push.example/a", IsActive: true}},
	}}
	svc := ReminderService{
		Users:         fakeUserList{staff(1, "ana"), staff(2, "budi"), staff(3, "cita")},
		Attendance:    fakeDayStore{},
		Subscriptions: subs,
		Sender:        sender,
	}

	res, err := svc.SendReminders(context.Background(), ReminderCheckIn)
	if err != nil {
		t.Fatalf("SendReminders: %v", err)
	}
	if res.Total != 3 || res.Sent != 1 || res.Failed != 0 || res.NoSubscription != 2 {
		t.Fatalf("result = %+v, want total:3 sent:1 failed:0 noSubscription:2", res)
	}
	if len(res.Details) != 3 {
		t.Fatalf("details = %d entries, want 3", len(res.Details))
	}
	if res.Details[0].Status != dispatchSent {
		t.Errorf("first detail = %+v, want sent", res.Details[0])
	}
}

func TestSendRemindersSkipsSettledSubjects(t *testing.T) {
	sender := &fakeSender{}
	subs := &fakeSubs{byUser: map[int64][]domain.PushSubscription{
		1: {{ID: 11, UserID: 1}},
		2: {{ID: 12, UserID: 2}},
	}}
	svc := ReminderService{
		Users:         fakeUserList{staff(1, "ana"), staff(2, "budi")},
		Attendance:    fakeDayStore{1: checkedIn(1), 2: checkedOut(2)},
		Subscriptions: subs,
		Sender:        sender,
	}

	// Check-in reminders: both already checked in, nobody selected.
	res, err := svc.SendReminders(context.Background(), ReminderCheckIn)
	if err != nil {
		t.Fatalf("SendReminders: %v", err)
	}
	if res.Sent != 0 || res.NoSubscription != 0 || res.Failed != 0 {
		t.Fatalf("checkin result = %+v, want nothing dispatched", res)
	}

	// Check-out reminders: only the subject still on the clock.
	res, err = svc.SendReminders(context.Background(), ReminderCheckOut)
	if err != nil {
		t.Fatalf("SendReminders: %v", err)
	}
	if res.Sent != 1 {
		t.Fatalf("checkout result = %+v, want sent:1", res)
	}
	if len(sender.sends) != 1 || sender.sends[0] != 11 {
		t.Errorf("delivered to %v, want subscription 11 only", sender.sends)
	}
}

func TestSendRemindersDeactivatesGoneSubscription(t *testing.T) {
	sender := &fakeSender{errs: map[int64]error{11: ports.ErrSubscriptionGone}}
	subs := &fakeSubs{byUser: map[int64][]domain.PushSubscription{
		1: {{ID: 11, UserID: 1}},
	}}
	svc := ReminderService{
		Users:         fakeUserList{staff(1, "ana")},
		Attendance:    fakeDayStore{},
		Subscriptions: subs,
		Sender:        sender,
	}

	res, err := svc.SendReminders(context.Background(), ReminderCheckIn)
	if err != nil {
		t.Fatalf("SendReminders: %v", err)
	}
	if res.Failed != 1 || res.Sent != 0 {
		t.Fatalf("result = %+v, want failed:1", res)
	}
	if len(subs.deactivated) != 1 || subs.deactivated[0] != 11 {
		t.Errorf("deactivated = %v, want [11]", subs.deactivated)
	}
}

func TestSendRemindersPartialDeliveryCountsAsSent(t *testing.T) {
	sender := &fakeSender{errs: map[int64]error{11: errors.New("boom")}}
	subs := &fakeSubs{byUser: map[int64][]domain.PushSubscription{
		1: {{ID: 11, UserID: 1}, {ID: 12, UserID: 1}},
	}}
	svc := ReminderService{
		Users:         fakeUserList{staff(1, "ana")},
		Attendance:    fakeDayStore{},
		Subscriptions: subs,
		Sender:        sender,
	}

	res, err := svc.SendReminders(context.Background(), ReminderCheckIn)
	if err != nil {
		t.Fatalf("SendReminders: %v", err)
	}
	if res.Sent != 1 || res.Failed != 0 {
		t.Fatalf("result = %+v, want sent:1 when one of two deliveries succeeds", res)
	}
}

func TestSendRemindersRejectsUnknownKind(t *testing.T) {
	svc := ReminderService{}
	if _, err := svc.SendReminders(context.Background(), ReminderKind("lunch")); !errors.Is(err, ErrInvalidReminderKind) {
		t.Fatalf("err = %v, want ErrInvalidReminderKind", err)
	}
}
