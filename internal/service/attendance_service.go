package service

import (
	"context"
	"errors"
	"time"

	"github.com/deatransindo/absensi/internal/domain"
	"github.com/deatransindo/absensi/internal/repository"
)

var (
	ErrAlreadyCheckedIn  = errors.New("already checked in today")
	ErrNotCheckedIn      = errors.New("not checked in today")
	ErrAlreadyCheckedOut = errors.New("already checked out today")
)

// AttendanceStore is the slice of the attendance repository the day-record
// lifecycle needs.
type AttendanceStore interface {
	GetForDay(ctx context.Context, userID int64, day time.Time) (*domain.Attendance, error)
	CreateCheckIn(ctx context.Context, userID int64, day time.Time, p repository.CheckInParams) (*domain.Attendance, error)
	SetCheckIn(ctx context.Context, id int64, p repository.CheckInParams) (*domain.Attendance, error)
	SetCheckOut(ctx context.Context, id int64, p repository.CheckOutParams) (*domain.Attendance, error)
	History(ctx context.Context, userID int64, limit int) ([]domain.Attendance, error)
}

// AttendanceService owns the per-day record state machine:
// no record -> checked in -> checked out, no reversals.
type AttendanceService struct {
	Store AttendanceStore
	Now   func() time.Time
}

type CheckInInput struct {
	Lat     *float64
	Lng     *float64
	Address *string
	Photo   *string
}

type CheckOutInput struct {
	Lat     *float64
	Lng     *float64
	Address *string
	Photo   *string
	Report  *string
}

func (s AttendanceService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CheckIn stamps today's check-in, creating the day record if absent.
func (s AttendanceService) CheckIn(ctx context.Context, userID int64, in CheckInInput) (*domain.Attendance, error) {
	now := s.now()
	day := dayOf(now)

	rec, err := s.Store.GetForDay(ctx, userID, day)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if rec != nil && rec.CheckInTime != nil {
		return nil, ErrAlreadyCheckedIn
	}

	p := repository.CheckInParams{
		Time:    now,
		Lat:     in.Lat,
		Lng:     in.Lng,
		Address: in.Address,
		Photo:   in.Photo,
	}
	if rec == nil {
		created, err := s.Store.CreateCheckIn(ctx, userID, day, p)
		if err != nil {
			// A concurrent check-in hit the unique (user, day) index first.
			if repository.IsDuplicate(err) {
				return nil, ErrAlreadyCheckedIn
			}
			return nil, err
		}
		return created, nil
	}
	return s.Store.SetCheckIn(ctx, rec.ID, p)
}

// CheckOut stamps today's check-out and derives the work duration in whole
// minutes from the check-in timestamp.
func (s AttendanceService) CheckOut(ctx context.Context, userID int64, in CheckOutInput) (*domain.Attendance, error) {
	now := s.now()

	rec, err := s.Store.GetForDay(ctx, userID, dayOf(now))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotCheckedIn
		}
		return nil, err
	}
	if rec.CheckInTime == nil {
		return nil, ErrNotCheckedIn
	}
	if rec.CheckOutTime != nil {
		return nil, ErrAlreadyCheckedOut
	}

	duration := int(now.Sub(*rec.CheckInTime) / time.Minute)
	if duration < 0 {
		duration = 0
	}
	return s.Store.SetCheckOut(ctx, rec.ID, repository.CheckOutParams{
		Time:     now,
		Lat:      in.Lat,
		Lng:      in.Lng,
		Address:  in.Address,
		Photo:    in.Photo,
		Report:   in.Report,
		Duration: duration,
	})
}

// Today returns today's record, or nil when the subject has none yet.
func (s AttendanceService) Today(ctx context.Context, userID int64) (*domain.Attendance, error) {
	rec, err := s.Store.GetForDay(ctx, userID, dayOf(s.now()))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// History returns the most recent records, newest day first.
func (s AttendanceService) History(ctx context.Context, userID int64, limit int) ([]domain.Attendance, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	return s.Store.History(ctx, userID, limit)
}
