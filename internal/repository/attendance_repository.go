package repository

import (
	"context"
	"errors"
	"time"

	"github.com/deatransindo/absensi/internal/db"
	"github.com/deatransindo/absensi/internal/domain"
	"github.com/jackc/pgx/v5"
)

type AttendanceRepository struct {
	DB *db.Postgres
}

const attendanceColumns = `id, user_id, attendance_day, status,
	check_in_time, check_in_lat, check_in_lng, check_in_address, check_in_photo,
	check_out_time, check_out_lat, check_out_lng, check_out_address, check_out_photo,
	daily_report, work_duration, created_at, updated_at`

type CheckInParams struct {
	Time    time.Time
	Lat     *float64
	Lng     *float64
	Address *string
	Photo   *string
}

type CheckOutParams struct {
	Time     time.Time
	Lat      *float64
	Lng      *float64
	Address  *string
	Photo    *string
	Report   *string
	Duration int
}

// AttendanceFilter restricts Query results. Nil fields mean "any".
type AttendanceFilter struct {
	UserID      *int64
	From        *time.Time
	To          *time.Time
	OldestFirst bool
}

func (r AttendanceRepository) GetForDay(ctx context.Context, userID int64, day time.Time) (*domain.Attendance, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance
		WHERE user_id = $1 AND attendance_day = $2::date
	`, userID, day.Format("2006-01-02"))
	rec, err := scanAttendance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// CreateCheckIn inserts today's record with check-in fields populated.
// The unique (user_id, attendance_day) index rejects a concurrent duplicate.
func (r AttendanceRepository) CreateCheckIn(ctx context.Context, userID int64, day time.Time, p CheckInParams) (*domain.Attendance, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO attendance (user_id, attendance_day, status,
			check_in_time, check_in_lat, check_in_lng, check_in_address, check_in_photo,
			created_at, updated_at)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING `+attendanceColumns+`
	`, userID, day.Format("2006-01-02"), domain.AttendancePresent,
		p.Time, p.Lat, p.Lng, p.Address, p.Photo)
	return scanAttendance(row)
}

// SetCheckIn fills the check-in fields on a pre-existing record (one created
// with an EXCUSED/SICK status before the subject arrived).
func (r AttendanceRepository) SetCheckIn(ctx context.Context, id int64, p CheckInParams) (*domain.Attendance, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE attendance SET
			status = $2,
			check_in_time = $3, check_in_lat = $4, check_in_lng = $5,
			check_in_address = $6, check_in_photo = $7,
			updated_at = now()
		WHERE id = $1
		RETURNING `+attendanceColumns+`
	`, id, domain.AttendancePresent, p.Time, p.Lat, p.Lng, p.Address, p.Photo)
	rec, err := scanAttendance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r AttendanceRepository) SetCheckOut(ctx context.Context, id int64, p CheckOutParams) (*domain.Attendance, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE attendance SET
			check_out_time = $2, check_out_lat = $3, check_out_lng = $4,
			check_out_address = $5, check_out_photo = $6,
			daily_report = $7, work_duration = $8,
			updated_at = now()
		WHERE id = $1
		RETURNING `+attendanceColumns+`
	`, id, p.Time, p.Lat, p.Lng, p.Address, p.Photo, p.Report, p.Duration)
	rec, err := scanAttendance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r AttendanceRepository) History(ctx context.Context, userID int64, limit int) ([]domain.Attendance, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance
		WHERE user_id = $1
		ORDER BY attendance_day DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Attendance
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rec)
	}
	return items, rows.Err()
}

// Query returns records joined with their owner, newest day first unless
// the filter asks for oldest first.
func (r AttendanceRepository) Query(ctx context.Context, f AttendanceFilter) ([]domain.AttendanceWithUser, error) {
	query := `
		SELECT a.id, a.user_id, a.attendance_day, a.status,
			a.check_in_time, a.check_in_lat, a.check_in_lng, a.check_in_address, a.check_in_photo,
			a.check_out_time, a.check_out_lat, a.check_out_lng, a.check_out_address, a.check_out_photo,
			a.daily_report, a.work_duration, a.created_at, a.updated_at,
			u.name, u.email
		FROM attendance a
		JOIN users u ON u.id = a.user_id
		WHERE ($1::bigint IS NULL OR a.user_id = $1)
		  AND ($2::date IS NULL OR a.attendance_day >= $2)
		  AND ($3::date IS NULL OR a.attendance_day <= $3)
		ORDER BY a.attendance_day DESC`
	if f.OldestFirst {
		query = query[:len(query)-len("DESC")] + "ASC"
	}

	rows, err := r.DB.Pool.Query(ctx, query, f.UserID, dateOrNil(f.From), dateOrNil(f.To))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.AttendanceWithUser
	for rows.Next() {
		var (
			rec    domain.AttendanceWithUser
			status string
		)
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.Day, &status,
			&rec.CheckInTime, &rec.CheckInLat, &rec.CheckInLng, &rec.CheckInAddress, &rec.CheckInPhoto,
			&rec.CheckOutTime, &rec.CheckOutLat, &rec.CheckOutLng, &rec.CheckOutAddress, &rec.CheckOutPhoto,
			&rec.DailyReport, &rec.WorkDuration, &rec.CreatedAt, &rec.UpdatedAt,
			&rec.UserName, &rec.UserEmail,
		); err != nil {
			return nil, err
		}
		rec.Status = domain.AttendanceStatus(status)
		items = append(items, rec)
	}
	return items, rows.Err()
}

func dateOrNil(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func scanAttendance(row interface {
	Scan(dest ...any) error
}) (*domain.Attendance, error) {
	var (
		rec    domain.Attendance
		status string
	)
	if err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Day, &status,
		&rec.CheckInTime, &rec.CheckInLat, &rec.CheckInLng, &rec.CheckInAddress, &rec.CheckInPhoto,
		&rec.CheckOutTime, &rec.CheckOutLat, &rec.CheckOutLng, &rec.CheckOutAddress, &rec.CheckOutPhoto,
		&rec.DailyReport, &rec.WorkDuration, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rec.Status = domain.AttendanceStatus(status)
	return &rec, nil
}
