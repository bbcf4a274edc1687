package repository

import (
	"context"
	"time"

	"github.com/deatransindo/absensi/internal/db"
	"github.com/deatransindo/absensi/internal/domain"
)

type DashboardRepository struct {
	DB *db.Postgres
}

// DashboardSummary counts today's field-staff attendance state.
type DashboardSummary struct {
	TotalStaff   int64
	CheckedIn    int64
	CheckedOut   int64
	NotCheckedIn int64
}

func (r DashboardRepository) Summary(ctx context.Context, day time.Time) (DashboardSummary, error) {
	var s DashboardSummary
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = $2 AND is_active) AS total_staff,
			COUNT(*) FILTER (WHERE a.check_in_time IS NOT NULL) AS checked_in,
			COUNT(*) FILTER (WHERE a.check_out_time IS NOT NULL) AS checked_out
		FROM attendance a
		WHERE a.attendance_day = $1::date
	`, day.Format("2006-01-02"), domain.RoleUser).Scan(&s.TotalStaff, &s.CheckedIn, &s.CheckedOut)
	if err != nil {
		return s, err
	}
	s.NotCheckedIn = s.TotalStaff - s.CheckedIn
	if s.NotCheckedIn < 0 {
		s.NotCheckedIn = 0
	}
	return s, nil
}

// TodayRecords returns the day's attendance joined with owner info.
func (r DashboardRepository) TodayRecords(ctx context.Context, day time.Time) ([]domain.AttendanceWithUser, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT a.id, a.user_id, a.attendance_day, a.status,
			a.check_in_time, a.check_in_lat, a.check_in_lng, a.check_in_address, a.check_in_photo,
			a.check_out_time, a.check_out_lat, a.check_out_lng, a.check_out_address, a.check_out_photo,
			a.daily_report, a.work_duration, a.created_at, a.updated_at,
			u.name, u.email
		FROM attendance a
		JOIN users u ON u.id = a.user_id
		WHERE a.attendance_day = $1::date
		ORDER BY a.check_in_time ASC NULLS LAST
	`, day.Format("2006-01-02"))
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
