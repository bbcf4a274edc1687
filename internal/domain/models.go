package domain

import "time"

// Enumerations
const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"

	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceExcused AttendanceStatus = "EXCUSED"
	AttendanceSick    AttendanceStatus = "SICK"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
)

type UserRole string
type AttendanceStatus string

type User struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	Role         UserRole
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Attendance is the single record for a (user, calendar day) pair.
// Check-out fields are only ever set after the check-in fields, and
// WorkDuration (whole minutes) is present iff both timestamps are.
type Attendance struct {
	ID              int64
	UserID          int64
	Day             time.Time
	Status          AttendanceStatus
	CheckInTime     *time.Time
	CheckInLat      *float64
	CheckInLng      *float64
	CheckInAddress  *string
	CheckInPhoto    *string
	CheckOutTime    *time.Time
	CheckOutLat     *float64
	CheckOutLng     *float64
	CheckOutAddress *string
	CheckOutPhoto   *string
	DailyReport     *string
	WorkDuration    *int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AttendanceWithUser carries the owning user's display fields for reports.
type AttendanceWithUser struct {
	Attendance
	UserName  string
	UserEmail string
}

type Visit struct {
	ID              int64
	UserID          int64
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	VisitTime       time.Time
	VisitLat        float64
	VisitLng        float64
	VisitType       string
	VisitResult     string
	Notes           string
	Photos          []string
	CreatedAt       time.Time
}

// PushSubscription is a browser push endpoint plus its protocol keys.
// At most one row exists per endpoint.
type PushSubscription struct {
	ID        int64
	UserID    int64
	Endpoint  string
	P256dh    string
	Auth      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
