package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/deatransindo/absensi/internal/repository"
)

const dateLayout = "2006-01-02"

func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseAttendanceFilter reads the report query parameters: optional userId,
// plus either month+year or startDate+endDate.
func parseAttendanceFilter(r *http.Request) (repository.AttendanceFilter, error) {
	var f repository.AttendanceFilter

	if v := r.URL.Query().Get("userId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, fmt.Errorf("invalid userId")
		}
		f.UserID = &id
	}

	startDate, err := parseDateQuery(r, "startDate")
	if err != nil {
		return f, fmt.Errorf("invalid startDate")
	}
	endDate, err := parseDateQuery(r, "endDate")
	if err != nil {
		return f, fmt.Errorf("invalid endDate")
	}
	if startDate != nil && endDate != nil {
		if startDate.After(*endDate) {
			return f, fmt.Errorf("startDate must be before endDate")
		}
		f.From = startDate
		f.To = endDate
		return f, nil
	}

	monthStr := r.URL.Query().Get("month")
	yearStr := r.URL.Query().Get("year")
	if monthStr != "" && yearStr != "" {
		month, err := strconv.Atoi(monthStr)
		if err != nil || month < 1 || month > 12 {
			return f, fmt.Errorf("invalid month")
		}
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return f, fmt.Errorf("invalid year")
		}
		from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, -1)
		f.From = &from
		f.To = &to
	}
	return f, nil
}
