package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/deatransindo/absensi/internal/domain"
	"github.com/deatransindo/absensi/internal/repository"
	"github.com/xuri/excelize/v2"
)

// ReportStore is the slice of the attendance repository reporting needs.
type ReportStore interface {
	Query(ctx context.Context, f repository.AttendanceFilter) ([]domain.AttendanceWithUser, error)
}

type ReportService struct {
	Store ReportStore
	// Client fetches remote photo URLs during spreadsheet export.
	Client *http.Client
}

// ReportStats aggregates one report query.
type ReportStats struct {
	TotalDays       int
	Present         int
	Excused         int
	Sick            int
	Absent          int
	LateCheckins    int
	AvgWorkDuration float64
}

// Late means checking in after 08:15. The cutoff is a fixed business rule.
func isLateCheckIn(t time.Time) bool {
	return t.Hour() > 8 || (t.Hour() == 8 && t.Minute() > 15)
}

// Query returns the matching records plus aggregate statistics.
func (s ReportService) Query(ctx context.Context, f repository.AttendanceFilter) ([]domain.AttendanceWithUser, ReportStats, error) {
	records, err := s.Store.Query(ctx, f)
	if err != nil {
		return nil, ReportStats{}, err
	}
	return records, computeStats(records), nil
}

func computeStats(records []domain.AttendanceWithUser) ReportStats {
	stats := ReportStats{TotalDays: len(records)}

	var durationSum, durationCount int
	for _, rec := range records {
		switch rec.Status {
		case domain.AttendancePresent:
			stats.Present++
		case domain.AttendanceExcused:
			stats.Excused++
		case domain.AttendanceSick:
			stats.Sick++
		case domain.AttendanceAbsent:
			stats.Absent++
		}
		if rec.CheckInTime != nil && isLateCheckIn(*rec.CheckInTime) {
			stats.LateCheckins++
		}
		if rec.WorkDuration != nil {
			durationSum += *rec.WorkDuration
			durationCount++
		}
	}

	// Divide by 1 when no record has a duration. Deliberate, keeps the
	// average defined (zero) for empty periods.
	if durationCount == 0 {
		durationCount = 1
	}
	stats.AvgWorkDuration = float64(durationSum) / float64(durationCount)
	return stats
}

// ExportCSV serializes records as comma-separated text. Fields pass through
// encoding/csv with its default quoting only.
func (s ReportService) ExportCSV(records []domain.AttendanceWithUser) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"date", "name", "email", "checkIn", "checkOut", "durationMinutes", "status"})
	for _, rec := range records {
		_ = w.Write([]string{
			rec.Day.Format("2006-01-02"),
			rec.UserName,
			rec.UserEmail,
			clockOrDash(rec.CheckInTime),
			clockOrDash(rec.CheckOutTime),
			durationMinutes(rec.WorkDuration),
			string(rec.Status),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

const reportSheet = "Attendance"

// ExportSpreadsheet builds an XLSX workbook with one row per record and the
// check-in/check-out photos embedded. A photo that cannot be decoded or
// fetched degrades to a placeholder cell; it never aborts the export.
func (s ReportService) ExportSpreadsheet(ctx context.Context, records []domain.AttendanceWithUser) ([]byte, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(reportSheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{
		"No", "Date", "Name", "Email",
		"Check In", "Check In Photo", "Check In Location",
		"Check Out", "Check Out Photo", "Check Out Location",
		"Duration", "Status", "Daily Report",
	}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(reportSheet, cell, v)
	}

	for i, rec := range records {
		row := i + 2
		values := []any{
			i + 1,
			rec.Day.Format("02 Jan 2006"),
			rec.UserName,
			rec.UserEmail,
			clockOrDash(rec.CheckInTime),
			"", // photo or placeholder
			textOrDash(rec.CheckInAddress),
			clockOrDash(rec.CheckOutTime),
			"", // photo or placeholder
			textOrDash(rec.CheckOutAddress),
			durationLabel(rec.WorkDuration),
			string(rec.Status),
			textOrDash(rec.DailyReport),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(reportSheet, cell, v)
		}
		_ = f.SetRowHeight(reportSheet, row, 70)

		s.embedPhoto(ctx, f, rec.CheckInPhoto, 6, row)
		s.embedPhoto(ctx, f, rec.CheckOutPhoto, 9, row)
	}

	widths := map[string]float64{
		"A": 5, "B": 14, "C": 20, "D": 25, "E": 10, "F": 18, "G": 35,
		"H": 10, "I": 18, "J": 35, "K": 12, "L": 10, "M": 40,
	}
	for col, w := range widths {
		_ = f.SetColWidth(reportSheet, col, col, w)
	}

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4169FF"}, Pattern: 1},
	})
	_ = f.SetCellStyle(reportSheet, "A1", "M1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s ReportService) embedPhoto(ctx context.Context, f *excelize.File, photo *string, col, row int) {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	if photo == nil || *photo == "" {
		_ = f.SetCellValue(reportSheet, cell, "-")
		return
	}
	data, err := s.photoBytes(ctx, *photo)
	if err != nil {
		_ = f.SetCellValue(reportSheet, cell, "photo unavailable")
		return
	}
	if err := f.AddPictureFromBytes(reportSheet, cell, &excelize.Picture{
		Extension: ".jpg",
		File:      data,
		Format:    &excelize.GraphicOptions{AutoFit: true},
	}); err != nil {
		_ = f.SetCellValue(reportSheet, cell, "photo unavailable")
	}
}

// photoBytes resolves inline data URIs and remote URLs into raw image bytes.
func (s ReportService) photoBytes(ctx context.Context, src string) ([]byte, error) {
	switch {
	case strings.HasPrefix(src, "data:image"):
		_, encoded, ok := strings.Cut(src, ",")
		if !ok {
			return nil, fmt.Errorf("malformed data uri")
		}
		return base64.StdEncoding.DecodeString(encoded)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		client := s.Client
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch photo: status %d", resp.StatusCode)
		}
		return io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	default:
		return nil, fmt.Errorf("unsupported photo source")
	}
}

func clockOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("15:04")
}

func textOrDash(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}

func durationMinutes(d *int) string {
	if d == nil {
		return ""
	}
	return strconv.Itoa(*d)
}

func durationLabel(d *int) string {
	if d == nil {
		return "-"
	}
	return fmt.Sprintf("%dh %dm", *d/60, *d%60)
}
