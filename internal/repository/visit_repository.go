package repository

import (
	"context"
	"time"

	"github.com/deatransindo/absensi/internal/db"
	"github.com/deatransindo/absensi/internal/domain"
)

type VisitRepository struct {
	DB *db.Postgres
}

type CreateVisitParams struct {
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
}

func (r VisitRepository) Create(ctx context.Context, p CreateVisitParams) (*domain.Visit, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO visits (user_id, customer_name, customer_phone, customer_address,
			visit_time, visit_lat, visit_lng, visit_type, visit_result, notes, photos, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, now())
		RETURNING id, user_id, customer_name, customer_phone, customer_address,
			visit_time, visit_lat, visit_lng, visit_type, visit_result, notes, photos, created_at
	`, p.UserID, p.CustomerName, p.CustomerPhone, p.CustomerAddress,
		p.VisitTime, p.VisitLat, p.VisitLng, p.VisitType, p.VisitResult, p.Notes, p.Photos)

	var v domain.Visit
	if err := row.Scan(
		&v.ID, &v.UserID, &v.CustomerName, &v.CustomerPhone, &v.CustomerAddress,
		&v.VisitTime, &v.VisitLat, &v.VisitLng, &v.VisitType, &v.VisitResult,
		&v.Notes, &v.Photos, &v.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListByUser returns the user's most recent visits, newest first.
func (r VisitRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Visit, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, user_id, customer_name, customer_phone, customer_address,
			visit_time, visit_lat, visit_lng, visit_type, visit_result, notes, photos, created_at
		FROM visits
		WHERE user_id = $1
		ORDER BY visit_time DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Visit
	for rows.Next() {
		var v domain.Visit
		if err := rows.Scan(
			&v.ID, &v.UserID, &v.CustomerName, &v.CustomerPhone, &v.CustomerAddress,
			&v.VisitTime, &v.VisitLat, &v.VisitLng, &v.VisitType, &v.VisitResult,
			&v.Notes, &v.Photos, &v.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}
