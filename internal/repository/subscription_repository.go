package repository

import (
	"context"

	"github.com/deatransindo/absensi/internal/db"
	"github.com/deatransindo/absensi/internal/domain"
)

type SubscriptionRepository struct {
	DB *db.Postgres
}

type SaveSubscriptionParams struct {
	UserID   int64
	Endpoint string
	P256dh   string
	Auth     string
}

// Save registers a push subscription for the user. Any previous
// subscriptions the user held are deactivated first, and the endpoint row
// is upserted so a re-subscribing browser reclaims its endpoint.
func (r SubscriptionRepository) Save(ctx context.Context, p SaveSubscriptionParams) (*domain.PushSubscription, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE push_subscriptions SET is_active = false, updated_at = now()
		WHERE user_id = $1 AND is_active
	`, p.UserID); err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4, true, now(), now())
		ON CONFLICT (endpoint) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			p256dh = EXCLUDED.p256dh,
			auth = EXCLUDED.auth,
			is_active = true,
			updated_at = now()
		RETURNING id, user_id, endpoint, p256dh, auth, is_active, created_at, updated_at
	`, p.UserID, p.Endpoint, p.P256dh, p.Auth)

	var s domain.PushSubscription
	if err := row.Scan(&s.ID, &s.UserID, &s.Endpoint, &s.P256dh, &s.Auth, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r SubscriptionRepository) ListActiveByUser(ctx context.Context, userID int64) ([]domain.PushSubscription, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, user_id, endpoint, p256dh, auth, is_active, created_at, updated_at
		FROM push_subscriptions
		WHERE user_id = $1 AND is_active
		ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.PushSubscription
	for rows.Next() {
		var s domain.PushSubscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.Endpoint, &s.P256dh, &s.Auth, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// Deactivate marks one subscription inactive by id.
func (r SubscriptionRepository) Deactivate(ctx context.Context, id int64) error {
	_, err := r.DB.Pool.Exec(ctx, `
		UPDATE push_subscriptions SET is_active = false, updated_at = now()
		WHERE id = $1
	`, id)
	return err
}

// DeactivateEndpoint marks the user's subscription for one endpoint inactive.
func (r SubscriptionRepository) DeactivateEndpoint(ctx context.Context, userID int64, endpoint string) error {
	_, err := r.DB.Pool.Exec(ctx, `
		UPDATE push_subscriptions SET is_active = false, updated_at = now()
		WHERE user_id = $1 AND endpoint = $2
	`, userID, endpoint)
	return err
}
